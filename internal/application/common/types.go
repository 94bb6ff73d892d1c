package common

import "github.com/andrescamacho/garmentflow/internal/application/mediator"

// Handler signatures use these aliases so command packages only import common
type (
	Request  = mediator.Request
	Response = mediator.Response
)
