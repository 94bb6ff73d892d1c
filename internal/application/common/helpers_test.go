package common

import (
	"context"
	"reflect"

	"github.com/andrescamacho/garmentflow/internal/application/mediator"
)

type handlerFunc func(ctx context.Context, request mediator.Request) (mediator.Response, error)

func (f handlerFunc) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	return f(ctx, request)
}

func reflectTypeOf(v interface{}) reflect.Type {
	return reflect.TypeOf(v)
}
