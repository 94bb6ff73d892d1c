package fabric

import (
	"strings"
	"time"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// Batch is the immutable identity tuple every roll belongs to
type Batch struct {
	id         string
	fabricType string
	color      string
	design     string
	quality    string
	createdAt  time.Time
}

// NewBatch creates a fabric batch after validating its identity tuple
func NewBatch(fabricType, color, design, quality string, createdAt time.Time) (*Batch, error) {
	fields := map[string]string{
		"type":    fabricType,
		"color":   color,
		"design":  design,
		"quality": quality,
	}
	for _, field := range []string{"type", "color", "design", "quality"} {
		if strings.TrimSpace(fields[field]) == "" {
			return nil, shared.NewValidationError(field, "cannot be empty")
		}
	}

	return &Batch{
		id:         shared.NewID(),
		fabricType: strings.TrimSpace(fabricType),
		color:      strings.TrimSpace(color),
		design:     strings.TrimSpace(design),
		quality:    strings.TrimSpace(quality),
		createdAt:  createdAt,
	}, nil
}

// ReconstructBatch rebuilds a batch from persistence
func ReconstructBatch(id, fabricType, color, design, quality string, createdAt time.Time) *Batch {
	return &Batch{
		id:         id,
		fabricType: fabricType,
		color:      color,
		design:     design,
		quality:    quality,
		createdAt:  createdAt,
	}
}

func (b *Batch) ID() string           { return b.id }
func (b *Batch) FabricType() string   { return b.fabricType }
func (b *Batch) Color() string        { return b.color }
func (b *Batch) Design() string       { return b.design }
func (b *Batch) Quality() string      { return b.quality }
func (b *Batch) CreatedAt() time.Time { return b.createdAt }

// Describe renders the identity tuple, e.g. "cotton/navy/plain/A"
func (b *Batch) Describe() string {
	return strings.Join([]string{b.fabricType, b.color, b.design, b.quality}, "/")
}
