package pipeline

import (
	"fmt"
	"strings"
)

// StageCatalog is the ordered list of finishing stages. Index 1 is the
// cutting output; the last index is the terminal stage.
type StageCatalog struct {
	names []string
}

// NewStageCatalog builds a catalog from stage names in order
func NewStageCatalog(names []string) (*StageCatalog, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("stage catalog needs at least one stage")
	}
	seen := make(map[string]bool, len(names))
	cleaned := make([]string, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("stage %d has an empty name", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("stage %s is listed twice", name)
		}
		seen[name] = true
		cleaned[i] = name
	}
	return &StageCatalog{names: cleaned}, nil
}

// MustNewStageCatalog panics on an invalid catalog; for tests and defaults
func MustNewStageCatalog(names ...string) *StageCatalog {
	c, err := NewStageCatalog(names)
	if err != nil {
		panic(err)
	}
	return c
}

// Terminal returns the index of the last stage
func (c *StageCatalog) Terminal() int {
	return len(c.names)
}

func (c *StageCatalog) Contains(index int) bool {
	return index >= 1 && index <= len(c.names)
}

// Name returns the stage name for a 1-based index
func (c *StageCatalog) Name(index int) string {
	if !c.Contains(index) {
		return fmt.Sprintf("stage-%d", index)
	}
	return c.names[index-1]
}

func (c *StageCatalog) Names() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)
	return names
}
