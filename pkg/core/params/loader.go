package params

import (
	"fmt"
	"os"

	hjson "github.com/hjson/hjson-go/v4"
)

// LoadFile reads project parameters from an HJSON file (plain JSON is a
// subset, so .json files work too) and validates them.
func LoadFile(path string) (ProjectParameters, error) {
	var p ProjectParameters

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read project file: %w", err)
	}
	if err := hjson.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse project file %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}
