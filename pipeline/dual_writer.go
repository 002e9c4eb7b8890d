package pipeline

import (
	"errors"
	"fmt"

	"github.com/aluiziolira/go-food-value/models"
)

// DualWriter writes the clean store as CSV and mirrors it as JSON lines.
// The CSV is the store of record; the mirror is written after it.
type DualWriter struct {
	outputs []namedOutput
}

type namedOutput struct {
	name   string
	writer OutputWriter
}

// NewDualWriter opens both outputs. The CSV file is closed again when the
// mirror cannot be created.
func NewDualWriter(csvFilename, jsonFilename string) (*DualWriter, error) {
	csvWriter, err := NewCSVWriter(csvFilename)
	if err != nil {
		return nil, fmt.Errorf("create csv writer: %w", err)
	}

	jsonWriter, err := NewJSONWriter(jsonFilename)
	if err != nil {
		return nil, errors.Join(
			fmt.Errorf("create json writer: %w", err),
			csvWriter.Close(),
		)
	}

	return &DualWriter{outputs: []namedOutput{
		{name: "csv", writer: csvWriter},
		{name: "json", writer: jsonWriter},
	}}, nil
}

// Write stops at the first output that fails.
func (dw *DualWriter) Write(products []*models.CleanProduct) error {
	for _, out := range dw.outputs {
		if err := out.writer.Write(products); err != nil {
			return fmt.Errorf("%s write: %w", out.name, err)
		}
	}
	return nil
}

// Close closes every output and joins their errors.
func (dw *DualWriter) Close() error {
	return dw.each("close", OutputWriter.Close)
}

// Validate checks every output and joins their errors.
func (dw *DualWriter) Validate() error {
	return dw.each("validate", OutputWriter.Validate)
}

func (dw *DualWriter) each(op string, fn func(OutputWriter) error) error {
	var errs []error
	for _, out := range dw.outputs {
		if err := fn(out.writer); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", out.name, op, err))
		}
	}
	return errors.Join(errs...)
}
