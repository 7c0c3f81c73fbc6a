package pipeline

import (
	"fmt"
	"sync"

	"github.com/K-Tina/Leaflet-scraper/models"
)

// DualWriter outputs to both JSON and CSV simultaneously.
type DualWriter struct {
	jsonWriter *JSONWriter
	csvWriter  *CSVWriter
	mu         sync.Mutex
}

// NewDualWriter creates a dual writer for both JSON and CSV output.
func NewDualWriter(jsonFilename, csvFilename string) (*DualWriter, error) {
	jsonWriter, err := NewJSONWriter(jsonFilename)
	if err != nil {
		return nil, fmt.Errorf("create json writer: %w", err)
	}

	csvWriter, err := NewCSVWriter(csvFilename)
	if err != nil {
		jsonWriter.Close()
		return nil, fmt.Errorf("create csv writer: %w", err)
	}

	return &DualWriter{
		jsonWriter: jsonWriter,
		csvWriter:  csvWriter,
	}, nil
}

// Write writes leaflets to both outputs.
func (dw *DualWriter) Write(leaflets []*models.Leaflet) error {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if err := dw.jsonWriter.Write(leaflets); err != nil {
		return fmt.Errorf("json write failed: %w", err)
	}
	if err := dw.csvWriter.Write(leaflets); err != nil {
		return fmt.Errorf("csv write failed: %w", err)
	}
	return nil
}

// Close closes both writers.
func (dw *DualWriter) Close() error {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	var errs []error
	if err := dw.jsonWriter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("json close failed: %w", err))
	}
	if err := dw.csvWriter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("csv close failed: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors: %v", errs)
	}
	return nil
}

// Validate validates both output files.
func (dw *DualWriter) Validate() error {
	var errs []error
	if err := dw.jsonWriter.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("json validation failed: %w", err))
	}
	if err := dw.csvWriter.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("csv validation failed: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation errors: %v", errs)
	}
	return nil
}
