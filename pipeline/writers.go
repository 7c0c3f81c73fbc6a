package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/K-Tina/Leaflet-scraper/models"
)

// JSONWriter produces the leaflet export: a single top-level JSON array,
// fully rewritten on every run. Records are buffered until Close because the
// array can only be rendered once the run is complete.
type JSONWriter struct {
	path    string
	file    *os.File
	mu      sync.Mutex
	records []*models.Leaflet
	closed  bool
}

// NewJSONWriter creates (truncating) the output file up front so path
// problems surface before the crawl starts.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	return &JSONWriter{
		path:    filename,
		file:    f,
		records: make([]*models.Leaflet, 0),
	}, nil
}

// Write buffers leaflets for the final array.
func (jw *JSONWriter) Write(leaflets []*models.Leaflet) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if jw.closed {
		return fmt.Errorf("json writer is closed")
	}
	jw.records = append(jw.records, leaflets...)
	return nil
}

// Close renders the array and closes the file. An empty run still writes a
// valid empty array.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if jw.closed {
		return nil
	}
	jw.closed = true

	encoder := json.NewEncoder(jw.file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(jw.records); err != nil {
		jw.file.Close()
		return fmt.Errorf("encode json array: %w", err)
	}
	return jw.file.Close()
}

// Validate ensures the output file exists and has content.
func (jw *JSONWriter) Validate() error {
	return validateFile(jw.path, "json")
}

// CSVWriter streams records to CSV.
type CSVWriter struct {
	path   string
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
	closed bool
}

// NewCSVWriter initialises a CSV writer and writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	header := []string{"title", "thumbnail", "shop_name", "valid_from", "valid_to", "parsed_time"}
	if err := writer.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter{
		path:   filename,
		file:   f,
		writer: writer,
	}, nil
}

// Write appends leaflets to the CSV output.
func (cw *CSVWriter) Write(leaflets []*models.Leaflet) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.closed {
		return fmt.Errorf("csv writer is closed")
	}

	for _, leaflet := range leaflets {
		record := []string{
			leaflet.Title,
			leaflet.Thumbnail,
			leaflet.ShopName,
			leaflet.ValidFrom,
			leaflet.ValidTo,
			leaflet.ParsedTime,
		}
		if err := cw.writer.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.closed {
		return nil
	}
	cw.closed = true

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		cw.file.Close()
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// Validate ensures the file has content besides the header.
func (cw *CSVWriter) Validate() error {
	return validateFile(cw.path, "csv")
}

func validateFile(path, kind string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s file: %w", kind, err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("%s file is empty", kind)
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
