package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aluiziolira/go-food-value/models"
	"github.com/aluiziolira/go-food-value/parser"
)

// RawAppender writes the raw store one row at a time. Each Append opens the
// file in append mode, writes a single row and closes it again, so a crash
// loses at most the row in flight.
type RawAppender struct {
	path string
	mu   sync.Mutex
	rows int
}

// NewRawAppender truncates filename and writes the raw header.
func NewRawAppender(filename string) (*RawAppender, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create raw store: %w", err)
	}
	writer := csv.NewWriter(f)
	if err := writer.Write(models.RawHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write raw header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush raw header: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close raw store: %w", err)
	}

	return &RawAppender{path: filename}, nil
}

// Append writes one product to the end of the raw store.
func (a *RawAppender) Append(product *models.RawProduct) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open raw store: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(product.Record()); err != nil {
		f.Close()
		return fmt.Errorf("write raw record: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush raw record: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close raw store: %w", err)
	}

	a.rows++
	return nil
}

// Rows returns the number of rows appended so far.
func (a *RawAppender) Rows() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rows
}

// Path returns the raw store location.
func (a *RawAppender) Path() string {
	return a.path
}

// CSVWriter writes the clean store.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
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
	if err := writer.Write(models.CleanHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter{
		file:   f,
		writer: writer,
	}, nil
}

// Write appends products to the CSV output.
func (cw *CSVWriter) Write(products []*models.CleanProduct) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, product := range products {
		if err := cw.writer.Write(cleanRecord(product)); err != nil {
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

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// Validate ensures the file has content.
func (cw *CSVWriter) Validate() error {
	info, err := os.Stat(cw.file.Name())
	if err != nil {
		return fmt.Errorf("stat csv file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("csv file is empty")
	}
	return nil
}

func cleanRecord(p *models.CleanProduct) []string {
	grade := ""
	if p.NutriscoreGrade != nil {
		grade = *p.NutriscoreGrade
	}
	return []string{
		p.Barcode,
		p.ProductName,
		p.Brands,
		p.Category,
		parser.FormatNumber(&p.LatestPrice),
		parser.FormatNumber(p.PricePer100g),
		parser.FormatNumber(p.EnergyKcal100g),
		parser.FormatNumber(p.Sugars100g),
		parser.FormatNumber(p.Fat100g),
		parser.FormatNumber(p.Salt100g),
		parser.FormatNumber(p.NutriscoreNumeric),
		grade,
	}
}

// JSONWriter writes newline-delimited JSON records.
type JSONWriter struct {
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter initialises the JSON writer.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	buffer := bufio.NewWriter(f)
	return &JSONWriter{
		file:    f,
		writer:  buffer,
		encoder: json.NewEncoder(buffer),
	}, nil
}

// Write appends products in JSONL format.
func (jw *JSONWriter) Write(products []*models.CleanProduct) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	for _, product := range products {
		if err := jw.encoder.Encode(product); err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
	}

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}

	return nil
}

// Close flushes buffers and closes the underlying file.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

// Validate ensures the JSON file exists. An empty clean set legitimately
// produces an empty JSON-lines file.
func (jw *JSONWriter) Validate() error {
	if _, err := os.Stat(jw.file.Name()); err != nil {
		return fmt.Errorf("stat json file: %w", err)
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
