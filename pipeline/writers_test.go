package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aluiziolira/go-food-value/models"
	"github.com/google/go-cmp/cmp"
)

func sampleClean() *models.CleanProduct {
	return &models.CleanProduct{
		Barcode:         "3017620422003",
		ProductName:     "Test Loaf",
		Brands:          "Acme",
		Category:        "bread",
		LatestPrice:     2.5,
		PricePer100g:    models.Float(0.5),
		EnergyKcal100g:  models.Float(250),
		Sugars100g:      models.Float(4.2),
		NutriscoreGrade: models.String("a"),
	}
}

func TestRawAppenderAppendsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw", "products.csv")

	appender, err := NewRawAppender(path)
	if err != nil {
		t.Fatalf("create appender: %v", err)
	}
	first := &models.RawProduct{
		Category:    "bread",
		Barcode:     "1",
		ProductName: "Loaf",
		Nutriments:  `{"sugars_100g": 1.5, "fat_100g": 2}`,
		LatestPrice: "2.5",
	}
	second := &models.RawProduct{Category: "bread", Barcode: "2", ProductName: "Roll", LatestPrice: "1"}
	if err := appender.Append(first); err != nil {
		t.Fatalf("append first: %v", err)
	}
	if err := appender.Append(second); err != nil {
		t.Fatalf("append second: %v", err)
	}
	if appender.Rows() != 2 {
		t.Fatalf("rows = %d, want 2", appender.Rows())
	}

	rows, err := ReadRaw(path)
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if diff := cmp.Diff([]*models.RawProduct{first, second}, rows); diff != "" {
		t.Fatalf("raw rows mismatch (-want +got):\n%s", diff)
	}
}

func TestRawAppenderTruncatesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	if err := os.WriteFile(path, []byte("stale,data\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	if _, err := NewRawAppender(path); err != nil {
		t.Fatalf("create appender: %v", err)
	}
	rows, err := ReadRaw(path)
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows = %d, want 0", len(rows))
	}
}

func TestReadRawMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	if err := os.WriteFile(path, []byte("category,barcode\nbread,1\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	if _, err := ReadRaw(path); !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestReadRawMissingFile(t *testing.T) {
	if _, err := ReadRaw(filepath.Join(t.TempDir(), "absent.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestCSVWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clean.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	product := sampleClean()
	if err := writer.Write([]*models.CleanProduct{product}); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records=%d, want 2", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(models.CleanHeader, ",") {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][7] != "4.2" || records[1][8] != "" {
		t.Fatalf("unexpected nutrient cells: %v", records[1])
	}

	loaded, err := ReadClean(path)
	if err != nil {
		t.Fatalf("read clean: %v", err)
	}
	if diff := cmp.Diff([]*models.CleanProduct{product}, loaded); diff != "" {
		t.Fatalf("clean rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCleanInvalidPrice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clean.csv")
	body := strings.Join(models.CleanHeader, ",") + "\n1,Loaf,Acme,bread,free,,,,,,,\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	if _, err := ReadClean(path); err == nil || !strings.Contains(err.Error(), "latest_price") {
		t.Fatalf("expected latest_price error, got %v", err)
	}
}

func TestJSONWriterWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clean.json")

	writer, err := NewJSONWriter(path)
	if err != nil {
		t.Fatalf("create json writer: %v", err)
	}
	if err := writer.Write([]*models.CleanProduct{sampleClean()}); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close json: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open json: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	count := 0
	for scanner.Scan() {
		var decoded map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid json line: %v", err)
		}
		if decoded["fat_100g"] != nil {
			t.Fatalf("fat_100g = %v, want null", decoded["fat_100g"])
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan json: %v", err)
	}
	if count != 1 {
		t.Fatalf("json lines=%d, want 1", count)
	}
}

func TestDualWriterWrite(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "clean.csv")
	jsonPath := filepath.Join(dir, "clean.json")

	writer, err := NewDualWriter(csvPath, jsonPath)
	if err != nil {
		t.Fatalf("create dual writer: %v", err)
	}
	if err := writer.Write([]*models.CleanProduct{sampleClean()}); err != nil {
		t.Fatalf("write dual: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close dual: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate dual: %v", err)
	}

	if info, err := os.Stat(csvPath); err != nil || info.Size() == 0 {
		t.Fatalf("csv file missing or empty")
	}
	if info, err := os.Stat(jsonPath); err != nil || info.Size() == 0 {
		t.Fatalf("json file missing or empty")
	}
}

func TestDualWriterValidateJoinsErrors(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "clean.csv")
	jsonPath := filepath.Join(dir, "clean.json")

	writer, err := NewDualWriter(csvPath, jsonPath)
	if err != nil {
		t.Fatalf("create dual writer: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close dual: %v", err)
	}
	if err := os.Remove(csvPath); err != nil {
		t.Fatalf("remove csv: %v", err)
	}
	if err := os.Remove(jsonPath); err != nil {
		t.Fatalf("remove json: %v", err)
	}

	err = writer.Validate()
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	for _, want := range []string{"csv validate", "json validate"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

func TestReadCleanReportsPhysicalLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clean.csv")
	body := strings.Join(models.CleanHeader, ",") + "\n" +
		"1,\"Loaf\nwith\nnewlines\",Acme,bread,2,,,,,,,\n" +
		"2,Bagels,Acme,bread,free,,,,,,,\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	_, err := ReadClean(path)
	if err == nil || !strings.Contains(err.Error(), "line 5") {
		t.Fatalf("expected error on line 5, got %v", err)
	}
}
