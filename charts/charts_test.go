package charts

import (
	"bytes"
	"errors"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aluiziolira/go-food-value/analysis"
	"github.com/aluiziolira/go-food-value/models"
	"github.com/google/go-cmp/cmp"
)

func sampleRecords() []analysis.Record {
	products := []*models.CleanProduct{
		{Barcode: "1", Category: "sweet-snacks", LatestPrice: 2, PricePer100g: models.Float(1.5), EnergyKcal100g: models.Float(500), NutriscoreGrade: models.String("e")},
		{Barcode: "2", Category: "bread", LatestPrice: 2, PricePer100g: models.Float(0.4), EnergyKcal100g: models.Float(250), NutriscoreGrade: models.String("b")},
		{Barcode: "3", Category: "bread", LatestPrice: 3, PricePer100g: models.Float(0.6), EnergyKcal100g: models.Float(260), NutriscoreGrade: models.String("c")},
		{Barcode: "4", Category: "bread", LatestPrice: 3, PricePer100g: models.Float(0.5)},
	}
	return analysis.Classify(products)
}

func TestBuildFigureNames(t *testing.T) {
	var names []string
	for _, c := range Build(sampleRecords()) {
		names = append(names, c.Name)
	}
	want := []string{
		"avg_price_by_category",
		"price_by_nutriscore_group",
		"avg_price_by_nutriscore_sweet-snacks",
		"avg_price_by_nutriscore_bread",
		"calories_per_dollar",
		"sugar_per_dollar",
		"fat_per_dollar",
		"salt_per_dollar",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("figure names mismatch (-want +got):\n%s", diff)
	}
}

func TestHealthChartSeries(t *testing.T) {
	c := healthChart(sampleRecords(), "calories_per_dollar", "Average Calories per Dollar", "Calories per dollar", analysis.Ratios[0].Value)

	if diff := cmp.Diff([]string{"bread", "sweet-snacks"}, c.Labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
	if c.Series[0].Label != UnhealthyLabel || c.Series[1].Label != HealthyLabel {
		t.Fatalf("unexpected legend order %q, %q", c.Series[0].Label, c.Series[1].Label)
	}

	// bread not healthy: 260/0.6 only, the ungraded row has no energy
	if got := c.Series[0].Values[0]; got == nil || math.Abs(*got-433.333333) > 1e-5 {
		t.Fatalf("bread unhealthy mean = %v", got)
	}
	if got := c.Series[1].Values[0]; got == nil || *got != 625 {
		t.Fatalf("bread healthy mean = %v", got)
	}
	if got := c.Series[1].Values[1]; got != nil {
		t.Fatalf("sweet-snacks has no healthy rows, got %v", *got)
	}
}

func TestPriceByGradeSkipsUngraded(t *testing.T) {
	records := sampleRecords()
	c := priceByGrade("bread", analysis.InCategory(records, "bread"))
	if diff := cmp.Diff([]string{"b", "c"}, c.Labels); diff != "" {
		t.Fatalf("grades mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderAllWritesPNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "figures")
	charts := append(Build(sampleRecords()), Chart{Name: "empty"})

	paths, err := NewRenderer(dir).RenderAll(charts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(paths) != len(charts)-1 {
		t.Fatalf("rendered %d figures, want %d", len(paths), len(charts)-1)
	}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if info.Size() == 0 || filepath.Ext(path) != ".png" {
			t.Fatalf("unexpected figure %s (%d bytes)", path, info.Size())
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "empty.png")); !os.IsNotExist(err) {
		t.Fatalf("empty chart should not be rendered")
	}
}

func TestBarValues(t *testing.T) {
	got := barValues([]*float64{models.Float(2), nil}, 3)
	if diff := cmp.Diff([]float64{2, 0, 0}, []float64(got)); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestViewerShow(t *testing.T) {
	var opened []string
	var out bytes.Buffer
	v := &Viewer{
		Open: func(path string) error {
			opened = append(opened, path)
			if path == "b.png" {
				return errors.New("no viewer")
			}
			return nil
		},
		In:  strings.NewReader("\n\n\n"),
		Out: &out,
	}

	if err := v.Show([]string{"a.png", "b.png", "c.png"}); err != nil {
		t.Fatalf("show: %v", err)
	}
	if diff := cmp.Diff([]string{"a.png", "b.png", "c.png"}, opened); diff != "" {
		t.Fatalf("opened mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out.String(), "[3/3] c.png") {
		t.Fatalf("unexpected prompt output:\n%s", out.String())
	}
}

func TestViewerStopsAtEOF(t *testing.T) {
	var opened int
	v := &Viewer{
		Open: func(string) error { opened++; return nil },
		In:   strings.NewReader(""),
		Out:  &bytes.Buffer{},
	}
	if err := v.Show([]string{"a.png", "b.png"}); err != nil {
		t.Fatalf("show: %v", err)
	}
	if opened != 1 {
		t.Fatalf("opened %d figures, want 1", opened)
	}
}

func TestStartDetachedReapsProcess(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}
	cmd := exec.Command("true")
	done, err := startDetached(cmd)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("wait: %v", err)
	}
	if cmd.ProcessState == nil || !cmd.ProcessState.Exited() {
		t.Fatalf("process was not reaped")
	}
}

func TestStartDetachedMissingBinary(t *testing.T) {
	if _, err := startDetached(exec.Command(filepath.Join(t.TempDir(), "no-such-viewer"))); err == nil {
		t.Fatalf("expected start error")
	}
}
