package analysis

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
)

// WriteReport renders the view as a set of tables.
func WriteReport(w io.Writer, view *AggregateView) error {
	if _, err := fmt.Fprintf(w, "Total products: %d\n", view.Total); err != nil {
		return err
	}

	counts := newTable(w, "Products per category")
	counts.AppendHeader(table.Row{"Category", "Count"})
	for _, c := range view.CategoryCounts {
		counts.AppendRow(table.Row{c.Category, c.Count})
	}
	counts.Render()

	health := newTable(w, "Health status counts by category")
	health.AppendHeader(table.Row{"Category", "Healthy", "Count"})
	for _, c := range view.HealthCounts {
		health.AppendRow(table.Row{c.Category, strconv.FormatBool(c.Healthy), c.Count})
	}
	health.Render()

	ratios := newTable(w, "Nutrition per dollar")
	header := table.Row{"Category"}
	for _, ratio := range Ratios {
		header = append(header, ratio.Name)
	}
	ratios.AppendHeader(header)
	for _, c := range view.RatioMeans {
		row := table.Row{c.Category}
		for _, mean := range c.Means {
			row = append(row, formatMean(mean))
		}
		ratios.AppendRow(row)
	}
	ratios.Render()

	return nil
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	return t
}

func formatMean(v *float64) string {
	if v == nil {
		return "NaN"
	}
	return strconv.FormatFloat(*v, 'f', 6, 64)
}
