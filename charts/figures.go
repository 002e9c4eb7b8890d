package charts

import (
	"strings"

	"github.com/aluiziolira/go-food-value/analysis"
)

// Legend labels of the two health groups, not-healthy first.
const (
	UnhealthyLabel = "Nutri-Score C–E"
	HealthyLabel   = "Nutri-Score A/B"
)

// Build derives the full figure set from trimmed records.
func Build(records []analysis.Record) []Chart {
	charts := []Chart{
		priceByCategory(records),
		healthChart(records, "price_by_nutriscore_group", "Average Price per 100g by Health Group", "Average price per 100g", analysis.PricePer100g),
	}

	for _, category := range analysis.Categories(records) {
		charts = append(charts, priceByGrade(category, analysis.InCategory(records, category)))
	}

	for _, ratio := range analysis.Ratios {
		charts = append(charts, healthChart(records,
			ratio.Name,
			"Average "+ratio.Title+" per Dollar",
			ratio.Title+" per dollar",
			ratio.Value,
		))
	}
	return charts
}

func priceByCategory(records []analysis.Record) Chart {
	categories := analysis.SortedCategories(records)
	values := make([]*float64, len(categories))
	for i, category := range categories {
		values[i] = analysis.Mean(analysis.InCategory(records, category), analysis.PricePer100g)
	}
	return Chart{
		Name:   "avg_price_by_category",
		Title:  "Average Price per 100g by Category",
		XLabel: "Category",
		YLabel: "Average price per 100g",
		Labels: categories,
		Series: []Series{{Values: values}},
	}
}

func priceByGrade(category string, records []analysis.Record) Chart {
	means := analysis.MeanByGrade(records, analysis.PricePer100g)
	labels := make([]string, len(means))
	values := make([]*float64, len(means))
	for i, m := range means {
		labels[i] = m.Grade
		values[i] = m.Mean
	}
	return Chart{
		Name:   "avg_price_by_nutriscore_" + fileSafe(category),
		Title:  "Average Price per 100g (" + category + ")",
		XLabel: "Nutri-Score",
		YLabel: "Average price per 100g",
		Labels: labels,
		Series: []Series{{Values: values}},
	}
}

// healthChart groups value by category with one bar per health group.
func healthChart(records []analysis.Record, name, title, ylabel string, value func(analysis.Record) *float64) Chart {
	categories := analysis.SortedCategories(records)
	unhealthy := make([]*float64, len(categories))
	healthy := make([]*float64, len(categories))
	for i, category := range categories {
		split := analysis.MeanByHealth(analysis.InCategory(records, category), value)
		unhealthy[i] = split.Unhealthy
		healthy[i] = split.Healthy
	}
	return Chart{
		Name:   name,
		Title:  title,
		XLabel: "Category",
		YLabel: ylabel,
		Labels: categories,
		Series: []Series{
			{Label: UnhealthyLabel, Values: unhealthy},
			{Label: HealthyLabel, Values: healthy},
		},
	}
}

var unsafeName = strings.NewReplacer("/", "_", "\\", "_", " ", "_", ":", "_")

func fileSafe(s string) string {
	return unsafeName.Replace(s)
}
