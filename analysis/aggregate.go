package analysis

import (
	"sort"
)

// CategoryCount is the number of records in a category.
type CategoryCount struct {
	Category string
	Count    int
}

// HealthCount is the number of records in a (category, health) pair.
type HealthCount struct {
	Category string
	Healthy  bool
	Count    int
}

// CategoryRatios holds the mean of every Ratio for one category, aligned
// with Ratios.
type CategoryRatios struct {
	Category string
	Means    []*float64
}

// AggregateView is the grouped summary of a trimmed record set. It is
// rebuilt on every run and never persisted.
type AggregateView struct {
	Total          int
	Cutoff         float64
	CategoryCounts []CategoryCount  // by count descending, then name
	HealthCounts   []HealthCount    // by category, not-healthy first
	RatioMeans     []CategoryRatios // categories in first-seen order
}

// Aggregate builds the view for records already trimmed at cutoff.
func Aggregate(records []Record, cutoff float64) *AggregateView {
	view := &AggregateView{
		Total:  len(records),
		Cutoff: cutoff,
	}

	perCategory := make(map[string]int)
	type healthKey struct {
		category string
		healthy  bool
	}
	perHealth := make(map[healthKey]int)
	for _, r := range records {
		perCategory[r.Category]++
		perHealth[healthKey{r.Category, r.Healthy}]++
	}

	for category, count := range perCategory {
		view.CategoryCounts = append(view.CategoryCounts, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(view.CategoryCounts, func(i, j int) bool {
		a, b := view.CategoryCounts[i], view.CategoryCounts[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Category < b.Category
	})

	for key, count := range perHealth {
		view.HealthCounts = append(view.HealthCounts, HealthCount{Category: key.category, Healthy: key.healthy, Count: count})
	}
	sort.Slice(view.HealthCounts, func(i, j int) bool {
		a, b := view.HealthCounts[i], view.HealthCounts[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return !a.Healthy && b.Healthy
	})

	for _, category := range Categories(records) {
		subset := InCategory(records, category)
		means := make([]*float64, len(Ratios))
		for i, ratio := range Ratios {
			means[i] = Mean(subset, ratio.Value)
		}
		view.RatioMeans = append(view.RatioMeans, CategoryRatios{Category: category, Means: means})
	}

	return view
}
