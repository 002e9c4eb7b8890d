package models

import "time"

// CollectResult summarises one collection run.
type CollectResult struct {
	StartTime    time.Time
	EndTime      time.Time
	Accepted     map[string]int // rows appended, by category
	Categories   []string       // categories in the order they were visited
	Skipped      map[string]int // products not appended, by reason
	ErrorsByType map[string]int
	RequestCount int
	PageCount    int
	CacheHits    int
}

// TotalAccepted returns the number of rows appended to the raw store.
func (r *CollectResult) TotalAccepted() int {
	total := 0
	for _, n := range r.Accepted {
		total += n
	}
	return total
}

// CleanResult summarises one cleaning run.
type CleanResult struct {
	RowsRead    int
	RowsWritten int
	Dropped     map[string]int // rows removed, by reason
}
