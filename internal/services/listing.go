package services

import (
	"sort"

	"github.com/pocketjobs/pocketjobs-api/internal/models"
)

// SortMode selects the primary ordering for the job list.
type SortMode string

const (
	SortDistance SortMode = "distance"
	SortNewest   SortMode = "newest"
	SortWageDesc SortMode = "wage_desc"
)

// JobListItem is a posting as shown in the browse list. DistanceKm is derived
// upstream (from the viewer's position); nil means unknown.
type JobListItem struct {
	models.Job
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// Filters narrows the browse list. Empty Categories and nil MaxDistanceKm
// mean no filtering.
type Filters struct {
	Categories    []string `json:"categories"`
	MaxDistanceKm *float64 `json:"max_distance_km"`
}

// CategoryOrDefault returns the posting's category, defaulting to "other"
// when unset.
func (j JobListItem) CategoryOrDefault() string {
	if j.Category == nil || *j.Category == "" {
		return models.DefaultCategory
	}
	return *j.Category
}

// ApplyFilters returns a new slice holding the postings that pass all active
// filters. The input is never mutated.
func ApplyFilters(items []JobListItem, f Filters) []JobListItem {
	if len(f.Categories) == 0 && f.MaxDistanceKm == nil {
		out := make([]JobListItem, len(items))
		copy(out, items)
		return out
	}

	out := make([]JobListItem, 0, len(items))
	for _, it := range items {
		if len(f.Categories) > 0 && !containsString(f.Categories, it.CategoryOrDefault()) {
			continue
		}
		if f.MaxDistanceKm != nil {
			// Unknown distance can't satisfy a distance cap
			if it.DistanceKm == nil || *it.DistanceKm > *f.MaxDistanceKm {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

// SortJobs returns a new slice ordered by the given mode. Ties fall back to
// newest-first, then id ascending, so the ordering is total and stable across
// calls regardless of input order. The input is never mutated.
func SortJobs(items []JobListItem, mode SortMode) []JobListItem {
	out := make([]JobListItem, len(items))
	copy(out, items)

	sort.SliceStable(out, func(i, j int) bool {
		if c := primaryCompare(out[i], out[j], mode); c != 0 {
			return c < 0
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// DeriveVisibleJobs is the one entry point callers should use: filter, then
// sort.
func DeriveVisibleJobs(items []JobListItem, f Filters, mode SortMode) []JobListItem {
	return SortJobs(ApplyFilters(items, f), mode)
}

// primaryCompare orders a before b when negative. Postings missing the sort
// key (nil distance, nil wage) go last.
func primaryCompare(a, b JobListItem, mode SortMode) int {
	switch mode {
	case SortDistance:
		return compareNullable(a.DistanceKm, b.DistanceKm, true)
	case SortWageDesc:
		return compareNullable(a.WageHourly, b.WageHourly, false)
	default: // newest
		switch {
		case a.CreatedAt.After(b.CreatedAt):
			return -1
		case b.CreatedAt.After(a.CreatedAt):
			return 1
		}
		return 0
	}
}

func compareNullable(a, b *float64, asc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a == *b:
		return 0
	}
	if (*a < *b) == asc {
		return -1
	}
	return 1
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
