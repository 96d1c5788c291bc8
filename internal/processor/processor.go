package processor

import (
	"sort"
	"strings"

	"procwatch/internal/models"
)

// FilterAndPage applies the filter state to a snapshot and returns one page
// of the filtered, sorted process list.
//
// Filtering is a case-insensitive substring match on the process name; an
// empty query matches everything. Ordering is stable: cpu_percent descending
// with ties broken by pid ascending, so pagination does not reshuffle rows
// between ticks when usage values tie. The returned page index is clamped
// into the valid range for the filtered count, and callers should adopt it
// as the new live index.
func FilterAndPage(snapshot *models.Snapshot, state models.FilterState) models.Page {
	var filtered []models.ProcessRecord
	query := strings.ToLower(strings.TrimSpace(state.Query))
	if snapshot != nil {
		if query == "" {
			filtered = append(filtered, snapshot.Records...)
		} else {
			for _, rec := range snapshot.Records {
				if strings.Contains(strings.ToLower(rec.Name), query) {
					filtered = append(filtered, rec)
				}
			}
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].CPUPercent != filtered[j].CPUPercent {
			return filtered[i].CPUPercent > filtered[j].CPUPercent
		}
		return filtered[i].PID < filtered[j].PID
	})

	pageSize := state.PageSize
	if pageSize < 1 {
		pageSize = 1
	}
	total := len(filtered)
	totalPages := (total + pageSize - 1) / pageSize

	pageIndex := state.PageIndex
	if pageIndex > totalPages-1 {
		pageIndex = totalPages - 1
	}
	if pageIndex < 0 {
		pageIndex = 0
	}

	start := pageIndex * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return models.Page{
		Records:       filtered[start:end],
		PageIndex:     pageIndex,
		TotalFiltered: total,
		TotalPages:    totalPages,
	}
}
