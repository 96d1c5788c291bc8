package processor

import (
	"reflect"
	"testing"
	"time"

	"procwatch/internal/models"
)

func snapshotOf(records ...models.ProcessRecord) *models.Snapshot {
	return &models.Snapshot{CapturedAt: time.Now(), Records: records}
}

func rec(pid int32, name string, cpu float64) models.ProcessRecord {
	return models.ProcessRecord{PID: pid, Name: name, CPUPercent: cpu}
}

func TestFilterCountsCaseInsensitiveMatches(t *testing.T) {
	snap := snapshotOf(
		rec(1, "Chrome", 1),
		rec(2, "chromehelper", 2),
		rec(3, "bash", 3),
		rec(4, "CHROMIUM", 4),
	)
	page := FilterAndPage(snap, models.FilterState{Query: "chrom", PageSize: 10})
	if page.TotalFiltered != 3 {
		t.Fatalf("expected 3 matches, got %d", page.TotalFiltered)
	}
}

func TestEmptyQueryYieldsAllRecords(t *testing.T) {
	snap := snapshotOf(rec(1, "a", 0), rec(2, "b", 0), rec(3, "c", 0))
	page := FilterAndPage(snap, models.FilterState{PageSize: 10})
	if page.TotalFiltered != 3 || len(page.Records) != 3 {
		t.Fatalf("expected all 3 records, got total=%d len=%d", page.TotalFiltered, len(page.Records))
	}
}

func TestSortByCPUDescThenPIDAsc(t *testing.T) {
	snap := snapshotOf(
		rec(9, "a", 5),
		rec(3, "b", 10),
		rec(1, "c", 5),
		rec(7, "d", 10),
	)
	page := FilterAndPage(snap, models.FilterState{PageSize: 10})
	wantPIDs := []int32{3, 7, 1, 9}
	for i, want := range wantPIDs {
		if page.Records[i].PID != want {
			t.Fatalf("position %d: expected pid %d, got %d", i, want, page.Records[i].PID)
		}
	}
}

func TestSortIsDeterministicAcrossCalls(t *testing.T) {
	snap := snapshotOf(rec(5, "x", 2), rec(2, "y", 2), rec(8, "z", 2))
	first := FilterAndPage(snap, models.FilterState{PageSize: 10})
	for i := 0; i < 10; i++ {
		again := FilterAndPage(snap, models.FilterState{PageSize: 10})
		if !reflect.DeepEqual(first.Records, again.Records) {
			t.Fatalf("ordering changed between calls: %v vs %v", first.Records, again.Records)
		}
	}
	if first.Records[0].PID != 2 || first.Records[1].PID != 5 || first.Records[2].PID != 8 {
		t.Fatalf("equal-cpu records not ordered by pid: %v", first.Records)
	}
}

func TestPaginationIsExhaustiveAndNonOverlapping(t *testing.T) {
	var records []models.ProcessRecord
	for pid := int32(1); pid <= 23; pid++ {
		records = append(records, rec(pid, "proc", float64(pid%7)))
	}
	snap := snapshotOf(records...)

	full := FilterAndPage(snap, models.FilterState{PageSize: 23})
	var concatenated []models.ProcessRecord
	for idx := 0; ; idx++ {
		page := FilterAndPage(snap, models.FilterState{PageSize: 5, PageIndex: idx})
		concatenated = append(concatenated, page.Records...)
		if idx+1 >= page.TotalPages {
			break
		}
	}
	if !reflect.DeepEqual(concatenated, full.Records) {
		t.Fatalf("concatenated pages do not reproduce the filtered sequence")
	}
}

func TestPageIndexClampedToValidRange(t *testing.T) {
	snap := snapshotOf(rec(1, "a", 1), rec(2, "b", 2), rec(3, "c", 3))
	page := FilterAndPage(snap, models.FilterState{PageSize: 2, PageIndex: 99})
	if page.PageIndex != 1 {
		t.Fatalf("expected clamp to last page 1, got %d", page.PageIndex)
	}
	if len(page.Records) != 1 {
		t.Fatalf("expected 1 record on last page, got %d", len(page.Records))
	}
}

func TestEmptySnapshot(t *testing.T) {
	page := FilterAndPage(snapshotOf(), models.FilterState{PageSize: 10, PageIndex: 3})
	if page.PageIndex != 0 || page.TotalFiltered != 0 || page.TotalPages != 0 || len(page.Records) != 0 {
		t.Fatalf("unexpected page for empty snapshot: %+v", page)
	}
}

func TestNilSnapshot(t *testing.T) {
	page := FilterAndPage(nil, models.FilterState{PageSize: 10})
	if page.TotalFiltered != 0 || len(page.Records) != 0 {
		t.Fatalf("unexpected page for nil snapshot: %+v", page)
	}
}

// Scenario from the dashboard's contract: query "chrome" with page size 1
// shows the higher-CPU helper first.
func TestChromePagingScenario(t *testing.T) {
	snap := snapshotOf(
		rec(1, "chrome", 10),
		rec(2, "chromehelper", 50),
		rec(3, "bash", 1),
	)
	page := FilterAndPage(snap, models.FilterState{Query: "chrome", PageSize: 1, PageIndex: 0})
	if page.TotalFiltered != 2 {
		t.Fatalf("expected total_filtered 2, got %d", page.TotalFiltered)
	}
	if page.TotalPages != 2 {
		t.Fatalf("expected total_pages 2, got %d", page.TotalPages)
	}
	if len(page.Records) != 1 || page.Records[0].PID != 2 {
		t.Fatalf("expected page [pid=2], got %+v", page.Records)
	}
}
