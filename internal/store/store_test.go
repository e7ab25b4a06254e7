package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/defectviz/internal/dataset"
	"github.com/verte-zerg/defectviz/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "defectviz.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestImportAndLoadPreservesOrder(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	records := []model.DefectRecord{
		{Day: 2, Sample: "09:00", Defects: 4},
		{Day: 1, Sample: "08:00", Defects: 3},
		{Day: 2, Sample: "08:00", Defects: 0},
	}
	if err := st.ImportDataset(ctx, "line-a", dataset.New("defects.csv", records), time.Unix(0, 0)); err != nil {
		t.Fatalf("import: %v", err)
	}
	ds, err := st.LoadDataset(ctx, "line-a")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Source() != "defects.csv" {
		t.Fatalf("unexpected source %q", ds.Source())
	}
	got := ds.Records()
	if len(got) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(got))
	}
	for i := range records {
		if got[i] != records[i] {
			t.Fatalf("record %d: expected %+v, got %+v", i, records[i], got[i])
		}
	}
}

func TestImportReplacesDataset(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	first := dataset.New("a.csv", []model.DefectRecord{{Day: 1, Sample: "08:00", Defects: 1}, {Day: 1, Sample: "09:00", Defects: 2}})
	second := dataset.New("b.csv", []model.DefectRecord{{Day: 5, Sample: "10:00", Defects: 9}})
	if err := st.ImportDataset(ctx, "line", first, time.Unix(0, 0)); err != nil {
		t.Fatalf("import first: %v", err)
	}
	if err := st.ImportDataset(ctx, "line", second, time.Unix(60, 0)); err != nil {
		t.Fatalf("import second: %v", err)
	}
	infos, err := st.ListDatasets(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 || infos[0].Records != 1 || infos[0].Source != "b.csv" {
		t.Fatalf("unexpected datasets: %+v", infos)
	}
	if !infos[0].ImportedAt.Equal(time.Unix(60, 0)) {
		t.Fatalf("unexpected import time: %v", infos[0].ImportedAt)
	}
}

func TestLoadAndDeleteMissing(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if _, err := st.LoadDataset(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := st.DeleteDataset(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteDataset(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	ds := dataset.New("a.csv", []model.DefectRecord{{Day: 1, Sample: "08:00", Defects: 1}})
	if err := st.ImportDataset(ctx, "gone", ds, time.Now()); err != nil {
		t.Fatalf("import: %v", err)
	}
	if err := st.DeleteDataset(ctx, "gone"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	infos, err := st.ListDatasets(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 0 {
		t.Fatalf("expected no datasets, got %+v", infos)
	}
}
