package dataset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/defectviz/internal/model"
)

func TestReadCSVColumnOrder(t *testing.T) {
	data := "Defects,Extra,Sample,Day\n3,x,08:00,1\n5,y,09:00,1\n1,z,08:00,2\n"
	ds, err := ReadCSV(strings.NewReader(data), "inline")
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	want := []model.DefectRecord{
		{Day: 1, Sample: "08:00", Defects: 3},
		{Day: 1, Sample: "09:00", Defects: 5},
		{Day: 2, Sample: "08:00", Defects: 1},
	}
	got := ds.Records()
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("record %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
	if ds.Source() != "inline" {
		t.Fatalf("unexpected source %q", ds.Source())
	}
}

func TestReadCSVHeaderCaseAndBOM(t *testing.T) {
	data := "\ufeffday, SAMPLE ,defects\n4,10:30,2\n"
	ds, err := ReadCSV(strings.NewReader(data), "bom")
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if ds.Len() != 1 || ds.Records()[0].Sample != "10:30" {
		t.Fatalf("unexpected records: %+v", ds.Records())
	}
}

func TestReadCSVErrors(t *testing.T) {
	cases := map[string]string{
		"missing column": "Day,Sample\n1,08:00\n",
		"bad day":        "Day,Sample,Defects\none,08:00,1\n",
		"bad defects":    "Day,Sample,Defects\n1,08:00,many\n",
		"negative":       "Day,Sample,Defects\n1,08:00,-1\n",
		"empty sample":   "Day,Sample,Defects\n1,,2\n",
		"no header":      "",
	}
	for name, data := range cases {
		_, err := ReadCSV(strings.NewReader(data), name)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		var lerr *LoadError
		if !errors.As(err, &lerr) {
			t.Fatalf("%s: expected LoadError, got %T", name, err)
		}
	}
}

func TestReadCSVErrorLine(t *testing.T) {
	data := "Day,Sample,Defects\n1,08:00,1\n1,09:00,x\n"
	_, err := ReadCSV(strings.NewReader(data), "lines")
	var lerr *LoadError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if lerr.Line != 3 {
		t.Fatalf("expected line 3, got %d", lerr.Line)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	var lerr *LoadError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist error, got %v", err)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	records := []model.DefectRecord{
		{Day: 2, Sample: "08:00", Defects: 7},
		{Day: 1, Sample: "08:30", Defects: 0},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "defects.csv")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	ds, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got := ds.Records()
	if len(got) != 2 || got[0] != records[0] || got[1] != records[1] {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Day", "Sample", "Defects"},
		{1, "08:00", 3},
		{1, "09:00", 5},
		{2, "08:00", 1},
	}
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cellName, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "defects.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	_ = f.Close()

	ds, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got := ds.Records()
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[1] != (model.DefectRecord{Day: 1, Sample: "09:00", Defects: 5}) {
		t.Fatalf("unexpected record: %+v", got[1])
	}
}

func TestRecordsReturnsCopy(t *testing.T) {
	ds := New("mem", []model.DefectRecord{{Day: 1, Sample: "08:00", Defects: 1}})
	recs := ds.Records()
	recs[0].Defects = 99
	if ds.Records()[0].Defects != 1 {
		t.Fatalf("dataset was mutated through Records")
	}
}
