// Package metadata loads the external case-file metadata sheet (spec.md
// §4.1, §6) and indexes it by normalized case-file id for the
// orchestrator's join. Both CSV (via encoding/csv) and XLSX (via
// github.com/xuri/excelize/v2, grounded in bbiangul-go-reason's
// parser/xlsx.go) sheets are accepted; both produce the same Row type.
package metadata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/techjusticelab/opinion-ingest/internal/normalize"
)

// Row is one metadata-sheet record, joined against a PDF by
// CaseFileIDNormalized (spec.md §4.1).
type Row struct {
	CaseFileID        string
	Title             string
	Court             string
	District          string
	County            string
	DecisionYear      int
	DecisionMonth     int
	PublicationStatus string
	OpinionType       string
}

// Sheet is the metadata sheet indexed by normalized case-file id, plus
// the original row order for single-file mode's --row N selector.
type Sheet struct {
	byNormalizedID map[string]Row
	ordered        []Row
}

// Lookup returns the row whose normalized case-file id matches, and
// whether one was found (spec.md §4.1: "files without a metadata match
// are skipped").
func (s *Sheet) Lookup(normalizedCaseFileID string) (Row, bool) {
	row, ok := s.byNormalizedID[normalizedCaseFileID]
	return row, ok
}

func (s *Sheet) Len() int { return len(s.byNormalizedID) }

// RowAt returns the n'th data row (1-indexed, matching the sheet's on-disk
// order) for single-file mode's --row N selector.
func (s *Sheet) RowAt(n int) (Row, bool) {
	if n < 1 || n > len(s.ordered) {
		return Row{}, false
	}
	return s.ordered[n-1], true
}

// Load reads a CSV or XLSX metadata sheet, selecting the parser by file
// extension.
func Load(path string) (*Sheet, error) {
	var rows []Row
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		rows, err = loadXLSX(path)
	default:
		rows, err = loadCSV(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load metadata sheet %s: %w", path, err)
	}

	sheet := &Sheet{byNormalizedID: make(map[string]Row, len(rows)), ordered: rows}
	for _, row := range rows {
		key := normalize.CaseFileID(row.CaseFileID)
		if key == "" {
			continue
		}
		sheet.byNormalizedID[key] = row
	}
	return sheet, nil
}

// header names recognized for each logical column, matched
// case-insensitively so the sheet's exact column naming doesn't matter.
var headerAliases = map[string][]string{
	"case_file_id":      {"case_file_id", "case file id", "docket", "case_number", "case number"},
	"title":             {"title", "case_name", "case name", "style"},
	"court":             {"court", "court_name", "court name"},
	"district":          {"district"},
	"county":            {"county"},
	"year":              {"decision_year", "year"},
	"month":             {"decision_month", "month"},
	"publication_status": {"publication_status", "publication"},
	"opinion_type":      {"opinion_type", "opinion type"},
}

func indexHeaders(headers []string) map[string]int {
	idx := make(map[string]int)
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		for logical, aliases := range headerAliases {
			for _, alias := range aliases {
				if norm == alias {
					idx[logical] = i
				}
			}
		}
	}
	return idx
}

func rowFromFields(idx map[string]int, fields []string) Row {
	get := func(key string) string {
		if i, ok := idx[key]; ok && i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}
	year, _ := strconv.Atoi(get("year"))
	month, _ := strconv.Atoi(get("month"))
	return Row{
		CaseFileID:        get("case_file_id"),
		Title:             get("title"),
		Court:             get("court"),
		District:          get("district"),
		County:            get("county"),
		DecisionYear:      year,
		DecisionMonth:     month,
		PublicationStatus: get("publication_status"),
		OpinionType:       get("opinion_type"),
	}
}

func loadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := indexHeaders(header)

	var rows []Row
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		rows = append(rows, rowFromFields(idx, fields))
	}
	return rows, nil
}

func loadXLSX(path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return nil, fmt.Errorf("no sheets found")
	}

	allRows, err := f.GetRows(sheetList[0])
	if err != nil {
		return nil, err
	}
	if len(allRows) == 0 {
		return nil, fmt.Errorf("sheet is empty")
	}

	idx := indexHeaders(allRows[0])
	var rows []Row
	for _, fields := range allRows[1:] {
		rows = append(rows, rowFromFields(idx, fields))
	}
	return rows, nil
}
