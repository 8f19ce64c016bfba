package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"Aquaquote/internal/calc/plant"
	"Aquaquote/internal/engine"
)

// Columns is the expected header of the plant sheet. Only type and
// capacity are required; blank optional cells read as 0.
var Columns = []string{"type", "capacity", "BOD", "COD", "TSS", "pH", "OilGrease", "Nitrogen", "PeakFlow"}

type Row struct {
	Row  int        `json:"row"`
	Spec plant.Spec `json:"plant"`
}

type Quote struct {
	Row   int             `json:"row"`
	Quote engine.Snapshot `json:"quote"`
}

type Result struct {
	Count   int     `json:"count"`
	Results []Quote `json:"results"`
	Skipped []int   `json:"skipped,omitempty"`
}

// ParseWorkbook reads plant rows from the first sheet. Rows that are too
// short or carry a non-numeric value are skipped and reported by their
// 1-based sheet row number.
func ParseWorkbook(r io.Reader) ([]Row, []int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("reading sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("empty sheet")
	}

	var out []Row
	var skipped []int
	for i := 1; i < len(rows); i++ {
		if blank(rows[i]) {
			continue
		}
		spec, err := parseRow(rows[i])
		if err != nil {
			skipped = append(skipped, i+1)
			continue
		}
		out = append(out, Row{Row: i + 1, Spec: spec})
	}
	return out, skipped, nil
}

func parseRow(row []string) (plant.Spec, error) {
	if len(row) < 2 {
		return plant.Spec{}, fmt.Errorf("bad row")
	}
	vals := make([]float64, len(Columns)-1)
	for i := range vals {
		if i+1 >= len(row) {
			break
		}
		s := strings.TrimSpace(row[i+1])
		if s == "" {
			if i == 0 {
				return plant.Spec{}, fmt.Errorf("capacity required")
			}
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return plant.Spec{}, fmt.Errorf("column %s: %w", Columns[i+1], err)
		}
		vals[i] = v
	}
	return plant.Spec{
		Type:      plant.ParseType(row[0]),
		Capacity:  vals[0],
		BOD:       vals[1],
		COD:       vals[2],
		TSS:       vals[3],
		PH:        vals[4],
		OilGrease: vals[5],
		Nitrogen:  vals[6],
		PeakFlow:  vals[7],
	}.Normalize(), nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// QuoteAll prices every row independently from a fresh session state.
func QuoteAll(eng *engine.Engine, rows []Row) []Quote {
	out := make([]Quote, 0, len(rows))
	for _, r := range rows {
		s, _ := eng.ApplySpec(eng.Initial(), r.Spec)
		out = append(out, Quote{Row: r.Row, Quote: s.Snapshot()})
	}
	return out
}

type BatchInput struct {
	Items []plant.Spec `json:"items"`
}

// Batch quotes a JSON list of plants; item rows are numbered from 1.
func Batch(eng *engine.Engine, in BatchInput) (Result, error) {
	if len(in.Items) == 0 {
		return Result{}, fmt.Errorf("no items")
	}
	rows := make([]Row, len(in.Items))
	for i, s := range in.Items {
		rows[i] = Row{Row: i + 1, Spec: s}
	}
	q := QuoteAll(eng, rows)
	return Result{Count: len(q), Results: q}, nil
}
