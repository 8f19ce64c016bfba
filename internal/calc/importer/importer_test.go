package importer

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xuri/excelize/v2"

	"Aquaquote/internal/calc/plant"
	"Aquaquote/internal/catalog"
	"Aquaquote/internal/engine"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatalf("header: %v", err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("row %d: %v", i, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	return buf
}

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	return engine.New(c)
}

func TestParseWorkbook_SkipsBadRows(t *testing.T) {
	buf := workbook(t, [][]any{
		{"STP", "1000", "200", "", "150"},
		{"ETP", "abc"},
		{"etp", "250", "300", "600", "", "7", "20", "", "400"},
		{"STP"},
	})
	rows, skipped, err := ParseWorkbook(buf)
	if err != nil {
		t.Fatalf("ParseWorkbook: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %+v, want 2", rows)
	}
	if len(skipped) != 2 || skipped[0] != 3 || skipped[1] != 5 {
		t.Fatalf("skipped = %v, want [3 5]", skipped)
	}

	first := rows[0]
	if first.Row != 2 || first.Spec.Capacity != 1000 || first.Spec.BOD != 200 || first.Spec.TSS != 150 || first.Spec.COD != 0 {
		t.Fatalf("first = %+v", first)
	}
	second := rows[1].Spec
	if second.Type != plant.TypeETP || second.PeakFlow != 400 || second.PH != 7 || second.OilGrease != 20 {
		t.Fatalf("second = %+v", second)
	}
}

func TestParseWorkbook_Empty(t *testing.T) {
	if _, _, err := ParseWorkbook(workbook(t, nil)); err == nil {
		t.Fatalf("expected error for header-only sheet")
	}
	if _, _, err := ParseWorkbook(bytes.NewBufferString("not a workbook")); err == nil {
		t.Fatalf("expected error for garbage input")
	}
}

func TestQuoteAll_MatchesSingleQuote(t *testing.T) {
	eng := testEngine(t)
	spec := plant.Spec{Type: plant.TypeSTP, Capacity: 1000, BOD: 200, TSS: 150}
	want, _ := eng.ApplySpec(eng.Initial(), spec)

	got := QuoteAll(eng, []Row{{Row: 2, Spec: spec}, {Row: 3, Spec: plant.Spec{Capacity: 0}}})
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Quote.Total != want.Total || got[0].Quote.Phase != engine.Sized {
		t.Fatalf("quote = %+v, want total %v", got[0].Quote, want.Total)
	}
	if got[1].Quote.Phase != engine.Idle || got[1].Quote.Total != 0 {
		t.Fatalf("zero-capacity quote = %+v", got[1].Quote)
	}
}

func TestBatch_RequiresItems(t *testing.T) {
	if _, err := Batch(testEngine(t), BatchInput{}); err == nil {
		t.Fatalf("expected error for empty batch")
	}
}

func TestHandler_Import(t *testing.T) {
	h := &Handler{Engine: testEngine(t)}
	xlsx := workbook(t, [][]any{{"STP", "500", "250"}, {"STP", "x"}})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "plants.xlsx")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write(xlsx.Bytes()); err != nil {
		t.Fatalf("write: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/tools/quote/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Import(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d body=%s", rec.Code, rec.Body.String())
	}
	var res Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Count != 1 || len(res.Skipped) != 1 || res.Skipped[0] != 3 {
		t.Fatalf("result = %+v", res)
	}
	if res.Results[0].Quote.Total <= 0 {
		t.Fatalf("total = %v, want > 0", res.Results[0].Quote.Total)
	}
}

func TestHandler_ImportWithoutFile(t *testing.T) {
	h := &Handler{Engine: testEngine(t)}
	req := httptest.NewRequest(http.MethodPost, "/api/tools/quote/import", bytes.NewBufferString(""))
	rec := httptest.NewRecorder()
	h.Import(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}
}

func TestHandler_Batch(t *testing.T) {
	h := &Handler{Engine: testEngine(t)}
	body := `{"items":[{"type":"STP","capacity":1000,"BOD":200},{"type":"ETP","capacity":100,"BOD":400,"COD":900}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/tools/quote/batch", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.Batch(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	var res Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Count != 2 || res.Results[1].Row != 2 {
		t.Fatalf("result = %+v", res)
	}
}
