package export

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

const testSpreadsheetID = "sheet-1"

// fakeSheetsAPI records the Sheets API calls made against one spreadsheet.
type fakeSheetsAPI struct {
	mu          sync.Mutex
	existing    []string
	failClear   bool
	calls       []string
	clear       sheets.BatchClearValuesRequest
	values      sheets.BatchUpdateValuesRequest
	structural  []sheets.BatchUpdateSpreadsheetRequest
	nextSheetID int64
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	base := "/v4/spreadsheets/" + testSpreadsheetID
	f.calls = append(f.calls, r.Method+" "+strings.TrimPrefix(r.URL.Path, base))
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == base:
		var resp sheets.Spreadsheet
		for i, title := range f.existing {
			resp.Sheets = append(resp.Sheets, &sheets.Sheet{
				Properties: &sheets.SheetProperties{Title: title, SheetId: int64(11 * (i + 1))},
			})
		}
		json.NewEncoder(w).Encode(resp)

	case r.Method == http.MethodPost && r.URL.Path == base+"/values:batchClear":
		if f.failClear {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"code":500,"message":"backend error"}}`))
			return
		}
		json.NewDecoder(r.Body).Decode(&f.clear)
		w.Write([]byte(`{}`))

	case r.Method == http.MethodPost && r.URL.Path == base+"/values:batchUpdate":
		json.NewDecoder(r.Body).Decode(&f.values)
		w.Write([]byte(`{}`))

	case r.Method == http.MethodPost && r.URL.Path == base+":batchUpdate":
		var req sheets.BatchUpdateSpreadsheetRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.structural = append(f.structural, req)

		var resp sheets.BatchUpdateSpreadsheetResponse
		for _, sub := range req.Requests {
			if sub.AddSheet == nil {
				continue
			}
			f.nextSheetID++
			resp.Replies = append(resp.Replies, &sheets.Response{
				AddSheet: &sheets.AddSheetResponse{Properties: &sheets.SheetProperties{
					Title: sub.AddSheet.Properties.Title, SheetId: f.nextSheetID,
				}},
			})
		}
		json.NewEncoder(w).Encode(resp)

	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
	}
}

func newTestSheetsWriter(t *testing.T, api *fakeSheetsAPI) *SheetsWriter {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("creating sheets service: %v", err)
	}
	return newSheetsWriter(testSpreadsheetID, svc)
}

func TestSheetsWriterWrite(t *testing.T) {
	api := &fakeSheetsAPI{existing: []string{HistorySheet}, nextSheetID: 100}
	writer := newTestSheetsWriter(t, api)

	rows := BuildRows(nil)
	rows = append(rows,
		rowFromView(day(1), viewWithSupply(10_000_000_000, 500)),
		rowFromView(day(2), viewWithSupply(11_000_000_000, 500)),
	)
	sortRows(rows)

	if err := writer.Write(context.Background(), rows); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if len(api.structural) != 2 {
		t.Fatalf("structural batch updates = %d, want 2 (add sheet, formatting)", len(api.structural))
	}
	added := api.structural[0].Requests
	if len(added) != 1 || added[0].AddSheet == nil || added[0].AddSheet.Properties.Title != LatestSheet {
		t.Errorf("add sheet requests = %+v, want only %s", added, LatestSheet)
	}

	wantRanges := []string{HistorySheet + "!A:H", LatestSheet + "!A:B"}
	if strings.Join(api.clear.Ranges, ",") != strings.Join(wantRanges, ",") {
		t.Errorf("cleared ranges = %v, want %v", api.clear.Ranges, wantRanges)
	}

	if api.values.ValueInputOption != "USER_ENTERED" {
		t.Errorf("value input option = %q, want USER_ENTERED", api.values.ValueInputOption)
	}
	if len(api.values.Data) != 2 {
		t.Fatalf("value ranges = %d, want 2", len(api.values.Data))
	}
	history := api.values.Data[0]
	if history.Range != HistorySheet+"!A1" || len(history.Values) != len(rows)+1 {
		t.Errorf("history range = %q with %d rows, want %s!A1 with %d", history.Range, len(history.Values), HistorySheet, len(rows)+1)
	}
	if got := history.Values[2][0]; got != "2026-03-02" {
		t.Errorf("last history date = %v, want 2026-03-02", got)
	}
	if api.values.Data[1].Range != LatestSheet+"!A1" {
		t.Errorf("latest range = %q", api.values.Data[1].Range)
	}

	for _, req := range api.structural[1].Requests {
		if req.RepeatCell != nil && req.RepeatCell.Range.SheetId != 11 {
			t.Errorf("formatting targets sheet %d, want HISTORY sheet 11", req.RepeatCell.Range.SheetId)
		}
	}
}

func TestSheetsWriterSkipsAddWhenSheetsExist(t *testing.T) {
	api := &fakeSheetsAPI{existing: []string{HistorySheet, LatestSheet}}
	writer := newTestSheetsWriter(t, api)

	if err := writer.Write(context.Background(), nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(api.structural) != 1 {
		t.Errorf("structural batch updates = %d, want formatting only", len(api.structural))
	}
}

func TestSheetsWriterClearError(t *testing.T) {
	api := &fakeSheetsAPI{existing: []string{HistorySheet, LatestSheet}, failClear: true}
	writer := newTestSheetsWriter(t, api)

	err := writer.Write(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "clearing sheets") {
		t.Fatalf("Write error = %v, want clearing sheets error", err)
	}
	if len(api.values.Data) != 0 {
		t.Error("values should not be written after a failed clear")
	}
}
