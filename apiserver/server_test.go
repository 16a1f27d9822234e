package apiserver

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/EERL-EPFL/spice-api-sub001/assets"
	"github.com/EERL-EPFL/spice-api-sub001/ingest"
	"github.com/EERL-EPFL/spice-api-sub001/results"
	"github.com/EERL-EPFL/spice-api-sub001/store"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	db, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	blobs, err := assets.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	log := zap.NewNop().Sugar()
	coordinator := ingest.NewCoordinator(db, log)
	assembler := results.NewAssembler(db)
	return New(db, coordinator, assembler, blobs, log)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestServerEndToEndIngestAndResults(t *testing.T) {
	srv := testServer(t)
	router := srv.Router()

	// create tray configuration
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tray-configurations/", bytes.NewBufferString(`{"name":"cfg","is_default":true}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	var tc struct {
		ID uuid.UUID `json:"ID"`
	}
	decodeBody(t, rec, &tc)

	// create tray
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/tray-configurations/"+tc.ID.String()+"/trays",
		bytes.NewBufferString(`{"order_sequence":1,"qty_cols":1,"qty_rows":1,"name":"Tray 1"}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	var tray struct {
		ID uuid.UUID `json:"ID"`
	}
	decodeBody(t, rec, &tray)

	// create well
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/trays/"+tray.ID.String()+"/wells",
		bytes.NewBufferString(`{"row_letter":"A","column_number":1}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	// create probe
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/trays/"+tray.ID.String()+"/probes",
		bytes.NewBufferString(`{"name":"Probe 1","data_column_index":1,"position_x":"0","position_y":"0"}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	// create experiment referencing the tray configuration
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/experiments/",
		bytes.NewBufferString(`{"name":"exp 1","tray_configuration_id":"`+tc.ID.String()+`"}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	var experiment struct {
		ID uuid.UUID `json:"ID"`
	}
	decodeBody(t, rec, &experiment)

	// upload a merged spreadsheet
	xlsxBytes := buildTestXLSX(t)
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "merged.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsxBytes)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/experiments/"+experiment.ID.String()+"/process-excel", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report ingest.ProcessingReport
	decodeBody(t, rec, &report)
	require.Equal(t, 2, report.RowsProcessed)
	require.Equal(t, 1, report.PhaseTransitionsInserted)

	// fetch results
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/experiments/"+experiment.ID.String()+"/results", nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response results.ExperimentResultsResponse
	decodeBody(t, rec, &response)
	require.Equal(t, 2, response.Summary.TotalTimePoints)
	require.Len(t, response.Trays, 1)
	require.Len(t, response.Trays[0].Wells, 1)
	require.Equal(t, 1, response.Trays[0].Wells[0].TotalPhaseChanges)
}

func TestServerResultsNotFound(t *testing.T) {
	srv := testServer(t)
	router := srv.Router()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/experiments/"+uuid.New().String()+"/results", nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func buildTestXLSX(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Date", "Time", "Probe 1", "P1:A1"},
		{"2026-03-01", "12:00:00", -2.0, 0},
		{"2026-03-01", "12:00:01", -5.0, 1},
	}
	for r, row := range rows {
		for c, v := range row {
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, axis, v))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}
