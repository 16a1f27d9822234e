package apiserver

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxUploadBytes = 32 << 20 // 32 MiB, well above the tens-of-thousands-of-rows bound

func (s *Server) handleProcessExcel(w http.ResponseWriter, r *http.Request) {
	experimentID, err := uuid.Parse(chi.URLParam(r, "experimentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid experiment id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		file, _, err = r.FormFile("excel_file")
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "no spreadsheet file found in request")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read uploaded file: "+err.Error())
		return
	}

	report, err := s.coordinator.IngestSpreadsheet(r.Context(), experimentID, data)
	if err != nil {
		s.log.Errorw("ingest failed", "experiment_id", experimentID, "error", err)
		writeError(w, statusForIngestError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}
