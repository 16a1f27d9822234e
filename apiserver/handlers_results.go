package apiserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleGetResults(w http.ResponseWriter, r *http.Request) {
	experimentID, err := uuid.Parse(chi.URLParam(r, "experimentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid experiment id")
		return
	}

	response, err := s.assembler.GetExperimentResults(r.Context(), experimentID)
	if err != nil {
		writeError(w, statusForResultsError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, response)
}
