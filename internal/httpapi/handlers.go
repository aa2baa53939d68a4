package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/dshills/travelrec/internal/storage"
)

const maxBodyBytes = 1 << 20

type healthResponse struct {
	Status string         `json:"status"`
	Stats  *storage.Stats `json:"stats,omitempty"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var body recommendBody
	if err := decodeBody(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, "invalid request body: "+err.Error())
		return
	}
	req, err := body.toRequest()
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, err.Error())
		return
	}

	resp, err := s.svc.Recommend(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp.Recommendations)
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	var body submitReviewBody
	if err := decodeBody(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, "invalid request body: "+err.Error())
		return
	}

	resp, err := s.svc.SubmitReview(r.Context(), body.toRequest())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGraphVisualization(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusNotFound, CodePlaceNotFound, msgPlaceNotFound)
		return
	}

	exp, err := s.svc.GraphExplanation(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, exp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Status(r.Context())
	if err != nil {
		s.log.Warn().Err(err).Msg("health check could not read storage")
		respondJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded"})
		return
	}
	respondJSON(w, http.StatusOK, healthResponse{Status: "ok", Stats: stats})
}
