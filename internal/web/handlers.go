package web

import (
	"io"
	"net/http"
	"strconv"

	"github.com/stringauthority/registry/internal/catalog"
	"github.com/stringauthority/registry/internal/logging"
	"github.com/stringauthority/registry/internal/postgres"
)

// maxSubmissionBody caps the request body for POST /api/submissions.
const maxSubmissionBody = 10 * 1024 * 1024

// handleSubmissions accepts a single submission object or an ordered array
// of them. Batches always answer 200 with the batch result as the body; a
// single submission answers with its bare result and a status derived from
// the outcome.
func (s *Server) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSubmissionBody+1))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if len(body) > maxSubmissionBody {
		s.respondError(w, r, errBodyTooLarge, http.StatusRequestEntityTooLarge)
		return
	}

	subs, isBatch, err := catalog.ParseSubmissions(body)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	log := logging.FromContext(r.Context())

	if isBatch {
		result := s.processor.ProcessBatch(r.Context(), subs)
		log.Info("batch processed",
			"total", result.TotalCount,
			"successful", result.Summary.Successful,
			"rolled_back", result.RolledBack)
		respondJSON(w, http.StatusOK, result)
		return
	}

	result := s.processor.ProcessOne(r.Context(), subs[0])
	respondJSON(w, submissionStatus(result), result)
}

// submissionStatus maps a single-submission outcome to an HTTP status.
func submissionStatus(res catalog.SubmissionResult) int {
	switch {
	case res.Success:
		return http.StatusOK
	case res.ManualReviewNeeded:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

func (s *Server) handleListManufacturers(w http.ResponseWriter, r *http.Request) {
	recs, err := s.db.ListManufacturers(r.Context(),
		r.URL.Query().Get("status"),
		r.URL.Query().Get("q"),
		pageFromRequest(r))
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Items: manufacturersJSON(recs)})
}

func (s *Server) handleSearchModels(w http.ResponseWriter, r *http.Request) {
	var year *int
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			s.respondError(w, r, errBadYearParam, http.StatusBadRequest)
			return
		}
		year = &y
	}

	rows, err := s.db.SearchModels(r.Context(),
		r.URL.Query().Get("q"),
		r.URL.Query().Get("manufacturer"),
		year,
		pageFromRequest(r))
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Items: modelsJSON(rows)})
}

func (s *Server) handleSearchGuitars(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.SearchGuitars(r.Context(), r.URL.Query().Get("q"), pageFromRequest(r))
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Items: guitarsJSON(rows)})
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.ListBatches(r.Context(), pageFromRequest(r))
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []postgres.BatchRow{}
	}
	respondJSON(w, http.StatusOK, listResponse{Items: rows})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pageFromRequest reads page/page_size query parameters. Page numbering is
// 1-based.
func pageFromRequest(r *http.Request) postgres.Page {
	size := parseIntParam(r, "page_size", 50)
	page := parseIntParam(r, "page", 1)
	return postgres.Page{Limit: size, Offset: (page - 1) * size}
}

func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
