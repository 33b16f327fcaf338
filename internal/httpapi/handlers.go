package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/jaume/remotejobs/internal/model"
	"github.com/jaume/remotejobs/internal/store"
)

const maxPageSize = 500

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	q := store.DefaultJobQuery()
	params := r.URL.Query()

	if category := params.Get("category"); category != "" {
		q.Category = model.Category(category)
	}
	q.Source = params.Get("source")
	q.NoPhoneOnly = params.Get("no_phone") == "true"
	q.HasSalary = params.Get("has_salary") == "true"
	if params.Get("include_inactive") == "true" {
		q.ActiveOnly = false
	}

	var err error
	if q.Limit, err = intParam(params.Get("limit"), q.Limit); err != nil {
		http.Error(w, "invalid limit", http.StatusBadRequest)
		return
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}
	if q.Offset, err = intParam(params.Get("offset"), 0); err != nil {
		http.Error(w, "invalid offset", http.StatusBadRequest)
		return
	}

	jobs, err := s.store.Jobs(q)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(jobs), "jobs": jobs})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("q")
	if text == "" {
		http.Error(w, "missing q parameter", http.StatusBadRequest)
		return
	}

	limit, err := intParam(r.URL.Query().Get("limit"), 100)
	if err != nil {
		http.Error(w, "invalid limit", http.StatusBadRequest)
		return
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	jobs, err := s.store.Search(text, limit)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(jobs), "jobs": jobs})
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.JobByID(r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	categories := make([]map[string]any, 0, len(stats.ByCategory))
	for _, name := range sortedKeys(stats.ByCategory) {
		categories = append(categories, map[string]any{
			"name":  name,
			"count": stats.ByCategory[name],
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	sources := make([]map[string]any, 0, len(stats.BySource))
	for _, name := range sortedKeys(stats.BySource) {
		entry := map[string]any{
			"name":  name,
			"count": stats.BySource[name],
		}
		if last, ok := stats.LastScrape[name]; ok {
			entry["last_scrape"] = last
		}
		sources = append(sources, entry)
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": sources})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query().Get("limit"), 50)
	if err != nil {
		http.Error(w, "invalid limit", http.StatusBadRequest)
		return
	}

	runs, err := s.store.Runs(limit)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(runs), "runs": runs})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("api request failed", "path", r.URL.Path, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func intParam(value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
