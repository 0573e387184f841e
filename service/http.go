package service

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router returns the HTTP control surface mounted under /v1.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Route("/v1", func(r chi.Router) {
		s.RegisterHTTP(r)
	})
	return r
}

// RegisterHTTP mounts the service endpoints on a chi router.
func (s *Service) RegisterHTTP(r chi.Router) {
	r.Get("/documents", s.handleListDocuments)
	r.Post("/documents", s.handleLoadDocument)
	r.Route("/documents/{docID}", func(r chi.Router) {
		r.Get("/", s.handleRender)
		r.Delete("/", s.handleUnload)
		r.Get("/status", s.handleStatus)
		r.Get("/taborder", s.handleTabOrder)
		r.Put("/inert", s.handleSetInert)
		r.Get("/events", s.handleEvents)
	})
}

func (s *Service) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Documents())
}

func (s *Service) handleLoadDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Markup string `json:"markup"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Markup == "" {
		writeError(w, http.StatusBadRequest, errors.New("markup is required"))
		return
	}
	id, err := s.LoadDocument(r.Context(), req.Name, req.Markup)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"doc_id": id})
}

func (s *Service) handleRender(w http.ResponseWriter, r *http.Request) {
	out, err := s.Render(chi.URLParam(r, "docID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(out))
}

func (s *Service) handleUnload(w http.ResponseWriter, r *http.Request) {
	if err := s.UnloadDocument(chi.URLParam(r, "docID")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.Status(chi.URLParam(r, "docID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Service) handleTabOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.TabOrder(chi.URLParam(r, "docID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tab_order": order})
}

func (s *Service) handleSetInert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ElementID string `json:"element_id"`
		Inert     bool   `json:"inert"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.ElementID == "" {
		writeError(w, http.StatusBadRequest, errors.New("element_id is required"))
		return
	}
	if err := s.SetInert(chi.URLParam(r, "docID"), req.ElementID, req.Inert); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"element_id": req.ElementID, "inert": req.Inert})
}

func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.jrnl == nil {
		writeError(w, http.StatusNotFound, errors.New("journal not configured"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := s.jrnl.Events(r.Context(), chi.URLParam(r, "docID"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDocumentNotFound), errors.Is(err, ErrElementNotFound):
		writeError(w, http.StatusNotFound, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
