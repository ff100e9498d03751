package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/render/jsonout"
)

type healthResponse struct {
	Status string `json:"status"`
	Data   string `json:"data"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Status string `json:"status,omitempty"`
}

// PersonResponse is the body of GET /api/people/{id}.
type PersonResponse struct {
	Person    family.Person   `json:"person"`
	Parents   []family.Person `json:"parents"`
	Spouse    *family.Person  `json:"spouse"`
	Children  []family.Person `json:"children"`
	Symmetric bool            `json:"symmetric"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Data:   s.Loader().State().Status.String(),
	})
}

// snapshot returns the loaded data, or writes 503/502 and returns nil.
func (s *Server) snapshot(w http.ResponseWriter) *family.FamilyData {
	st := s.Loader().State()
	switch st.Status {
	case family.StatusReady:
		return st.Data
	case family.StatusFailed:
		respondJSON(w, http.StatusBadGateway, errorResponse{Error: st.Message, Status: st.Status.String()})
	default:
		w.Header().Set("Retry-After", "1")
		respondJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "family data is loading", Status: st.Status.String()})
	}
	return nil
}

func (s *Server) getFamily(w http.ResponseWriter, r *http.Request) {
	data := s.snapshot(w)
	if data == nil {
		return
	}
	respondJSON(w, http.StatusOK, data)
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	data := s.snapshot(w)
	if data == nil {
		return
	}
	res, _, err := s.runner.ComputeLayout(r.Context(), data, s.opts)
	if err != nil {
		s.respondError(w, err)
		return
	}
	out, err := jsonout.Render(res, jsonout.WithCompact())
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(out)
}

func (s *Server) getPerson(w http.ResponseWriter, r *http.Request) {
	data := s.snapshot(w)
	if data == nil {
		return
	}
	id := chi.URLParam(r, "personID")
	p, ok := data.Person(id)
	if !ok {
		s.respondError(w, errors.New(errors.ErrCodePersonNotFound, "person %q not found", id))
		return
	}

	symmetric, _ := strconv.ParseBool(r.URL.Query().Get("symmetric"))
	var rel family.Relations
	if symmetric {
		rel = family.ResolveSymmetric(p, data.People)
	} else {
		rel = family.Resolve(p, data.People)
	}

	respondJSON(w, http.StatusOK, PersonResponse{
		Person:    p,
		Parents:   nonNil(rel.Parents),
		Spouse:    rel.Spouse,
		Children:  nonNil(rel.Children),
		Symmetric: symmetric,
	})
}

func (s *Server) getChart(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.respondError(w, err)
		return
	}
	data := s.snapshot(w)
	if data == nil {
		return
	}

	opts := s.opts
	opts.Formats = []string{format}
	opts.Title = r.URL.Query().Get("title")
	opts.Detailed, _ = strconv.ParseBool(r.URL.Query().Get("detailed"))

	res, _, err := s.runner.ComputeLayout(r.Context(), data, opts)
	if err != nil {
		s.respondError(w, err)
		return
	}
	artifacts, _, err := s.runner.Render(r.Context(), data, res, opts)
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.Write(artifacts[format])
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	respondJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}

func statusFor(err error) int {
	switch {
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func nonNil(people []family.Person) []family.Person {
	if people == nil {
		return []family.Person{}
	}
	return people
}
