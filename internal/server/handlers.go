package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/preview"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

const formatOpenAPI = "openapi"

type fieldsResponse struct {
	Fields     model.Collection `json:"fields"`
	SelectedID string           `json:"selectedId,omitempty"`
}

type addFieldRequest struct {
	Type model.FieldType `json:"type" validate:"required,fieldtype"`
}

type moveRequest struct {
	From *int `json:"from" validate:"required"`
	To   *int `json:"to" validate:"required"`
}

type selectRequest struct {
	ID string `json:"id"`
}

type previewRequest struct {
	Values map[string]any      `json:"values"`
	Locale string              `json:"locale"`
	Title  string              `json:"title"`
	Errors map[string][]string `json:"errors"`
}

type previewResponse struct {
	Visible    []string        `json:"visible"`
	Submission json.RawMessage `json:"submission"`
}

// snapshot returns the collection and selection under the store lock.
func (s *Server) snapshot() fieldsResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fieldsResponse{Fields: s.store.Fields(), SelectedID: s.store.SelectedID()}
}

func (s *Server) listFields(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) addField(w http.ResponseWriter, r *http.Request) {
	var req addFieldRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	field, err := s.store.AddField(req.Type)
	s.mu.Unlock()
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, field)
}

func (s *Server) updateField(w http.ResponseWriter, r *http.Request) {
	var patch store.FieldPatch
	if !s.decode(w, r, &patch) {
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	err := s.store.UpdateField(id, patch)
	field, _ := s.store.Field(id)
	s.mu.Unlock()
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, field)
}

func (s *Server) deleteField(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	removed := s.store.DeleteField(id)
	s.mu.Unlock()
	if !removed {
		s.handleError(w, fmt.Errorf("%w: %s", store.ErrFieldNotFound, id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) duplicateField(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	dup, ok := s.store.DuplicateField(id)
	s.mu.Unlock()
	if !ok {
		s.handleError(w, fmt.Errorf("%w: %s", store.ErrFieldNotFound, id))
		return
	}
	writeJSON(w, http.StatusCreated, dup)
}

// moveField applies a drag gesture. Out of range indices are a no-op, not an
// error, and the response reports whether anything moved.
func (s *Server) moveField(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	moved := s.store.MoveField(*req.From, *req.To)
	fields := s.store.Fields()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"moved": moved, "fields": fields})
}

func (s *Server) selectField(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	ok := s.store.SelectField(req.ID)
	selected := s.store.SelectedID()
	s.mu.Unlock()
	if !ok {
		s.handleError(w, fmt.Errorf("%w: %s", store.ErrFieldNotFound, req.ID))
		return
	}
	writeJSON(w, http.StatusOK, selectRequest{ID: selected})
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	fields := s.snapshot().Fields
	name := r.URL.Query().Get("format")

	if strings.EqualFold(name, formatOpenAPI) {
		doc, err := openapi.Export(r.Context(), fields, openapi.ExportOptions{
			Title: r.URL.Query().Get("title"),
		})
		if err != nil {
			s.handleError(w, err)
			return
		}
		data, err := openapi.MarshalDocument(doc)
		if err != nil {
			s.handleError(w, err)
			return
		}
		writeRaw(w, "application/json", "openapi.json", data)
		return
	}

	format, err := codec.ParseFormat(name)
	if err != nil {
		s.handleError(w, err)
		return
	}
	data, err := codec.Marshal(format, fields, codec.WithLogger(s.logger))
	if err != nil {
		s.handleError(w, err)
		return
	}
	if format == codec.FormatYAML {
		writeRaw(w, "application/yaml", "formulario.yaml", data)
		return
	}
	writeRaw(w, "application/json", codec.DefaultFileName, data)
}

// importFields replaces the whole collection with a decoded document. The
// format comes from the query string, then the content type.
func (s *Server) importFields(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}

	fields, err := s.decodeDocument(r.Context(), requestFormat(r), data)
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.mu.Lock()
	err = s.store.Replace(fields)
	s.mu.Unlock()
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.logger.Info("imported form", zap.Int("fields", len(fields)))
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) decodeDocument(ctx context.Context, name string, data []byte) (model.Collection, error) {
	if strings.EqualFold(name, formatOpenAPI) {
		return openapi.Import(ctx, data, openapi.ImportOptions{})
	}
	format, err := codec.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	return codec.Unmarshal(format, data, codec.WithLogger(s.logger))
}

func requestFormat(r *http.Request) string {
	if name := r.URL.Query().Get("format"); name != "" {
		return name
	}
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "yaml") {
		return string(codec.FormatYAML)
	}
	return string(codec.FormatJSON)
}

// previewVisibility answers which fields render for the given values, plus
// the submission those values would produce.
func (s *Server) previewVisibility(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !s.decode(w, r, &req) {
		return
	}
	session := s.openSession(req.Values)
	defer session.Close()

	submission, err := session.Submit()
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{
		Visible:    session.VisibleIDs(),
		Submission: submission,
	})
}

func (s *Server) previewHTML(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if r.ContentLength != 0 {
		if !s.decode(w, r, &req) {
			return
		}
	}
	session := s.openSession(req.Values)
	defer session.Close()

	loc := req.Locale
	if loc == "" {
		loc = s.locale
	}
	out, err := s.html.Render(r.Context(), session.Fields(), render.RenderOptions{
		Values: session.Values(),
		Errors: req.Errors,
		Locale: loc,
		Title:  req.Title,
	})
	if err != nil {
		s.handleError(w, err)
		return
	}
	w.Header().Set("Content-Type", s.html.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// openSession snapshots the collection into a preview session seeded with
// values. Values that do not fit their field are dropped.
func (s *Server) openSession(values map[string]any) *preview.Session {
	return preview.NewSession(s.snapshot().Fields, s.evaluator,
		preview.WithValues(values),
		preview.WithLogger(s.logger),
	)
}

// decode reads a JSON body into v and validates it. It writes the error
// response and returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
		return false
	}
	return true
}
