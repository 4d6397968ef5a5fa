package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/store"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	n := 0
	s := store.New(
		store.WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
		store.WithNameGenerator(&store.SequenceNames{}),
	)
	srv, err := New(s)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(srv.Close)
	return srv, srv.Routes()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return out
}

func names(fields model.Collection) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

func TestFieldLifecycle(t *testing.T) {
	t.Parallel()
	_, h := newTestServer(t)

	rr := do(t, h, http.MethodPost, "/api/fields", `{"type":"select"}`)
	expectStatus(t, rr, http.StatusCreated)
	if field := decodeBody[model.FieldDefinition](t, rr); field.ID != "id-1" || len(field.Options) != 2 {
		t.Fatalf("unexpected field: %+v", field)
	}
	expectStatus(t, do(t, h, http.MethodPost, "/api/fields", `{"type":"text"}`), http.StatusCreated)

	expectStatus(t, do(t, h, http.MethodPatch, "/api/fields/id-2", `{"name":"field_1"}`), http.StatusConflict)
	rr = do(t, h, http.MethodPatch, "/api/fields/id-2", `{"label":"Email","required":true}`)
	expectStatus(t, rr, http.StatusOK)
	if field := decodeBody[model.FieldDefinition](t, rr); field.Label != "Email" || !field.Required {
		t.Fatalf("patch not applied: %+v", field)
	}
	expectStatus(t, do(t, h, http.MethodPatch, "/api/fields/nope", `{"label":"x"}`), http.StatusNotFound)

	rr = do(t, h, http.MethodPost, "/api/fields/id-2/duplicate", "")
	expectStatus(t, rr, http.StatusCreated)
	if dup := decodeBody[model.FieldDefinition](t, rr); dup.Name != "field_2_copy" || dup.Label != "Email (copy)" {
		t.Fatalf("unexpected duplicate: %+v", dup)
	}

	rr = do(t, h, http.MethodPost, "/api/fields/move", `{"from":2,"to":0}`)
	expectStatus(t, rr, http.StatusOK)
	rr = do(t, h, http.MethodPost, "/api/fields/move", `{"from":7,"to":0}`)
	expectStatus(t, rr, http.StatusOK)
	if moved := decodeBody[map[string]any](t, rr)["moved"]; moved != false {
		t.Fatalf("out of range move should be a no-op, got moved=%v", moved)
	}

	expectStatus(t, do(t, h, http.MethodPut, "/api/selection", `{"id":"id-1"}`), http.StatusOK)
	expectStatus(t, do(t, h, http.MethodPut, "/api/selection", `{"id":"ghost"}`), http.StatusNotFound)
	expectStatus(t, do(t, h, http.MethodPut, "/api/selection", `{"id":"id-1"}`), http.StatusOK)

	expectStatus(t, do(t, h, http.MethodDelete, "/api/fields/id-1", ""), http.StatusNoContent)
	expectStatus(t, do(t, h, http.MethodDelete, "/api/fields/id-1", ""), http.StatusNotFound)

	list := decodeBody[fieldsResponse](t, do(t, h, http.MethodGet, "/api/fields", ""))
	if diff := cmp.Diff([]string{"field_2_copy", "field_2"}, names(list.Fields)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if list.SelectedID != "" {
		t.Fatalf("deleting the selected field should clear the selection, got %q", list.SelectedID)
	}
}

func TestRejectsInvalidPayloads(t *testing.T) {
	t.Parallel()
	_, h := newTestServer(t)

	expectStatus(t, do(t, h, http.MethodPost, "/api/fields", `{"type":"slider"}`), http.StatusUnprocessableEntity)
	expectStatus(t, do(t, h, http.MethodPost, "/api/fields", `{"kind":"text"}`), http.StatusBadRequest)
	expectStatus(t, do(t, h, http.MethodPost, "/api/fields/move", `{"from":1}`), http.StatusUnprocessableEntity)
	expectStatus(t, do(t, h, http.MethodGet, "/api/export?format=csv", ""), http.StatusBadRequest)

	rr := do(t, h, http.MethodPost, "/api/import",
		`[{"id":"a","type":"slider","label":"A","name":"a","required":false,"disabled":false}]`)
	expectStatus(t, rr, http.StatusUnprocessableEntity)
	if resp := decodeBody[errorResponse](t, rr); resp.Code != "validation_failed" || len(resp.Problems) == 0 {
		t.Fatalf("expected validation problems, got %+v", resp)
	}
}

func importContactForm(t *testing.T, h http.Handler) {
	t.Helper()
	doc, err := codec.Encode(testsupport.ContactForm())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	expectStatus(t, do(t, h, http.MethodPost, "/api/import", string(doc)), http.StatusOK)
}

func TestImportExport(t *testing.T) {
	t.Parallel()
	_, h := newTestServer(t)
	importContactForm(t, h)

	want, err := codec.Encode(testsupport.ContactForm())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	rr := do(t, h, http.MethodGet, "/api/export", "")
	expectStatus(t, rr, http.StatusOK)
	if !bytes.Equal(want, rr.Body.Bytes()) {
		t.Fatalf("json export mismatch:\n%s", rr.Body.String())
	}
	if got := rr.Header().Get("Content-Disposition"); !strings.Contains(got, "formulario.json") {
		t.Fatalf("unexpected disposition %q", got)
	}

	rr = do(t, h, http.MethodGet, "/api/export?format=yaml", "")
	expectStatus(t, rr, http.StatusOK)
	fields, err := codec.DecodeYAML(rr.Body.Bytes())
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	if diff := testsupport.CollectionDiff(testsupport.ContactForm(), fields); diff != "" {
		t.Fatalf("yaml export mismatch (-want +got):\n%s", diff)
	}

	rr = do(t, h, http.MethodGet, "/api/export?format=openapi&title=Contact", "")
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), `"submitForm"`) {
		t.Fatalf("openapi export lacks operation:\n%s", rr.Body.String())
	}

	openapiDoc := rr.Body.String()
	_, h2 := newTestServer(t)
	expectStatus(t, do(t, h2, http.MethodPost, "/api/import?format=openapi", openapiDoc), http.StatusOK)
	list := decodeBody[fieldsResponse](t, do(t, h2, http.MethodGet, "/api/fields", ""))
	if diff := testsupport.CollectionDiff(testsupport.ContactForm(), list.Fields); diff != "" {
		t.Fatalf("openapi import mismatch (-want +got):\n%s", diff)
	}
}

func TestPreviewEndpoints(t *testing.T) {
	t.Parallel()
	_, h := newTestServer(t)
	importContactForm(t, h)

	rr := do(t, h, http.MethodPost, "/api/preview", `{"values":{"f-plan":"pro","f-news":true,"f-name":"Ada"}}`)
	expectStatus(t, rr, http.StatusOK)
	resp := decodeBody[previewResponse](t, rr)
	want := []string{"f-name", "f-plan", "f-company", "f-news", "f-age", "f-start"}
	if diff := cmp.Diff(want, resp.Visible); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}
	var submission map[string]any
	if err := json.Unmarshal(resp.Submission, &submission); err != nil {
		t.Fatalf("submission: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"full_name": "Ada", "plan": "pro", "newsletter": true}, submission); diff != "" {
		t.Fatalf("submission mismatch (-want +got):\n%s", diff)
	}

	rr = do(t, h, http.MethodPost, "/preview", `{"values":{"f-plan":"free"},"locale":"pt-BR"}`)
	expectStatus(t, rr, http.StatusOK)
	html := rr.Body.String()
	if strings.Contains(html, `data-field-id="f-company"`) || !strings.Contains(html, "Enviar") {
		t.Fatalf("unexpected preview:\n%s", html)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()
	_, h := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/healthz", "")
	expectStatus(t, rr, http.StatusOK)
	if body := decodeBody[map[string]any](t, rr); body["status"] != "ok" {
		t.Fatalf("unexpected health body %v", body)
	}
	rr = do(t, h, http.MethodGet, "/metrics", "")
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), "formbuilder_http_requests_total") {
		t.Fatalf("metrics should expose request counters")
	}
}

func TestEventStream(t *testing.T) {
	t.Parallel()
	_, h := newTestServer(t)
	ts := httptest.NewServer(h)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/events", nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	resp, err := http.Post(ts.URL+"/api/fields", "application/json", strings.NewReader(`{"type":"switch"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var event store.Event
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	want := store.Event{Kind: store.EventAdded, FieldID: "id-1", SelectedID: "id-1", Len: 1}
	if diff := cmp.Diff(want, event); diff != "" {
		t.Fatalf("event mismatch (-want +got):\n%s", diff)
	}
}

func TestHubDropsSlowSubscribers(t *testing.T) {
	t.Parallel()

	h := newHub(1, zap.NewNop())
	sub := h.subscribe()
	h.publish(store.Event{Kind: store.EventAdded})
	h.publish(store.Event{Kind: store.EventDeleted})

	if h.len() != 0 {
		t.Fatalf("slow subscriber should be dropped")
	}
	if event, ok := <-sub.events; !ok || event.Kind != store.EventAdded {
		t.Fatalf("buffered event should still be delivered, got %+v %v", event, ok)
	}
	if _, ok := <-sub.events; ok {
		t.Fatalf("channel should be closed after drop")
	}
	h.unsubscribe(sub)
}
