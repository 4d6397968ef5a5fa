package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-formbuilder/pkg/store"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Delete("/api/fields/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("DELETE", "/api/fields/{id}", "204"))
	for _, id := range []string{"a", "b"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/fields/"+id, http.NoBody))
		if rr.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rr.Code)
		}
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("DELETE", "/api/fields/{id}", "204"))
	if after-before != 2 {
		t.Fatalf("expected 2 requests under one pattern, got %v", after-before)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Fatalf("expected duration observations")
	}
}

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(expressionFailures.WithLabelValues(visibility.ReasonSyntax))
	RecordExpressionFailure(visibility.Failure{FieldID: "x", Reason: visibility.ReasonSyntax, Err: errors.New("boom")})
	if got := testutil.ToFloat64(expressionFailures.WithLabelValues(visibility.ReasonSyntax)); got-before != 1 {
		t.Fatalf("expression failure not counted")
	}

	s := store.New()
	unsubscribe := s.Subscribe(RecordStoreEvent)
	defer unsubscribe()

	added := testutil.ToFloat64(storeMutations.WithLabelValues(string(store.EventAdded)))
	if _, err := s.AddField("text"); err != nil {
		t.Fatalf("AddField: %v", err)
	}
	if _, err := s.AddField("switch"); err != nil {
		t.Fatalf("AddField: %v", err)
	}
	if got := testutil.ToFloat64(storeMutations.WithLabelValues(string(store.EventAdded))); got-added != 2 {
		t.Fatalf("expected 2 added events, got %v", got-added)
	}
	if got := testutil.ToFloat64(fieldCount); got != 2 {
		t.Fatalf("field gauge = %v, want 2", got)
	}
}
