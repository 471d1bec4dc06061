package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowpilot/backend/internal/answer"
	"knowpilot/backend/internal/config"
	"knowpilot/backend/internal/vector"
)

type fakeStore struct{}

func (f *fakeStore) ReplaceAll(ctx context.Context, class string, entries []vector.Entry) error {
	return nil
}

func (f *fakeStore) Search(ctx context.Context, class string, vec []float32, k int) ([]vector.SearchResult, error) {
	return nil, nil
}

func (f *fakeStore) Purge(ctx context.Context, class string) error { return nil }

func (f *fakeStore) Count(ctx context.Context, class string) (int, error) { return 0, nil }

type fakeState struct{}

func (f *fakeState) Active(ctx context.Context) (string, error) { return vector.ClassA, nil }

func (f *fakeState) SetActive(ctx context.Context, class string) error { return nil }

type fakeEmbedder struct{}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1}, nil
}

type fakeCompleter struct{}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return `{"intent": "pregunta_general"}`, nil
}

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	index := vector.NewIndex(&fakeStore{}, &fakeState{})
	cfg := &config.Config{RetrievalK: 4, ServerPort: 8081}

	var queryLog bytes.Buffer
	a, err := New(cfg, db, index, &fakeEmbedder{}, &fakeCompleter{}, &Options{
		QueryLog: answer.NewQueryLogger(&queryLog),
	})
	require.NoError(t, err)
	return a, &queryLog
}

func TestNew_HealthRoute(t *testing.T) {
	a, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestNew_AskRouteRequiresQuestion(t *testing.T) {
	a, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/ask", nil)
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNew_AskRouteAnswers(t *testing.T) {
	a, queryLog := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/ask?question=hola+que+tal+el+sistema", nil)
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "answer")
	assert.Contains(t, body, "follow_up_required")

	// The injected query logger receives the entry; nothing is written to disk.
	assert.Contains(t, queryLog.String(), "hola que tal el sistema")
}

func TestNew_MetricsRoute(t *testing.T) {
	a, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNew_CORSHeaders(t *testing.T) {
	a, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/ask?question=hola+que+tal+el+sistema", nil)
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
