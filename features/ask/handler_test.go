package ask

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"knowpilot/backend/internal/intent"
)

func TestHandler_Ask_ReturnsAnswerJSON(t *testing.T) {
	classifier := new(MockClassifier)
	engine := new(MockAnswerer)
	tickets := new(MockTicketOpener)
	classifier.On("Classify", mock.Anything, mock.Anything).Return(intent.GeneralQuestion, nil)
	engine.On("Answer", mock.Anything, "¿dónde está la wiki?").Return("En intranet/wiki.", nil)

	handler := NewHandler(NewService(classifier, engine, tickets))

	req := httptest.NewRequest(http.MethodGet, "/ask?question="+url.QueryEscape("¿dónde está la wiki?"), nil)
	rec := httptest.NewRecorder()
	handler.Ask(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var reply Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "En intranet/wiki.", reply.Answer)
	assert.False(t, reply.FollowUpRequired)
}

func TestHandler_Ask_FollowUpFlagSurfacesInJSON(t *testing.T) {
	classifier := new(MockClassifier)
	engine := new(MockAnswerer)
	classifier.On("Classify", mock.Anything, mock.Anything).Return(intent.ProblemReport, nil)
	engine.On("Answer", mock.Anything, mock.Anything).Return("Prueba a reiniciar.", nil)

	handler := NewHandler(NewService(classifier, engine, new(MockTicketOpener)))

	req := httptest.NewRequest(http.MethodGet, "/ask?question=fallo", nil)
	rec := httptest.NewRecorder()
	handler.Ask(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["follow_up_required"])
}

func TestHandler_Ask_MissingQuestionReturnsBadRequest(t *testing.T) {
	classifier := new(MockClassifier)
	handler := NewHandler(NewService(classifier, new(MockAnswerer), new(MockTicketOpener)))

	req := httptest.NewRequest(http.MethodGet, "/ask", nil)
	rec := httptest.NewRecorder()
	handler.Ask(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
	classifier.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
}

func TestHandler_Ask_TicketMarkerEndToEnd(t *testing.T) {
	tickets := new(MockTicketOpener)
	tickets.On("Open", mock.Anything, mock.Anything).Return(int64(3), nil)

	handler := NewHandler(NewService(new(MockClassifier), new(MockAnswerer), tickets))

	q := url.QueryEscape("ACTION_CREATE_TICKET: pantalla rota")
	req := httptest.NewRequest(http.MethodGet, "/ask?question="+q, nil)
	req = req.WithContext(context.Background())
	rec := httptest.NewRecorder()
	handler.Ask(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var reply Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Contains(t, reply.Answer, "#3")
	assert.Contains(t, reply.Answer, "pantalla rota")
}
