package ask

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"knowpilot/backend/features/ticket"
	"knowpilot/backend/internal/intent"
)

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, message string) (intent.Intent, error) {
	args := m.Called(ctx, message)
	return args.Get(0).(intent.Intent), args.Error(1)
}

type MockAnswerer struct {
	mock.Mock
}

func (m *MockAnswerer) Answer(ctx context.Context, question string) (string, error) {
	args := m.Called(ctx, question)
	return args.String(0), args.Error(1)
}

type MockTicketOpener struct {
	mock.Mock
}

func (m *MockTicketOpener) Open(ctx context.Context, description string) (int64, error) {
	args := m.Called(ctx, description)
	return args.Get(0).(int64), args.Error(1)
}

func newService() (*Service, *MockClassifier, *MockAnswerer, *MockTicketOpener) {
	classifier := new(MockClassifier)
	engine := new(MockAnswerer)
	tickets := new(MockTicketOpener)
	return NewService(classifier, engine, tickets), classifier, engine, tickets
}

func TestService_Ask_TicketMarkerSkipsClassification(t *testing.T) {
	svc, classifier, engine, tickets := newService()
	tickets.On("Open", mock.Anything, " el proyector no enciende").Return(int64(42), nil)

	reply := svc.Ask(context.Background(), "ACTION_CREATE_TICKET: el proyector no enciende")

	assert.Equal(t, "De acuerdo. He creado el ticket de soporte #42 con tu problema: 'el proyector no enciende'. El equipo técnico se pondrá en contacto contigo.", reply.Answer)
	assert.False(t, reply.FollowUpRequired)
	classifier.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
	engine.AssertNotCalled(t, "Answer", mock.Anything, mock.Anything)
	tickets.AssertExpectations(t)
}

func TestService_Ask_TicketMarkerWithEmptyDescription(t *testing.T) {
	svc, _, _, tickets := newService()
	tickets.On("Open", mock.Anything, "").Return(int64(5), nil)

	reply := svc.Ask(context.Background(), "ACTION_CREATE_TICKET:")

	assert.Contains(t, reply.Answer, "#5")
	assert.Contains(t, reply.Answer, "'"+ticket.PlaceholderDescription+"'")
	tickets.AssertExpectations(t)
}

func TestService_Ask_TicketConfirmationEchoesStoredDescription(t *testing.T) {
	tests := []struct {
		name     string
		question string
		opened   string
		echoed   string
	}{
		{
			name:     "regular description",
			question: "ACTION_CREATE_TICKET: el proyector no enciende",
			opened:   " el proyector no enciende",
			echoed:   "'el proyector no enciende'",
		},
		{
			name:     "whitespace only becomes placeholder",
			question: "ACTION_CREATE_TICKET:   ",
			opened:   "   ",
			echoed:   "'" + ticket.PlaceholderDescription + "'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, tickets := newService()
			tickets.On("Open", mock.Anything, tt.opened).Return(int64(9), nil)

			reply := svc.Ask(context.Background(), tt.question)

			assert.Contains(t, reply.Answer, tt.echoed)
			assert.False(t, reply.FollowUpRequired)
		})
	}
}

func TestService_Ask_GeneralQuestionAnswersWithoutFollowUp(t *testing.T) {
	svc, classifier, engine, _ := newService()
	classifier.On("Classify", mock.Anything, "¿cuál es el horario de soporte?").Return(intent.GeneralQuestion, nil)
	engine.On("Answer", mock.Anything, "¿cuál es el horario de soporte?").Return("De 9 a 18.", nil)

	reply := svc.Ask(context.Background(), "¿cuál es el horario de soporte?")

	assert.Equal(t, "De 9 a 18.", reply.Answer)
	assert.False(t, reply.FollowUpRequired)
}

func TestService_Ask_ProblemReportAppendsFollowUp(t *testing.T) {
	svc, classifier, engine, _ := newService()
	classifier.On("Classify", mock.Anything, mock.Anything).Return(intent.ProblemReport, nil)
	engine.On("Answer", mock.Anything, mock.Anything).Return("Reinicia el router.", nil)

	reply := svc.Ask(context.Background(), "no tengo internet")

	assert.Equal(t, "Reinicia el router.\n\n¿Esta información soluciona tu problema?", reply.Answer)
	assert.True(t, reply.FollowUpRequired)
}

func TestService_Ask_FarewellReturnsCannedReply(t *testing.T) {
	svc, classifier, engine, _ := newService()
	classifier.On("Classify", mock.Anything, mock.Anything).Return(intent.Farewell, nil)

	reply := svc.Ask(context.Background(), "gracias")

	assert.Equal(t, farewellReply, reply.Answer)
	assert.False(t, reply.FollowUpRequired)
	engine.AssertNotCalled(t, "Answer", mock.Anything, mock.Anything)
}

func TestService_Ask_UnknownIntentTreatedAsGeneralQuestion(t *testing.T) {
	svc, classifier, engine, _ := newService()
	classifier.On("Classify", mock.Anything, mock.Anything).Return(intent.Intent("consulta_rara"), nil)
	engine.On("Answer", mock.Anything, mock.Anything).Return("respuesta", nil)

	reply := svc.Ask(context.Background(), "algo inesperado")

	assert.Equal(t, "respuesta", reply.Answer)
	assert.False(t, reply.FollowUpRequired)
}

func TestService_Ask_ClassificationFailureReturnsFallback(t *testing.T) {
	svc, classifier, engine, _ := newService()
	classifier.On("Classify", mock.Anything, mock.Anything).Return(intent.Intent(""), errors.New("llm unreachable"))

	reply := svc.Ask(context.Background(), "¿hola?")

	assert.Equal(t, fallbackReply, reply.Answer)
	assert.False(t, reply.FollowUpRequired)
	engine.AssertNotCalled(t, "Answer", mock.Anything, mock.Anything)
}

func TestService_Ask_AnswerFailureReturnsFallback(t *testing.T) {
	svc, classifier, engine, _ := newService()
	classifier.On("Classify", mock.Anything, mock.Anything).Return(intent.GeneralQuestion, nil)
	engine.On("Answer", mock.Anything, mock.Anything).Return("", errors.New("timeout"))

	reply := svc.Ask(context.Background(), "¿algo?")

	assert.Equal(t, fallbackReply, reply.Answer)
}

func TestService_Ask_TicketFailureReturnsFallback(t *testing.T) {
	svc, _, _, tickets := newService()
	tickets.On("Open", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	reply := svc.Ask(context.Background(), "ACTION_CREATE_TICKET: algo")

	assert.Equal(t, fallbackReply, reply.Answer)
}
