package ask

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"knowpilot/backend/features/ticket"
	"knowpilot/backend/internal/intent"
)

// ActionCreateTicket marks a question as an explicit ticket request. Text
// after the marker is the ticket description.
const ActionCreateTicket = "ACTION_CREATE_TICKET:"

const (
	farewellReply     = "De nada, ¡un placer ayudar! Si tienes cualquier otra consulta, aquí estaré. 😊"
	fallbackReply     = "Lo siento, ha ocurrido un error."
	followUpQuestion  = "\n\n¿Esta información soluciona tu problema?"
	ticketConfirmTmpl = "De acuerdo. He creado el ticket de soporte #%d con tu problema: '%s'. El equipo técnico se pondrá en contacto contigo."
)

type Classifier interface {
	Classify(ctx context.Context, message string) (intent.Intent, error)
}

type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

type TicketOpener interface {
	Open(ctx context.Context, description string) (int64, error)
}

type Reply struct {
	Answer           string `json:"answer"`
	FollowUpRequired bool   `json:"follow_up_required"`
}

// Service routes an incoming question to the right pipeline: explicit
// ticket requests go straight to the ticket store, everything else is
// classified and dispatched by intent.
type Service struct {
	classifier Classifier
	engine     Answerer
	tickets    TicketOpener
}

func NewService(classifier Classifier, engine Answerer, tickets TicketOpener) *Service {
	return &Service{classifier: classifier, engine: engine, tickets: tickets}
}

func (s *Service) Ask(ctx context.Context, question string) Reply {
	if desc, ok := strings.CutPrefix(question, ActionCreateTicket); ok {
		return s.openTicket(ctx, desc)
	}

	detected, err := s.classifier.Classify(ctx, question)
	if err != nil {
		slog.ErrorContext(ctx, "intent classification failed", "error", err, "question", question)
		return Reply{Answer: fallbackReply}
	}

	switch detected {
	case intent.ProblemReport:
		answer, err := s.engine.Answer(ctx, question)
		if err != nil {
			slog.ErrorContext(ctx, "answer generation failed", "error", err, "question", question)
			return Reply{Answer: fallbackReply}
		}
		return Reply{Answer: answer + followUpQuestion, FollowUpRequired: true}
	case intent.Farewell:
		return Reply{Answer: farewellReply}
	default:
		// pregunta_general and any intent the model invents.
		answer, err := s.engine.Answer(ctx, question)
		if err != nil {
			slog.ErrorContext(ctx, "answer generation failed", "error", err, "question", question)
			return Reply{Answer: fallbackReply}
		}
		return Reply{Answer: answer}
	}
}

func (s *Service) openTicket(ctx context.Context, description string) Reply {
	id, err := s.tickets.Open(ctx, description)
	if err != nil {
		slog.ErrorContext(ctx, "ticket creation failed", "error", err)
		return Reply{Answer: fallbackReply}
	}
	// The confirmation echoes the same description the store persisted,
	// placeholder included when the user gave none.
	return Reply{Answer: fmt.Sprintf(ticketConfirmTmpl, id, ticket.Normalize(description))}
}
