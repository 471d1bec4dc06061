package ticket

import (
	"context"
	"log/slog"
	"strings"
)

// PlaceholderDescription replaces an empty description so a ticket always
// carries something actionable for the support team.
const PlaceholderDescription = "Problema no especificado por el usuario."

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Open persists a new ticket and returns its id. Blank descriptions are
// normalized to the placeholder before writing.
func (s *Service) Open(ctx context.Context, description string) (int64, error) {
	normalized := Normalize(description)
	id, err := s.repo.Save(ctx, normalized)
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "support ticket created", "ticket_id", id)
	return id, nil
}

func (s *Service) List(ctx context.Context) ([]Ticket, error) {
	return s.repo.List(ctx)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Normalize trims surrounding whitespace and substitutes the placeholder
// when nothing remains.
func Normalize(description string) string {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return PlaceholderDescription
	}
	return trimmed
}
