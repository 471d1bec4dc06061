package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"
)

// Intent is the classified purpose of a question. It is an open set: the
// model may some day emit values not listed here, and the router treats
// anything unknown as a general question.
type Intent string

const (
	GeneralQuestion Intent = "pregunta_general"
	ProblemReport   Intent = "reporte_de_problema"
	Farewell        Intent = "despedida"
)

// ErrClassification means the completion collaborator itself failed. A
// malformed-but-present reply never raises; it is absorbed by ParseReply.
var ErrClassification = errors.New("intent classification failed")

// shortReplyThreshold is a pinned policy value: completions without JSON
// shorter than this are almost always pleasantries ("gracias", "ok") the
// model failed to wrap, so they classify as a farewell.
const shortReplyThreshold = 20

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

const promptTemplate = `Clasifica la pregunta del usuario en 'pregunta_general', 'reporte_de_problema' o 'despedida'. Responde solo con JSON con la forma {"intent": "..."}.
'pregunta_general': El usuario pide información (¿qué es?, ¿cuántos?, ¿cómo?).
'reporte_de_problema': El usuario describe un problema, algo está roto o no funciona.
'despedida': El usuario expresa gratitud o se despide (gracias, adiós, perfecto, vale).
Pregunta: %s
`

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Classifier derives the intent of a question with one LLM round trip plus
// a resilient parse of whatever text comes back.
type Classifier struct {
	llm     Completer
	timeout time.Duration
}

func NewClassifier(llm Completer, timeout time.Duration) *Classifier {
	return &Classifier{llm: llm, timeout: timeout}
}

func (c *Classifier) Classify(ctx context.Context, question string) (Intent, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	raw, err := c.llm.Complete(ctx, fmt.Sprintf(promptTemplate, question))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrClassification, err)
	}
	return ParseReply(raw), nil
}

// ParseReply extracts an intent from raw completion text. The model
// frequently wraps its JSON in explanatory prose, so the first balanced
// {...} span is tried first. Without usable JSON, a reply shorter than
// shortReplyThreshold runes counts as a farewell and anything longer as a
// general question. This is a deliberately approximate policy, not a
// precise classifier.
func ParseReply(raw string) Intent {
	if candidate := jsonObjectPattern.FindString(raw); candidate != "" {
		var decoded struct {
			Intent string `json:"intent"`
		}
		if err := json.Unmarshal([]byte(candidate), &decoded); err == nil && decoded.Intent != "" {
			return Intent(decoded.Intent)
		}
	}

	if utf8.RuneCountInString(raw) < shortReplyThreshold {
		return Farewell
	}
	return GeneralQuestion
}
