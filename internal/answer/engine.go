package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"knowpilot/backend/internal/vector"
)

// ErrGeneration means a collaborator (embedding or completion service) was
// unreachable or failed. Empty retrieval is not an error: the model is asked
// to answer with whatever context there is, even none.
var ErrGeneration = errors.New("answer generation failed")

const promptTemplate = "Usa el siguiente contexto para responder en español de forma concisa y útil a la pregunta.\nContexto: %s\nPregunta: %s\nRespuesta:"

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Searcher interface {
	Search(ctx context.Context, vec []float32, k int) ([]vector.SearchResult, error)
}

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Engine answers a question grounded in the corpus: embed the question,
// retrieve the top-k nearest chunks, and ask the model to synthesize a
// concise reply from that context.
type Engine struct {
	embedder Embedder
	index    Searcher
	llm      Completer
	k        int
	timeout  time.Duration
	queryLog *QueryLogger
}

func NewEngine(embedder Embedder, index Searcher, llm Completer, k int, timeout time.Duration, queryLog *QueryLogger) *Engine {
	return &Engine{
		embedder: embedder,
		index:    index,
		llm:      llm,
		k:        k,
		timeout:  timeout,
		queryLog: queryLog,
	}
}

func (e *Engine) Answer(ctx context.Context, question string) (string, error) {
	start := time.Now()

	embedCtx, cancel := e.callContext(ctx)
	vec, err := e.embedder.Embed(embedCtx, question)
	cancel()
	if err != nil {
		return "", fmt.Errorf("%w: embedding question: %v", ErrGeneration, err)
	}

	chunks, err := e.index.Search(ctx, vec, e.k)
	if err != nil {
		return "", fmt.Errorf("%w: searching index: %v", ErrGeneration, err)
	}

	contents := make([]string, 0, len(chunks))
	for _, c := range chunks {
		contents = append(contents, c.Content)
	}
	prompt := fmt.Sprintf(promptTemplate, strings.Join(contents, "\n\n"), question)

	completeCtx, cancel := e.callContext(ctx)
	reply, err := e.llm.Complete(completeCtx, prompt)
	cancel()
	if err != nil {
		return "", fmt.Errorf("%w: completing answer: %v", ErrGeneration, err)
	}

	if e.queryLog != nil {
		e.queryLog.Log(ctx, QueryLogEntry{
			Question:  question,
			NumChunks: len(chunks),
			Duration:  time.Since(start),
		})
	}
	return reply, nil
}

// callContext bounds a single collaborator round trip.
func (e *Engine) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout > 0 {
		return context.WithTimeout(ctx, e.timeout)
	}
	return ctx, func() {}
}
