// Package workflow runs the fixed four-stage pipeline that turns a question
// and document pair into a final answer.
package workflow

import (
	"context"
	"fmt"
	"runtime/debug"

	"meddoc-rag/internal/chunker"
	"meddoc-rag/internal/database"
	"meddoc-rag/internal/llm"
	"meddoc-rag/internal/models"
	"meddoc-rag/internal/prompt"
	"meddoc-rag/internal/retriever"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GuidanceMessage is returned when either the question or the document text
// is missing; the pipeline does not run in that case.
const GuidanceMessage = "Please provide both a question and document content for analysis."

// Agent holds the collaborators the pipeline stages depend on. One Agent is
// constructed per process and shared across requests; each request gets its
// own State.
type Agent struct {
	chunker   *chunker.Chunker
	index     database.VectorIndex
	retriever *retriever.Retriever
	generator llm.Generator
	assembler *prompt.Assembler
	log       *zap.Logger
}

// NewAgent wires the pipeline's collaborators together.
func NewAgent(c *chunker.Chunker, index database.VectorIndex, r *retriever.Retriever, g llm.Generator, a *prompt.Assembler, log *zap.Logger) *Agent {
	if log == nil {
		log = zap.NewNop()
	}
	return &Agent{
		chunker:   c,
		index:     index,
		retriever: r,
		generator: g,
		assembler: a,
		log:       log,
	}
}

// stage is one named step of the pipeline. Stages mutate the shared State;
// an error aborts the run and surfaces at the Answer boundary.
type stage struct {
	name string
	run  func(ctx context.Context, s *State) error
}

// pipeline is the fixed, strictly sequential edge list. No branching, no
// cycles, no retries.
func (a *Agent) pipeline() []stage {
	return []stage{
		{"pdf_processor", a.processDocument},
		{"combined_analyzer", a.analyzeCombined},
		{"prompt_engineer", a.engineerPrompt},
		{"response_generator", a.generateResponse},
	}
}

func (a *Agent) run(ctx context.Context, s *State) error {
	for _, st := range a.pipeline() {
		a.log.Debug("stage start",
			zap.String("stage", st.name),
			zap.String("query_id", s.QueryID))
		if err := st.run(ctx, s); err != nil {
			return fmt.Errorf("%s: %w", st.name, err)
		}
	}
	return nil
}

// Answer is the top-level entry point: it validates inputs, builds a fresh
// State, runs the pipeline and returns the final analysis text. Failures of
// any kind come back as plain text, never as a raised fault: external-service
// errors become a diagnostic message and panics are trapped with their stack
// trace.
func (a *Agent) Answer(ctx context.Context, question, documentText, filename, sessionID string) (answer string) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("panic during query processing", zap.Any("panic", r))
			answer = fmt.Sprintf("Error processing request: %v\n\nStack trace:\n%s", r, debug.Stack())
		}
	}()

	if question == "" || documentText == "" {
		return GuidanceMessage
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if filename == "" {
		filename = "document.pdf"
	}

	state := &State{
		Question:    question,
		PDFContent:  documentText,
		PDFMetadata: &models.DocumentMetadata{Filename: filename},
		SessionID:   sessionID,
		QueryID:     uuid.NewString(),
	}

	a.log.Info("processing query",
		zap.String("session_id", state.SessionID),
		zap.String("query_id", state.QueryID),
		zap.String("filename", filename))

	if err := a.run(ctx, state); err != nil {
		a.log.Error("pipeline failed", zap.String("query_id", state.QueryID), zap.Error(err))
		return fmt.Sprintf("Error processing request: %v", err)
	}

	if state.Analysis == "" {
		return "No analysis generated"
	}
	return state.Analysis
}
