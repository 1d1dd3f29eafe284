package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"FinChat/internal/domain/models"
	drepo "FinChat/internal/domain/repository"
	xlogger "FinChat/pkg/logger"
)

const synthesisPrompt = `You are a helpful assistant who answers questions based on the information provided.

**Task**: Create a response using the available Details while adhering to the following Rules:

**Rules**:
- Always ensure a response to the input question. If the query results lack relevant information, reply with a summary of the provided Data instead.
- Avoid prefaces such as "based on information", "according to the provided data", etc.

**Details**:
- Question: {question}
- Data: {data}
- Today: {today}`

const fallbackPrompt = `You are a finance expert. Answer questions or give advice about stocks, investments, markets, financial and quantitative topics. Today is {today}.

Question: {question}`

// Synthesizer turns a dispatch result into a user-facing answer. Grounded
// answers embed the aggregated tool records; the fallback path answers from
// general knowledge when a turn produced no data.
type Synthesizer struct {
	oracle drepo.Oracle
	model  string
	logger *xlogger.Logger
	now    func() time.Time
}

func NewSynthesizer(oracle drepo.Oracle, model string, logger *xlogger.Logger) *Synthesizer {
	return &Synthesizer{
		oracle: oracle,
		model:  model,
		logger: logger,
		now:    time.Now,
	}
}

// Answer produces a data-grounded answer from the turn's records.
func (s *Synthesizer) Answer(ctx context.Context, question string, records []models.Record) (string, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("marshal records: %w", err)
	}

	prompt := render(synthesisPrompt,
		"{question}", question,
		"{data}", string(data),
		"{today}", s.today(),
	)
	return s.oracle.Complete(ctx, "synthesize", s.model, prompt)
}

// AnswerDefault produces a generic conversational answer for turns with no
// structured data.
func (s *Synthesizer) AnswerDefault(ctx context.Context, question string) (string, error) {
	prompt := render(fallbackPrompt,
		"{question}", question,
		"{today}", s.today(),
	)
	return s.oracle.Complete(ctx, "fallback", s.model, prompt)
}

func (s *Synthesizer) today() string {
	return s.now().UTC().Format("2006-01-02")
}

// render substitutes placeholders in one pass over the template, so
// placeholder-shaped text inside the substituted values stays literal.
func render(template string, pairs ...string) string {
	return strings.NewReplacer(pairs...).Replace(template)
}
