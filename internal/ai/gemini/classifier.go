package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/jobsieve/jobsieve/internal/ai"
	"github.com/jobsieve/jobsieve/internal/utils"
)

//go:embed classifier_prompt.md
var classifierPrompt string

const (
	// maxDescriptionRunes bounds the description sent to the relevance
	// oracle, for latency and cost control.
	maxDescriptionRunes = 1500

	defaultTimeout      = 30 * time.Second
	defaultMaxLogLength = 200
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Classifier is the Gemini-backed relevance oracle. Errors propagate to the
// caller; the conservative keep-on-failure default lives in the escalation
// step, not here.
type Classifier struct {
	generator contentGenerator
	logger    *zap.Logger
	timeout   time.Duration
	maxLogLen int
}

func NewClassifier(generator contentGenerator, logger *zap.Logger, timeout time.Duration, maxLogLength int) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Classifier{
		generator: generator,
		logger:    logger,
		timeout:   timeout,
		maxLogLen: maxLogLength,
	}
}

// Classify asks the oracle whether the posting is relevant for the
// candidate profile. The description is truncated to the first 1500 runes.
func (c *Classifier) Classify(ctx context.Context, title, description, company string) (*ai.Relevance, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := buildClassifierPrompt(title, utils.TruncateRunes(description, maxDescriptionRunes), company)

	c.logger.Debug("relevance classification request",
		zap.String("job_title", title),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, c.maxLogLen)),
	)

	raw, err := c.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("relevance classification response",
		zap.String("job_title", title),
		zap.String("response_preview", utils.TruncateForLog(raw, c.maxLogLen)),
	)

	return parseRelevance(raw)
}

func buildClassifierPrompt(title, description, company string) string {
	prompt := strings.ReplaceAll(classifierPrompt, "{{TITLE}}", title)
	prompt = strings.ReplaceAll(prompt, "{{COMPANY}}", company)
	prompt = strings.ReplaceAll(prompt, "{{DESCRIPTION}}", description)
	return prompt
}

func parseRelevance(raw string) (*ai.Relevance, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse relevance response: %w", err)
	}

	return &ai.Relevance{
		Relevant:   coerceBool(data["relevant"]),
		Reason:     coerceString(data["reason"]),
		Confidence: clampScore(coerceFloat(data["confidence"])),
	}, nil
}
