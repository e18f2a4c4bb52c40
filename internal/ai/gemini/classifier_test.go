package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

func TestClassifierClassify(t *testing.T) {
	stub := &stubGenerator{response: `{"relevant": true, "reason": "infra role", "confidence": 85}`}
	classifier := NewClassifier(stub, zap.NewNop(), 0, 0)

	result, err := classifier.Classify(context.Background(), "Platform Engineer", "kubernetes clusters", "Acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Relevant {
		t.Fatalf("expected relevant to be true")
	}
	if result.Confidence != 85 {
		t.Fatalf("expected confidence 85, got %v", result.Confidence)
	}
	if result.Reason != "infra role" {
		t.Fatalf("unexpected reason: %q", result.Reason)
	}

	if !strings.Contains(stub.lastPrompt, "Platform Engineer") {
		t.Fatalf("expected title in prompt")
	}
	if !strings.Contains(stub.lastPrompt, "Acme") {
		t.Fatalf("expected company in prompt")
	}
	if strings.Contains(stub.lastPrompt, "{{") {
		t.Fatalf("expected all placeholders to be substituted, got: %s", stub.lastPrompt)
	}
}

func TestClassifyStripsCodeFences(t *testing.T) {
	stub := &stubGenerator{response: "```json\n{\"relevant\": false, \"reason\": \"frontend\", \"confidence\": 90}\n```"}
	classifier := NewClassifier(stub, zap.NewNop(), 0, 0)

	result, err := classifier.Classify(context.Background(), "React Developer", "react apps", "Acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Relevant {
		t.Fatalf("expected relevant to be false")
	}
}

func TestClassifyCoercesStringFields(t *testing.T) {
	// Models sometimes quote booleans and numbers.
	stub := &stubGenerator{response: `{"relevant": "true", "reason": "ok", "confidence": "75"}`}
	classifier := NewClassifier(stub, zap.NewNop(), 0, 0)

	result, err := classifier.Classify(context.Background(), "SRE", "oncall", "Acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Relevant || result.Confidence != 75 {
		t.Fatalf("expected coerced values, got %+v", result)
	}
}

func TestClassifyClampsConfidence(t *testing.T) {
	stub := &stubGenerator{response: `{"relevant": true, "reason": "ok", "confidence": 150}`}
	classifier := NewClassifier(stub, zap.NewNop(), 0, 0)

	result, err := classifier.Classify(context.Background(), "SRE", "oncall", "Acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Confidence != 100 {
		t.Fatalf("expected confidence clamped to 100, got %v", result.Confidence)
	}
}

func TestClassifyPropagatesGeneratorError(t *testing.T) {
	wantErr := errors.New("rate limited")
	stub := &stubGenerator{err: wantErr}
	classifier := NewClassifier(stub, zap.NewNop(), 0, 0)

	if _, err := classifier.Classify(context.Background(), "SRE", "oncall", "Acme"); !errors.Is(err, wantErr) {
		t.Fatalf("expected generator error to propagate, got %v", err)
	}
}

func TestClassifyRejectsUnparseableResponse(t *testing.T) {
	stub := &stubGenerator{response: "I cannot answer that."}
	classifier := NewClassifier(stub, zap.NewNop(), 0, 0)

	if _, err := classifier.Classify(context.Background(), "SRE", "oncall", "Acme"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestClassifyTruncatesLongDescriptions(t *testing.T) {
	stub := &stubGenerator{response: `{"relevant": true, "reason": "ok", "confidence": 60}`}
	classifier := NewClassifier(stub, zap.NewNop(), 0, 0)

	long := strings.Repeat("x", 5000)
	if _, err := classifier.Classify(context.Background(), "SRE", long, "Acme"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(stub.lastPrompt, strings.Repeat("x", maxDescriptionRunes+1)) {
		t.Fatalf("expected description to be truncated to %d runes", maxDescriptionRunes)
	}
	if !strings.Contains(stub.lastPrompt, strings.Repeat("x", maxDescriptionRunes)) {
		t.Fatalf("expected the first %d runes of the description to survive", maxDescriptionRunes)
	}
}
