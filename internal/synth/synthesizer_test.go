package synth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/slivora/slivora-backend/internal/clients/openai"
	"github.com/slivora/slivora-backend/internal/pkg/logger"
	"github.com/slivora/slivora-backend/internal/plan"
)

type llmCall struct {
	system      string
	user        string
	temperature float64
}

type fakeLLM struct {
	responses []string
	errs      []error
	calls     []llmCall
}

func (f *fakeLLM) Generate(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	i := len(f.calls)
	f.calls = append(f.calls, llmCall{system: system, user: user, temperature: temperature})
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i >= len(f.responses) {
		return "", errors.New("fake: no scripted response")
	}
	return f.responses[i], nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

const validPlanJSON = `{
  "projectTitle": "Solar Energy",
  "language": "en",
  "slides": [
    {"id": "slide-1", "title": "Solar Energy", "layout": "title"},
    {"id": "slide-2", "title": "Why Solar", "bullets": ["Clean", "Cheap"], "layout": "title-bullets"},
    {"id": "slide-3", "title": "Outlook", "layout": "section"}
  ]
}`

const refinedPlanJSON = `{
  "projectTitle": "Solar Energy",
  "language": "en",
  "slides": [
    {"id": "slide-1", "title": "Solar Energy", "layout": "title"},
    {"id": "slide-2", "title": "Why Solar", "bullets": ["Clean", "Cheap"], "layout": "title-bullets"},
    {"id": "slide-3", "title": "References", "bullets": ["iea.org"], "layout": "title-bullets"}
  ],
  "references": [{"url": "https://www.iea.org/reports/solar", "label": "IEA Solar Report"}]
}`

var testBrief = Brief{Title: "Solar Energy", Language: "en", Outline: "- why solar\n- outlook"}

func TestSynthesizeHappyPath(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		"Here you go:\n" + validPlanJSON,
		refinedPlanJSON,
	}}
	s := NewSynthesizer(testLogger(t), llm)

	p, err := s.Synthesize(context.Background(), testBrief)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(llm.calls) != 2 {
		t.Fatalf("expected generate + refine, got %d calls", len(llm.calls))
	}
	if llm.calls[0].temperature != 0.7 || llm.calls[1].temperature != 0.3 {
		t.Fatalf("unexpected temperatures: %+v", llm.calls)
	}
	if len(p.References) != 1 || p.References[0].URL != "https://www.iea.org/reports/solar" {
		t.Fatalf("refined plan not adopted: %+v", p)
	}
}

func TestSynthesizeNormalizesMissingIDs(t *testing.T) {
	noIDs := strings.ReplaceAll(validPlanJSON, `"id": "slide-1", `, "")
	llm := &fakeLLM{responses: []string{noIDs, "not json at all"}}
	s := NewSynthesizer(testLogger(t), llm)

	p, err := s.Synthesize(context.Background(), testBrief)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Slides[0].ID != "slide-1" {
		t.Fatalf("missing id not normalized: %+v", p.Slides[0])
	}
}

func TestSynthesizeRepairsInvalidPlanOnce(t *testing.T) {
	invalid := strings.ReplaceAll(validPlanJSON, `"bullets": ["Clean", "Cheap"], `, "")
	llm := &fakeLLM{responses: []string{invalid, validPlanJSON, refinedPlanJSON}}
	s := NewSynthesizer(testLogger(t), llm)

	p, err := s.Synthesize(context.Background(), testBrief)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(llm.calls) != 3 {
		t.Fatalf("expected generate + repair + refine, got %d", len(llm.calls))
	}
	repair := llm.calls[1]
	if repair.temperature != 0.3 {
		t.Fatalf("repair temperature = %v", repair.temperature)
	}
	if !strings.Contains(repair.user, "Invalid JSON") || !strings.Contains(repair.user, "slides[1].bullets") {
		t.Fatalf("repair prompt missing feedback: %q", repair.user)
	}
	if p.Slides[1].Bullets[0] != "Clean" {
		t.Fatalf("repaired plan not used: %+v", p.Slides[1])
	}
}

func TestSynthesizeFailsAfterSecondInvalidPlan(t *testing.T) {
	invalid := strings.ReplaceAll(validPlanJSON, `"bullets": ["Clean", "Cheap"], `, "")
	llm := &fakeLLM{responses: []string{invalid, invalid}}
	s := NewSynthesizer(testLogger(t), llm)

	_, err := s.Synthesize(context.Background(), testBrief)
	var sf *SynthesisFailedError
	if !errors.As(err, &sf) {
		t.Fatalf("expected SynthesisFailedError, got %v", err)
	}
	if len(llm.calls) != 2 {
		t.Fatalf("expected exactly one repair attempt, got %d calls", len(llm.calls))
	}
}

func TestSynthesizeExtractionFailure(t *testing.T) {
	llm := &fakeLLM{responses: []string{"I cannot produce slides for this."}}
	s := NewSynthesizer(testLogger(t), llm)

	_, err := s.Synthesize(context.Background(), testBrief)
	var ee *ExtractionError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
}

func TestSynthesizeClassifiesUpstreamErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind string
	}{
		{"rate limited", &openai.HTTPError{StatusCode: 429, Body: "rate limit"}, UpstreamRateLimited},
		{"quota", &openai.HTTPError{StatusCode: 429, Body: `{"code":"insufficient_quota"}`}, UpstreamQuota},
		{"timeout", context.DeadlineExceeded, UpstreamTimeout},
		{"server error", &openai.HTTPError{StatusCode: 503, Body: "down"}, UpstreamUnavailable},
	}
	for _, tc := range cases {
		llm := &fakeLLM{errs: []error{tc.err}}
		s := NewSynthesizer(testLogger(t), llm)
		_, err := s.Synthesize(context.Background(), testBrief)
		var ue *UpstreamError
		if !errors.As(err, &ue) {
			t.Fatalf("%s: expected UpstreamError, got %v", tc.name, err)
		}
		if ue.Kind != tc.kind {
			t.Fatalf("%s: expected kind %q, got %q", tc.name, tc.kind, ue.Kind)
		}
		if ue.UserMessage() == "" {
			t.Fatalf("%s: empty user message", tc.name)
		}
	}
}

func TestRefineFailureKeepsAcceptedPlan(t *testing.T) {
	cases := []struct {
		name   string
		refine string
	}{
		{"no json", "sorry, I had trouble"},
		{"invalid plan", `{"projectTitle": "", "language": "en", "slides": []}`},
		{"duplicate ids", strings.ReplaceAll(refinedPlanJSON, `"id": "slide-3"`, `"id": "slide-1"`)},
	}
	for _, tc := range cases {
		llm := &fakeLLM{responses: []string{validPlanJSON, tc.refine}}
		s := NewSynthesizer(testLogger(t), llm)
		p, err := s.Synthesize(context.Background(), testBrief)
		if err != nil {
			t.Fatalf("%s: refine failure must not surface: %v", tc.name, err)
		}
		if len(p.References) != 0 || p.Slides[2].Title != "Outlook" {
			t.Fatalf("%s: accepted plan not kept: %+v", tc.name, p)
		}
	}
}

func TestRefineUpstreamErrorKeepsAcceptedPlan(t *testing.T) {
	llm := &fakeLLM{
		responses: []string{validPlanJSON, ""},
		errs:      []error{nil, &openai.HTTPError{StatusCode: 500, Body: "boom"}},
	}
	s := NewSynthesizer(testLogger(t), llm)
	p, err := s.Synthesize(context.Background(), testBrief)
	if err != nil {
		t.Fatalf("refine upstream failure must not surface: %v", err)
	}
	if p.ProjectTitle != "Solar Energy" {
		t.Fatalf("unexpected plan: %+v", p)
	}
}

func TestValidationErrorMessageListsFields(t *testing.T) {
	ve := &ValidationError{Fields: []plan.FieldError{{Path: "slides[0].title", Message: "must not be empty"}}}
	if !strings.Contains(ve.Error(), "slides[0].title: must not be empty") {
		t.Fatalf("unexpected message %q", ve.Error())
	}
}
