// Package synth turns a presentation brief into a validated slide plan.
// The pipeline is invoke, extract, normalize, validate with a single repair
// retry, then a best-effort fact-check refinement that can never fail the
// request.
package synth

import (
	"context"
	"fmt"

	"github.com/slivora/slivora-backend/internal/clients/openai"
	"github.com/slivora/slivora-backend/internal/pkg/logger"
	"github.com/slivora/slivora-backend/internal/plan"
)

const systemPrompt = `You are SlideSmith, an expert presentation architect. Given a project title, language, and outline, return a normalized JSON SlidePlan.

Key requirements:
- Each slide MUST have a unique "id" field (e.g., "slide-1", "slide-2", etc.)
- Titles must be <= 60 characters
- Bullets must be <= 120 characters each
- Maximum 6 bullets per slide
- Return pure JSON only - no code fences or markdown
- Include 8-12 slides unless outline forces fewer
- Add section divider slides if useful for structure
- Use appropriate layouts: "title", "title-bullets", "section", "quote", "image"
- Ensure bullets are provided for "title-bullets" layout
- The final slide must be titled "References" and list the sources used
- Also include a top-level "references" array of {url, label} objects
- Make content engaging and professional

Return ONLY valid JSON of type SlidePlan with keys: projectTitle, language, slides[], references[]. Each slide must have: id, title, bullets (optional), speakerNotes (optional), layout (optional).`

const refineSystemPrompt = `You are SlideSmith, an expert fact checker for presentations. You receive a JSON SlidePlan and return a corrected JSON SlidePlan with the same structure.

Key requirements:
- Correct any claims that cannot be verified; prefer removing a claim over inventing support for it
- Ensure the plan ends with a slide titled "References" citing 5-10 credible sources
- Ensure the top-level "references" array lists the same sources with canonical URLs and short labels
- Keep slide ids, field limits, and layouts exactly as constrained before
- Return pure JSON only - no code fences or markdown`

const (
	generateTemperature = 0.7
	repairTemperature   = 0.3
	refineTemperature   = 0.3
	maxOutputTokens     = 4000
)

// Brief is the user's request: what to present, in which language, covering
// which points.
type Brief struct {
	Title    string
	Language string
	Outline  string
}

type Synthesizer struct {
	log *logger.Logger
	llm openai.Client
}

func NewSynthesizer(log *logger.Logger, llm openai.Client) *Synthesizer {
	return &Synthesizer{log: log.With("service", "Synthesizer"), llm: llm}
}

func buildUserPrompt(b Brief) string {
	return fmt.Sprintf(`Project Title: %q
Language: %s
Presentation Outline (bullets):
%s

IMPORTANT: Each slide must have a unique "id" field (e.g., "slide-1", "slide-2", etc.). This is required for the presentation system to work properly.`,
		b.Title, b.Language, b.Outline)
}

func buildRepairPrompt(original, invalidJSON, errDetail string) string {
	return fmt.Sprintf(`The previous response had invalid JSON. Please fix it.

Original request:
%s

Invalid JSON:
%s

Error: %s

Please return ONLY the corrected JSON object.`, original, invalidJSON, errDetail)
}

func buildRefinePrompt(planJSON string) string {
	return fmt.Sprintf(`Fact-check and refine the following SlidePlan JSON. Correct unverified claims, ensure a closing "References" slide with 5-10 credible sources, and fill the top-level "references" array with canonical URLs.

%s

Please return ONLY the refined JSON object.`, planJSON)
}

// Synthesize runs the full pipeline for a brief. The returned plan always
// passes validation. Errors are one of UpstreamError, ExtractionError, or
// SynthesisFailedError.
func (s *Synthesizer) Synthesize(ctx context.Context, brief Brief) (*plan.Plan, error) {
	userPrompt := buildUserPrompt(brief)

	raw, err := s.llm.Generate(ctx, systemPrompt, userPrompt, generateTemperature, maxOutputTokens)
	if err != nil {
		return nil, classifyUpstream(err)
	}

	jsonText, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	p, perr := s.decodeAndValidate(jsonText)
	if perr != nil {
		s.log.Warn("Plan failed validation, attempting repair", "error", perr.Error())
		p, err = s.repair(ctx, userPrompt, jsonText, perr)
		if err != nil {
			return nil, err
		}
	}

	return s.refine(ctx, p), nil
}

// decodeAndValidate parses the extracted JSON, fills deterministic defaults,
// and checks every schema rule.
func (s *Synthesizer) decodeAndValidate(jsonText string) (*plan.Plan, error) {
	p, err := plan.Decode([]byte(jsonText))
	if err != nil {
		return nil, err
	}
	plan.Normalize(p)
	if fieldErrs := plan.Validate(p); len(fieldErrs) > 0 {
		return nil, &ValidationError{Fields: fieldErrs}
	}
	return p, nil
}

// repair makes the single low-temperature correction attempt. A second
// failure of any stage is terminal.
func (s *Synthesizer) repair(ctx context.Context, originalPrompt, invalidJSON string, cause error) (*plan.Plan, error) {
	prompt := buildRepairPrompt(originalPrompt, invalidJSON, cause.Error())

	raw, err := s.llm.Generate(ctx, systemPrompt, prompt, repairTemperature, maxOutputTokens)
	if err != nil {
		return nil, classifyUpstream(err)
	}

	jsonText, err := ExtractJSON(raw)
	if err != nil {
		return nil, &SynthesisFailedError{Cause: err}
	}

	p, err := s.decodeAndValidate(jsonText)
	if err != nil {
		return nil, &SynthesisFailedError{Cause: err}
	}
	return p, nil
}

// refine runs the fact-check pass. Every failure path falls back to the
// already accepted plan, so refinement can improve a deck but never lose one.
func (s *Synthesizer) refine(ctx context.Context, accepted *plan.Plan) *plan.Plan {
	encoded, err := plan.Encode(accepted)
	if err != nil {
		s.log.Warn("Refine skipped: could not encode plan", "error", err.Error())
		return accepted
	}

	raw, err := s.llm.Generate(ctx, refineSystemPrompt, buildRefinePrompt(string(encoded)), refineTemperature, maxOutputTokens)
	if err != nil {
		s.log.Warn("Refine call failed, keeping accepted plan", "error", err.Error())
		return accepted
	}

	jsonText, err := ExtractJSON(raw)
	if err != nil {
		s.log.Warn("Refine output had no JSON, keeping accepted plan", "error", err.Error())
		return accepted
	}

	refined, err := s.decodeAndValidate(jsonText)
	if err != nil {
		s.log.Warn("Refined plan failed validation, keeping accepted plan", "error", err.Error())
		return accepted
	}
	return refined
}
