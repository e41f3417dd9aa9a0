package synth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slivora/slivora-backend/internal/clients/openai"
	"github.com/slivora/slivora-backend/internal/plan"
)

// ExtractionError means no balanced JSON object could be found in the model
// output.
type ExtractionError struct {
	Detail string
}

func (e *ExtractionError) Error() string {
	return "no JSON object found in model output: " + e.Detail
}

// ValidationError carries every schema violation found in a decoded plan.
type ValidationError struct {
	Fields []plan.FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("plan failed validation (%d errors): %s", len(e.Fields), plan.FormatErrors(e.Fields))
}

// SynthesisFailedError is terminal: the model produced an unusable plan and
// the single repair attempt did not fix it.
type SynthesisFailedError struct {
	Cause error
}

func (e *SynthesisFailedError) Error() string {
	return "could not synthesize a valid slide plan: " + e.Cause.Error()
}

func (e *SynthesisFailedError) Unwrap() error { return e.Cause }

const (
	UpstreamRateLimited = "rate_limited"
	UpstreamQuota       = "quota"
	UpstreamTimeout     = "timeout"
	UpstreamUnavailable = "unavailable"
)

// UpstreamError wraps a failed LLM call with a stable classification so the
// HTTP layer can return a user-presentable message without leaking provider
// detail.
type UpstreamError struct {
	Kind string
	Err  error
}

func (e *UpstreamError) Error() string {
	return "llm upstream " + e.Kind + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) UserMessage() string {
	switch e.Kind {
	case UpstreamRateLimited:
		return "The generation service is busy. Please try again in a moment."
	case UpstreamQuota:
		return "The generation service is temporarily over capacity. Please try again later."
	case UpstreamTimeout:
		return "The generation service took too long to respond. Please try again."
	default:
		return "The generation service is unavailable. Please try again later."
	}
}

func classifyUpstream(err error) *UpstreamError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &UpstreamError{Kind: UpstreamTimeout, Err: err}
	}
	var httpErr *openai.HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == 429 && strings.Contains(httpErr.Body, "insufficient_quota"):
			return &UpstreamError{Kind: UpstreamQuota, Err: err}
		case httpErr.StatusCode == 429:
			return &UpstreamError{Kind: UpstreamRateLimited, Err: err}
		case httpErr.StatusCode == 408 || httpErr.StatusCode == 504:
			return &UpstreamError{Kind: UpstreamTimeout, Err: err}
		}
	}
	return &UpstreamError{Kind: UpstreamUnavailable, Err: err}
}
