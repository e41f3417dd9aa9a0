// Package plan defines the slide plan document and its validation rules.
// A plan is the contract between the synthesis pipeline and the renderer:
// anything that passes Validate can be rendered without further checks.
package plan

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	LayoutTitle        = "title"
	LayoutTitleBullets = "title-bullets"
	LayoutSection      = "section"
	LayoutQuote        = "quote"
	LayoutImage        = "image"
)

// Length caps count Unicode characters, not bytes, so multilingual
// content is measured the way authors see it.
const (
	MinSlides = 3
	MaxSlides = 30

	MaxProjectTitleLen = 120
	MinLanguageLen     = 2
	MaxLanguageLen     = 40
	MaxSlideTitleLen   = 60
	MaxBullets         = 6
	MaxBulletLen       = 120
	MaxSpeakerNotesLen = 2000
)

type Reference struct {
	URL   string `json:"url"`
	Label string `json:"label,omitempty"`
}

type Slide struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Bullets      []string `json:"bullets,omitempty"`
	SpeakerNotes string   `json:"speakerNotes,omitempty"`
	Layout       string   `json:"layout,omitempty"`
}

type Plan struct {
	ProjectTitle string      `json:"projectTitle"`
	Language     string      `json:"language"`
	Slides       []Slide     `json:"slides"`
	References   []Reference `json:"references,omitempty"`
}

// FieldError pinpoints a single schema violation.
type FieldError struct {
	Path    string
	Message string
}

func (fe FieldError) String() string {
	return fe.Path + ": " + fe.Message
}

// FormatErrors renders field errors one per line, the form fed back to the
// model during the repair pass.
func FormatErrors(errs []FieldError) string {
	lines := make([]string, 0, len(errs))
	for _, fe := range errs {
		lines = append(lines, fe.String())
	}
	return strings.Join(lines, "\n")
}

// Decode parses raw JSON into a Plan. Unknown keys are ignored; malformed
// JSON is an error.
func Decode(raw []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &p, nil
}

// Encode serializes a Plan back to JSON. Decode(Encode(p)) yields an equal
// plan for any valid p.
func Encode(p *Plan) ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode plan: %w", err)
	}
	return raw, nil
}

// Normalize fills deterministic defaults in place: slides missing an id get
// "slide-{n}" from their 1-based position, and an empty layout becomes
// title-bullets. Slide order is never changed.
func Normalize(p *Plan) {
	for i := range p.Slides {
		if strings.TrimSpace(p.Slides[i].ID) == "" {
			p.Slides[i].ID = fmt.Sprintf("slide-%d", i+1)
		}
		if strings.TrimSpace(p.Slides[i].Layout) == "" {
			p.Slides[i].Layout = LayoutTitleBullets
		}
	}
}

var validLayouts = map[string]bool{
	LayoutTitle:        true,
	LayoutTitleBullets: true,
	LayoutSection:      true,
	LayoutQuote:        true,
	LayoutImage:        true,
}

// Validate checks every structural bound and the cross-field rules, and
// returns all violations rather than stopping at the first. A nil result
// means the plan is renderable.
func Validate(p *Plan) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(p.ProjectTitle) == "" {
		errs = append(errs, FieldError{"projectTitle", "must not be empty"})
	} else if utf8.RuneCountInString(p.ProjectTitle) > MaxProjectTitleLen {
		errs = append(errs, FieldError{"projectTitle", fmt.Sprintf("must be at most %d characters", MaxProjectTitleLen)})
	}

	if n := utf8.RuneCountInString(p.Language); n < MinLanguageLen || n > MaxLanguageLen {
		errs = append(errs, FieldError{"language", fmt.Sprintf("must be between %d and %d characters", MinLanguageLen, MaxLanguageLen)})
	}

	if n := len(p.Slides); n < MinSlides || n > MaxSlides {
		errs = append(errs, FieldError{"slides", fmt.Sprintf("must contain between %d and %d slides", MinSlides, MaxSlides)})
	}

	seen := make(map[string]int, len(p.Slides))
	for i, s := range p.Slides {
		at := func(field string) string { return fmt.Sprintf("slides[%d].%s", i, field) }

		id := strings.TrimSpace(s.ID)
		if id == "" {
			errs = append(errs, FieldError{at("id"), "must not be empty"})
		} else if prev, dup := seen[id]; dup {
			errs = append(errs, FieldError{at("id"), fmt.Sprintf("duplicates slides[%d].id %q", prev, id)})
		} else {
			seen[id] = i
		}

		if strings.TrimSpace(s.Title) == "" {
			errs = append(errs, FieldError{at("title"), "must not be empty"})
		} else if utf8.RuneCountInString(s.Title) > MaxSlideTitleLen {
			errs = append(errs, FieldError{at("title"), fmt.Sprintf("must be at most %d characters", MaxSlideTitleLen)})
		}

		if len(s.Bullets) > MaxBullets {
			errs = append(errs, FieldError{at("bullets"), fmt.Sprintf("must contain at most %d bullets", MaxBullets)})
		}
		for j, b := range s.Bullets {
			if n := utf8.RuneCountInString(b); n < 1 || n > MaxBulletLen {
				errs = append(errs, FieldError{
					fmt.Sprintf("slides[%d].bullets[%d]", i, j),
					fmt.Sprintf("must be between 1 and %d characters", MaxBulletLen),
				})
			}
		}

		if utf8.RuneCountInString(s.SpeakerNotes) > MaxSpeakerNotesLen {
			errs = append(errs, FieldError{at("speakerNotes"), fmt.Sprintf("must be at most %d characters", MaxSpeakerNotesLen)})
		}

		if !validLayouts[s.Layout] {
			errs = append(errs, FieldError{at("layout"), fmt.Sprintf("%q is not a recognized layout", s.Layout)})
		}

		if s.Layout == LayoutTitleBullets && len(s.Bullets) == 0 {
			errs = append(errs, FieldError{at("bullets"), "title-bullets slides must have at least one bullet"})
		}
	}

	for i, r := range p.References {
		if strings.TrimSpace(r.URL) == "" {
			errs = append(errs, FieldError{fmt.Sprintf("references[%d].url", i), "must not be empty"})
		}
	}

	return errs
}
