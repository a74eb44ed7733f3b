// Package narrative writes a short prose summary of the yearly extremes.
package narrative

import (
	"context"
	"fmt"
	"strings"

	"github.com/lox/genevaclimate/internal/climate"
)

// Input is what a narrative is written about.
type Input struct {
	Highlights []climate.Highlight
	MinYear    int
	MaxYear    int
}

// Writer produces a narrative for the highlights.
type Writer interface {
	Write(ctx context.Context, in Input) (string, error)
}

// TemplateWriter builds the narrative from fixed sentences. It never fails.
type TemplateWriter struct{}

func (TemplateWriter) Write(_ context.Context, in Input) (string, error) {
	return buildNarrative(in), nil
}

// sentencePairs joins each max/min highlight pair into one sentence.
var sentencePairs = []struct {
	max, min string
	format   string
}{
	{"hottest", "coldest", "The hottest year on average was %s, and the coldest was %s."},
	{"max_temp_ever", "min_temp_ever", "The highest temperature on record came in %s, the lowest in %s."},
	{"wettest", "driest", "%s was the wettest year and %s the driest."},
	{"snowiest", "least_snow", "The most snow fell in %s and the least in %s."},
	{"sunniest", "least_sunny", "%s was the sunniest year, %s the least sunny."},
}

func buildNarrative(in Input) string {
	if len(in.Highlights) == 0 {
		return ""
	}

	parts := []string{fmt.Sprintf("Geneva's records run from %d to %d.", in.MinYear, in.MaxYear)}
	for _, p := range sentencePairs {
		hi, okHi := climate.HighlightByKey(in.Highlights, p.max)
		lo, okLo := climate.HighlightByKey(in.Highlights, p.min)
		if !okHi || !okLo {
			continue
		}
		parts = append(parts, fmt.Sprintf(p.format, yearValue(hi), yearValue(lo)))
	}
	return strings.Join(parts, " ")
}

func yearValue(h climate.Highlight) string {
	return fmt.Sprintf("%d (%s)", h.Record.Year, h.Formatted())
}

// facts lists the highlights one per line, for prompting.
func facts(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Years covered: %d-%d\n", in.MinYear, in.MaxYear)
	for _, h := range in.Highlights {
		fmt.Fprintf(&b, "- %s: %d, %s\n", h.Title, h.Record.Year, h.Formatted())
	}
	return b.String()
}
