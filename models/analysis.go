package models

import (
	"context"
	"strings"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// Analysis is the structured result of an AI content analysis.
type Analysis struct {
	Title         string   `json:"title"`
	Summary       string   `json:"summary"`
	KeyTakeaways  []string `json:"keyTakeaways"`
	SuggestedTags []string `json:"suggestedTags"`
}

// Analyzer produces an Analysis for a piece of text. The analysis package
// provides a Gemini-backed implementation.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*Analysis, error)
}

const summarySeparator = "--- SUMMARY ---"

// AnalysisEnabled reports whether an analyzer is configured.
func (s *Store) AnalysisEnabled() bool {
	return s.analyzer != nil
}

// CreateNoteWithAnalysis runs the configured analyzer on the content before
// creating the note. The analysis supplies title, tags and an appended
// summary. When no analyzer is configured, or it fails or times out, the note
// is created exactly as CreateNote would. The returned Analysis is nil in
// that case.
func (s *Store) CreateNoteWithAnalysis(ctx context.Context, in NoteInput) (Note, *Analysis, error) {
	if err := in.Validate(); err != nil {
		return Note{}, nil, err
	}
	if s.analyzer == nil {
		note, err := s.CreateNote(ctx, in)
		return note, nil, err
	}

	actx, cancel := context.WithTimeout(ctx, s.analysisTimeout)
	analysis, err := s.analyzer.Analyze(actx, in.Content)
	cancel()
	if err == nil && analysis == nil {
		err = serr.New("analyzer returned no result")
	}
	if err != nil {
		logger.LogErr(serr.Wrap(err, "content analysis failed"), "creating note without analysis")
		note, cerr := s.CreateNote(ctx, in)
		return note, nil, cerr
	}

	enriched := in
	if t := strings.TrimSpace(analysis.Title); t != "" && strings.TrimSpace(in.Title) == "" {
		enriched.Title = strings.ToUpper(t)
	}
	enriched.Tags = append(append([]string{}, in.Tags...), analysis.SuggestedTags...)
	enriched.Content = AppendSummary(in.Content, analysis)
	if in.Kind == "" || in.Kind == KindText {
		enriched.Kind = KindSummary
	}

	note, err := s.CreateNote(ctx, enriched)
	if err != nil {
		return Note{}, nil, err
	}
	return note, analysis, nil
}

// AppendSummary adds the analysis summary and takeaways below the original content.
func AppendSummary(content string, a *Analysis) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(content))
	if strings.TrimSpace(a.Summary) == "" && len(a.KeyTakeaways) == 0 {
		return b.String()
	}
	b.WriteString("\n\n")
	b.WriteString(summarySeparator)
	if s := strings.TrimSpace(a.Summary); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
	}
	for _, k := range a.KeyTakeaways {
		if k = strings.TrimSpace(k); k != "" {
			b.WriteString("\n- ")
			b.WriteString(k)
		}
	}
	return b.String()
}
