// Package analysis implements models.Analyzer on the Gemini API.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
	"google.golang.org/genai"

	"notevault/models"
)

// maxPromptRunes bounds the content sent for analysis.
const maxPromptRunes = 30000

// Gemini asks a Gemini model for a structured analysis of note content.
type Gemini struct {
	client   *genai.Client
	model    string
	language string
}

// NewGemini creates a client for the Gemini API.
func NewGemini(ctx context.Context, cfg models.GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, serr.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, serr.Wrap(err, "failed to create gemini client")
	}
	language := cfg.Language
	if language == "" {
		language = "English"
	}
	return &Gemini{client: client, model: cfg.Model, language: language}, nil
}

// Schema is the structured output requested from the model.
func Schema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {Type: genai.TypeString, Description: "A short summary of the content"},
			"keyTakeaways": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Three key takeaways",
			},
			"suggestedTags": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"title": {Type: genai.TypeString, Description: "A short title for the content"},
		},
		Required: []string{"summary", "keyTakeaways", "suggestedTags", "title"},
	}
}

// Prompt builds the analysis request for text.
func Prompt(text, language string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) > maxPromptRunes {
		runes = runes[:maxPromptRunes]
	}
	return fmt.Sprintf("Analyze the following study material. Provide a short summary, "+
		"three key takeaways, a few suggested tags and a short title. Answer in %s.\n\nContent:\n%s",
		language, string(runes))
}

// Analyze implements models.Analyzer.
func (g *Gemini) Analyze(ctx context.Context, text string) (*models.Analysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, serr.New("nothing to analyze")
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(Prompt(text, g.language)),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   Schema(),
		})
	if err != nil {
		return nil, serr.Wrap(err, "gemini request failed")
	}

	a, err := ParseAnalysis(resp.Text())
	if err != nil {
		return nil, err
	}
	logger.Debug("Content analyzed", "model", g.model, "tags", len(a.SuggestedTags))
	return a, nil
}

// ParseAnalysis decodes the model's JSON answer. Code fences around the JSON are tolerated.
func ParseAnalysis(raw string) (*models.Analysis, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, serr.New("empty analysis response")
	}

	var a models.Analysis
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, serr.Wrap(err, "failed to parse analysis response")
	}
	if strings.TrimSpace(a.Summary) == "" && strings.TrimSpace(a.Title) == "" {
		return nil, serr.New("analysis response has neither title nor summary")
	}
	return &a, nil
}
