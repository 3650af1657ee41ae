package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/matzehuels/designtree/pkg/classify"
	"github.com/matzehuels/designtree/pkg/design"
)

// DefaultGeminiModel is the model used when none is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// contentGenerator is the subset of *genai.Models the classifier uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClassifier asks a Gemini model to pick a role for a node summary.
type GeminiClassifier struct {
	models contentGenerator
	model  string
}

// NewGeminiClassifier creates a classifier using the Gemini API. An empty
// apiKey lets the SDK read GEMINI_API_KEY or GOOGLE_API_KEY from the
// environment.
func NewGeminiClassifier(ctx context.Context, apiKey, model string) (*GeminiClassifier, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return newGeminiClassifier(cli.Models, model), nil
}

func newGeminiClassifier(models contentGenerator, model string) *GeminiClassifier {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClassifier{models: models, model: model}
}

// Name implements [classify.External].
func (g *GeminiClassifier) Name() string { return "gemini:" + g.model }

// Classify implements [classify.External].
func (g *GeminiClassifier) Classify(ctx context.Context, s classify.Summary) (design.Classification, error) {
	prompt, err := Prompt(s)
	if err != nil {
		return design.Classification{}, err
	}
	resp, err := g.models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return design.Classification{}, err
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return design.Classification{}, fmt.Errorf("%w: empty response", ErrMalformedAnswer)
	}
	return ParseAnswer([]byte(resp.Candidates[0].Content.Parts[0].Text))
}

// Prompt renders the instruction sent to a language model for s.
func Prompt(s classify.Summary) (string, error) {
	in, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	roles := make([]string, len(design.Roles))
	for i, r := range design.Roles {
		roles[i] = string(r)
	}
	confidences := []string{
		design.ConfidenceLow.String(),
		design.ConfidenceMedium.String(),
		design.ConfidenceHigh.String(),
		design.ConfidenceVeryHigh.String(),
	}

	var b strings.Builder
	b.WriteString("You classify elements of a user interface design by their structure.\n")
	b.WriteString("Pick exactly one role from: ")
	b.WriteString(strings.Join(roles, ", "))
	b.WriteString(".\nRate your confidence as one of: ")
	b.WriteString(strings.Join(confidences, ", "))
	b.WriteString(".\nAnswer with a JSON object {\"role\": ..., \"confidence\": ..., \"reason\": ...}.\n\n[INPUT JSON]\n")
	b.Write(in)
	return b.String(), nil
}

var _ classify.External = (*GeminiClassifier)(nil)
