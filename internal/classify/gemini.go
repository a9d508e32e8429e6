package classify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for all classification calls.
const DefaultModelName = "gemini-2.5-flash"

// callTimeout bounds each model call so a slow provider degrades into the
// caller's fallback path instead of hanging the request.
const callTimeout = 30 * time.Second

// Gemini implements Classifier on top of the Google GenAI API.
type Gemini struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

// NewGemini creates a Gemini classifier. The API key is read from the
// environment by the genai client (GEMINI_API_KEY / GOOGLE_API_KEY).
func NewGemini(ctx context.Context, model string, log zerolog.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGemini: create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModelName
	}
	return &Gemini{client: client, model: model, log: log}, nil
}

// generate runs one prompt and returns the raw response text.
func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("%w: generate content: %v", ErrProvider, err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return "", fmt.Errorf("%w: empty response from model", ErrMalformed)
	}
	return rawText, nil
}

// Categorize implements Classifier.
func (g *Gemini) Categorize(ctx context.Context, description string, amount decimal.Decimal) (Guess, error) {
	prompt := fmt.Sprintf(
		"Analyze this transaction and provide category and tags:\n"+
			"Description: %q\n"+
			"Amount: %s\n\n"+
			"Respond with STRICT JSON only (no comments, no Markdown, no code fences):\n"+
			"{\n"+
			"  \"category\": \"category_name\",\n"+
			"  \"tags\": [\"tag1\", \"tag2\"],\n"+
			"  \"type\": \"expense|income|refund\"\n"+
			"}\n\n"+
			"Common categories: Food, Transport, Entertainment, Shopping, Bills, Healthcare, Income, Refund\n",
		description, amount.StringFixed(2))

	rawText, err := g.generate(ctx, prompt)
	if err != nil {
		return Guess{}, fmt.Errorf("Categorize: %w", err)
	}

	obj, err := decodeObject(rawText)
	if err != nil {
		return Guess{}, fmt.Errorf("Categorize: %w: %v", ErrMalformed, err)
	}

	guess, err := guessFromRaw(obj, amount)
	if err != nil {
		return Guess{}, fmt.Errorf("Categorize: %w: %v", ErrMalformed, err)
	}
	return guess, nil
}

// ParseStatement implements Classifier. Failures are logged and degrade to
// an empty slice; a statement the model cannot read yields nothing to
// import rather than an error.
func (g *Gemini) ParseStatement(ctx context.Context, text string) ([]Line, error) {
	prompt := "Parse this credit card statement and extract all transactions:\n" +
		text + "\n\n" +
		"Return a STRICT JSON array of transactions (no Markdown, no code fences):\n" +
		"[\n" +
		"  {\n" +
		"    \"date\": \"YYYY-MM-DD\",\n" +
		"    \"amount\": number (negative for purchases, positive for refunds),\n" +
		"    \"description\": \"merchant name\",\n" +
		"    \"isRefund\": boolean\n" +
		"  }\n" +
		"]\n\n" +
		"Only include actual transactions, not fees or interest charges.\n" +
		"Output must begin with \"[\" and end with \"]\".\n"

	rawText, err := g.generate(ctx, prompt)
	if err != nil {
		g.log.Warn().Err(err).Msg("statement parsing failed")
		return []Line{}, nil
	}

	arr, err := decodeArray(rawText)
	if err != nil {
		g.log.Warn().Err(err).Str("raw", truncate(rawText, 200)).Msg("statement output unparsable")
		return []Line{}, nil
	}

	return linesFromRaw(arr), nil
}

// ParseEmail implements Classifier. Returns nil when no transaction is
// found, including when the model fails.
func (g *Gemini) ParseEmail(ctx context.Context, subject, body string) (*EmailResult, error) {
	prompt := fmt.Sprintf(
		"Extract transaction information from this bank email:\n"+
			"Subject: %q\n"+
			"Body: %q\n\n"+
			"Respond with STRICT JSON only (no Markdown, no code fences):\n"+
			"{\n"+
			"  \"amount\": number,\n"+
			"  \"description\": \"merchant/description\",\n"+
			"  \"date\": \"YYYY-MM-DD\",\n"+
			"  \"account\": \"account_info\",\n"+
			"  \"type\": \"expense|income|refund\"\n"+
			"}\n\n"+
			"If no transaction is found, return null.\n",
		subject, body)

	rawText, err := g.generate(ctx, prompt)
	if err != nil {
		g.log.Warn().Err(err).Msg("email parsing failed")
		return nil, nil
	}

	if strings.TrimSpace(rawText) == "null" {
		return nil, nil
	}

	obj, err := decodeObject(rawText)
	if err != nil {
		g.log.Warn().Err(err).Str("raw", truncate(rawText, 200)).Msg("email output unparsable")
		return nil, nil
	}

	return emailFromRaw(obj), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

var _ Classifier = (*Gemini)(nil)
