package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiEnricher implements Enricher using Google's Gemini models.
type GeminiEnricher struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	retries int
	backoff time.Duration
}

// NewGeminiEnricher initializes a new Gemini client. apiKey should be
// provided from environment variables. retries is the number of
// re-attempts after the first failure; backoff is the fixed wait
// between attempts.
func NewGeminiEnricher(ctx context.Context, apiKey string, retries int, backoff time.Duration) (*GeminiEnricher, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Gemini 2.0 Flash for low latency and cost efficiency.
	model := client.GenerativeModel("gemini-2.0-flash")
	model.SetTemperature(0.7)

	if retries < 0 {
		retries = 0
	}
	return &GeminiEnricher{
		client:  client,
		model:   model,
		retries: retries,
		backoff: backoff,
	}, nil
}

// Close cleans up the Gemini client resources.
func (e *GeminiEnricher) Close() {
	e.client.Close()
}

func (e *GeminiEnricher) FunFact(ctx context.Context, origin, destination string) (string, error) {
	prompt := fmt.Sprintf(
		"You write copy for a freight logistics platform. "+
			"Give one surprising, verifiable fact about transport or trade between %s and %s. "+
			"One sentence, no preamble, no markdown.",
		origin, destination)
	return e.generate(ctx, prompt)
}

func (e *GeminiEnricher) EnhanceDescription(ctx context.Context, origin, destination string, distanceKm, durationHours float64) (string, error) {
	prompt := fmt.Sprintf(
		"You write copy for a freight logistics platform. "+
			"Describe a commercial freight transport from %s to %s covering %.0f km in about %.1f hours. "+
			"One short paragraph, factual tone, no markdown.",
		origin, destination, distanceKm, durationHours)
	return e.generate(ctx, prompt)
}

// generate calls the model with a bounded retry count and fixed
// backoff. The last error is returned when every attempt fails.
func (e *GeminiEnricher) generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= e.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(e.backoff):
			}
		}

		resp, err := e.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			lastErr = fmt.Errorf("gemini generation error: %w", err)
			continue
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			lastErr = fmt.Errorf("no response candidates from Gemini")
			continue
		}

		var text strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				text.WriteString(string(txt))
			}
		}
		if out := strings.TrimSpace(text.String()); out != "" {
			return out, nil
		}
		lastErr = fmt.Errorf("empty response from Gemini")
	}
	return "", lastErr
}
