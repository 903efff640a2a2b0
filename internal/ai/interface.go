package ai

import "context"

// Enricher defines the contract for generating offer marketing texts.
// This interface allows for swapping different AI providers (Gemini,
// OpenAI, etc.) in the future. Callers must treat every method as
// best-effort: a failure means "use your fallback", never "abort".
type Enricher interface {
	// FunFact returns a short transport-related fact about the route.
	FunFact(ctx context.Context, origin, destination string) (string, error)

	// EnhanceDescription returns a one-paragraph commercial description
	// of the transport.
	EnhanceDescription(ctx context.Context, origin, destination string, distanceKm, durationHours float64) (string, error)
}
