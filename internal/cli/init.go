package cli

import (
	"context"

	"github.com/fpang/smart-gallery/internal/auth"
	"github.com/fpang/smart-gallery/internal/metrics"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// InitGeminiClient creates a Gemini client and validates the key against
// model. Exits fatally on failure.
func InitGeminiClient(ctx context.Context, model string, em *metrics.Emitter) *genai.Client {
	apiKey, err := auth.APIKey(ctx)
	if err != nil {
		HandleValidationError(err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Gemini client")
	}

	log.Debug().Msg("Gemini client initialized")

	if err := auth.ValidateAPIKey(ctx, client, model, em); err != nil {
		HandleValidationError(err)
	}

	return client
}
