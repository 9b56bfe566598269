// Package extract turns one check page image into a structured record by
// calling a vision-capable inference service.
//
// The service is any OpenAI-compatible chat-completions endpoint with
// image support. The request pairs the page image (base64 data URL) with a
// fixed instructional prompt; the response is free text expected to
// contain exactly one JSON object with the eight schema fields.
//
// Required Environment Variables:
//   - OPENAI_API_KEY: inference service API key
//   - OPENAI_BASE_URL: alternative endpoint (optional)
//   - OPENAI_MODEL: vision-capable model name (optional, default gpt-4o)
package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"checkparser/internal/logger"
	"checkparser/pkg/models"
)

// Extractor extracts a structured check record from one page image.
type Extractor interface {
	// Extract sends the page to the inference service and parses the reply.
	// Failures are ErrService (the call itself failed) or
	// ErrMalformedResponse (the reply could not be parsed).
	Extract(ctx context.Context, page models.PageImage) (*models.CheckRecord, error)
}

// VisionConfig configures the vision extraction service.
type VisionConfig struct {
	APIKey    string // inference service API key
	BaseURL   string // optional endpoint override
	Model     string // vision-capable model, e.g. gpt-4o
	MaxTokens int    // response token cap
}

// DefaultVisionConfig returns a VisionConfig populated from the environment.
func DefaultVisionConfig() VisionConfig {
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o"
	}
	return VisionConfig{
		APIKey:    os.Getenv("OPENAI_API_KEY"),
		BaseURL:   os.Getenv("OPENAI_BASE_URL"),
		Model:     model,
		MaxTokens: 2048,
	}
}

// VisionExtractor implements Extractor against an OpenAI-compatible API.
type VisionExtractor struct {
	client *openai.Client
	config VisionConfig
	log    zerolog.Logger
}

// NewVisionExtractor creates an extractor with configuration from the environment.
func NewVisionExtractor() (*VisionExtractor, error) {
	const op = "NewVisionExtractor"

	config := DefaultVisionConfig()
	if config.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingAPIKey)
	}
	return NewVisionExtractorWithConfig(config), nil
}

// NewVisionExtractorWithConfig creates an extractor with explicit configuration.
func NewVisionExtractorWithConfig(config VisionConfig) *VisionExtractor {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 2048
	}
	return &VisionExtractor{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		log:    logger.WithComponent("extract"),
	}
}

// Extract implements Extractor.
func (s *VisionExtractor) Extract(ctx context.Context, page models.PageImage) (*models.CheckRecord, error) {
	const op = "Extract"

	dataURL := fmt.Sprintf("data:%s;base64,%s",
		page.MediaType, base64.StdEncoding.EncodeToString(page.Data))

	s.log.Debug().
		Int("page", page.Index).
		Str("source", page.SourceName).
		Str("media_type", page.MediaType).
		Int("image_bytes", len(page.Data)).
		Str("model", s.config.Model).
		Msg("Sending extraction request")

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: extractionPrompt,
					},
				},
			},
		},
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, &ExtractError{Op: op, Err: err, PageIndex: page.Index}
		}
		return nil, &ExtractError{
			Op:        op,
			Err:       fmt.Errorf("%w: %v", ErrService, err),
			PageIndex: page.Index,
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &ExtractError{Op: op, Err: ErrEmptyResponse, PageIndex: page.Index}
	}

	record, err := ParseResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Int("page", page.Index).
		Str("payer", record.Payer).
		Str("check_number", record.CheckNumber).
		Int64("amount_cents", record.AmountCents).
		Msg("Extraction completed")

	return record, nil
}
