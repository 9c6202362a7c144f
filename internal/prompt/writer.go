// Package prompt turns a video content description into a music brief for
// the generation service, using an OpenAI chat model.
package prompt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/bruno-ai/bruno-be/internal/pipeline"
)

// Config holds OpenAI settings for prompt synthesis.
type Config struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Writer is the prompt synthesis collaborator. It implements
// pipeline.PromptWriter.
type Writer struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// NewWriter creates a prompt writer backed by the OpenAI API.
func NewWriter(cfg Config, logger *slog.Logger) *Writer {
	model := cfg.Model
	if model == "" {
		model = openai.ChatModelGPT4o
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.75
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 800
	}

	return &Writer{
		client:      openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

// WritePrompt synthesizes the music brief for one video. A second, cheaper
// completion suggests negative tags; if it fails the brief still ships with
// a fallback set.
func (w *Writer) WritePrompt(ctx context.Context, videoContext string, duration float64) (pipeline.Prompt, error) {
	if duration <= 0 {
		return pipeline.Prompt{}, fmt.Errorf("video duration is required for music timing")
	}

	userMessage := buildUserMessage(videoContext, duration)

	completion, err := w.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: w.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userMessage),
		},
		Temperature: openai.Float(w.temperature),
		MaxTokens:   openai.Int(int64(w.maxTokens)),
	})
	if err != nil {
		return pipeline.Prompt{}, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(completion.Choices) == 0 {
		return pipeline.Prompt{}, fmt.Errorf("no response from OpenAI")
	}

	brief := strings.TrimSpace(completion.Choices[0].Message.Content)
	if brief == "" {
		return pipeline.Prompt{}, fmt.Errorf("OpenAI returned an empty brief (finish reason: %s)", completion.Choices[0].FinishReason)
	}

	tags := extractTags(brief)
	negativeTags := w.negativeTags(ctx, videoContext, tags)

	w.logger.Info("Music brief synthesized",
		slog.String("tags", tags),
		slog.String("negative_tags", negativeTags),
		slog.Int("brief_chars", len(brief)),
	)

	return pipeline.Prompt{
		Prompt:       brief,
		Tags:         tags,
		NegativeTags: negativeTags,
	}, nil
}

// negativeTags asks for anti-style tags that would clash with the chosen
// direction. Failures fall back to a static set rather than failing the job.
func (w *Writer) negativeTags(ctx context.Context, videoContext, positiveTags string) string {
	request := fmt.Sprintf(`Suggest 3-5 NEGATIVE music style tags that would clash with:

VIDEO CONTEXT:
%s

POSITIVE TAGS:
%s

Return ONLY a comma-separated list of 3-5 negative tags.
No explanation.
`, videoContext, positiveTags)

	completion, err := w.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: w.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(request),
		},
		Temperature: openai.Float(0.4),
		MaxTokens:   openai.Int(50),
	})
	if err != nil || len(completion.Choices) == 0 {
		w.logger.Warn("Negative tag generation failed, using fallback",
			slog.Any("error", err),
		)
		return fallbackNegativeTags
	}

	tags := strings.TrimSpace(completion.Choices[0].Message.Content)
	if tags == "" {
		return fallbackNegativeTags
	}
	return tags
}

// buildUserMessage maps the video duration onto section timing hints and
// attaches the analysis context.
func buildUserMessage(videoContext string, duration float64) string {
	introEnd := duration * 0.25
	if introEnd > 8 {
		introEnd = 8
	}
	verseEnd := duration * 0.75
	if verseEnd > duration-3 {
		verseEnd = duration - 3
	}

	return fmt.Sprintf(`
VIDEO DURATION: %.2f seconds
TRACK MUST END EXACTLY AT %.2f seconds

VIDEO ANALYSIS:
%s

INSTRUCTIONS:

1. Choose a genre that realistically matches the video.
2. Write lyrics about visible actions and environments only.
3. Do NOT reuse emotional adjectives from the analysis.
4. Follow strict duration mapping:
   - Intro: 0 to ~%.2f seconds
   - Verse: ~%.2f to ~%.2f seconds
   - Outro: ~%.2f to %.2f seconds
5. Duration must be stated at least 4 times.
6. Final line must be:
   TOTAL TRACK LENGTH: %.2f SECONDS. HARD STOP AT %.2f SECONDS.
`, duration, duration, videoContext, introEnd, introEnd, verseEnd, verseEnd, duration, duration, duration)
}
