// Package suno talks to the Suno music generation REST API. Generation is
// asynchronous: a submitted request returns a clip ID which is then polled
// until the clip reports complete and exposes an audio URL.
package suno

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/bruno-ai/bruno-be/internal/pipeline"
)

const defaultRequestTimeout = 60 * time.Second

// Config holds Suno API settings.
type Config struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
}

// Client is the audio generation collaborator backed by the Suno API.
// It implements pipeline.Generator.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// clip mirrors the clip object returned by the generate and clips endpoints.
type clip struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	AudioURL string `json:"audio_url"`
	Metadata struct {
		ErrorMessage string `json:"error_message"`
	} `json:"metadata"`
}

// generateRequest is the payload for the custom-mode generate endpoint. The
// API has no duration parameter; timing lives in the prompt text itself.
type generateRequest struct {
	Prompt           string `json:"prompt"`
	Tags             string `json:"tags"`
	MakeInstrumental bool   `json:"make_instrumental"`
	Title            string `json:"title"`
	NegativeTags     string `json:"negative_tags,omitempty"`
}

// NewClient creates a Suno API client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Submit starts one audio generation and returns its clip ID.
func (c *Client) Submit(ctx context.Context, prompt pipeline.Prompt, duration float64) (pipeline.GenerationHandle, error) {
	title := "Bruno AI Generation"
	if duration > 0 {
		title = fmt.Sprintf("Bruno AI Generation (%.0fs)", duration)
	}

	payload := generateRequest{
		Prompt:           prompt.Prompt,
		Tags:             prompt.Tags,
		MakeInstrumental: false,
		Title:            title,
		NegativeTags:     prompt.NegativeTags,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build generate request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach Suno API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("Suno generate request rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(snippet)),
		)
		return "", fmt.Errorf("suno API failed with status %d", resp.StatusCode)
	}

	var result clip
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode generate response: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("unexpected Suno API response: missing clip id")
	}

	c.logger.Info("Suno generation started",
		slog.String("clip_id", result.ID),
		slog.String("status", result.Status),
	)
	return pipeline.GenerationHandle(result.ID), nil
}

// Poll fetches the current status of one in-flight generation.
func (c *Client) Poll(ctx context.Context, handle pipeline.GenerationHandle) (pipeline.GenerationStatus, error) {
	endpoint := fmt.Sprintf("%s/clips?ids=%s", c.baseURL, url.QueryEscape(string(handle)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return pipeline.GenerationStatus{}, fmt.Errorf("failed to build clips request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pipeline.GenerationStatus{}, fmt.Errorf("failed to reach Suno API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pipeline.GenerationStatus{}, fmt.Errorf("suno status check failed with status %d", resp.StatusCode)
	}

	var clips []clip
	if err := json.NewDecoder(resp.Body).Decode(&clips); err != nil {
		return pipeline.GenerationStatus{}, fmt.Errorf("failed to decode clips response: %w", err)
	}
	if len(clips) == 0 {
		// Clip not visible yet; the runner treats this as still pending.
		return pipeline.GenerationStatus{Status: pipeline.GenerationSubmitted}, nil
	}

	first := clips[0]
	return pipeline.GenerationStatus{
		Status:       first.Status,
		AudioURL:     first.AudioURL,
		ErrorMessage: first.Metadata.ErrorMessage,
	}, nil
}

// Fetch downloads the finished audio to a temp file and returns its path.
func (c *Client) Fetch(ctx context.Context, audioURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build audio download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download audio from %s: %w", audioURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("audio download failed with status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "suno_*"+audioSuffix(audioURL))
	if err != nil {
		return "", fmt.Errorf("failed to create audio temp file: %w", err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write audio temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close audio temp file: %w", err)
	}

	c.logger.Info("Audio downloaded",
		slog.String("path", tmp.Name()),
	)
	return tmp.Name(), nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}

// audioSuffix picks a file suffix matching the delivered format.
func audioSuffix(audioURL string) string {
	switch {
	case strings.Contains(audioURL, "wav"):
		return ".wav"
	case strings.Contains(audioURL, "mp4"):
		return ".mp4"
	default:
		return ".mp3"
	}
}
