// Package analysis describes a video's content using Google Cloud Video
// Intelligence. The video is staged in a GCS scratch bucket, annotated, and
// the annotations are flattened into the text the prompt stage consumes.
package analysis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	videointelligence "cloud.google.com/go/videointelligence/apiv1"
	"cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"github.com/google/uuid"
)

const defaultOperationTimeout = 5 * time.Minute

// Config holds Google Cloud settings for video analysis.
type Config struct {
	Bucket           string
	OperationTimeout time.Duration
}

// Client is the video understanding collaborator. It implements
// pipeline.Analyzer.
type Client struct {
	bucket           string
	operationTimeout time.Duration
	storageClient    *storage.Client
	videoClient      *videointelligence.Client
	logger           *slog.Logger
}

// NewClient creates the analysis client. Credentials come from the
// environment (GOOGLE_APPLICATION_CREDENTIALS).
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("analysis bucket is required")
	}

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	videoClient, err := videointelligence.NewClient(ctx)
	if err != nil {
		storageClient.Close()
		return nil, fmt.Errorf("failed to create video intelligence client: %w", err)
	}

	operationTimeout := cfg.OperationTimeout
	if operationTimeout <= 0 {
		operationTimeout = defaultOperationTimeout
	}

	return &Client{
		bucket:           cfg.Bucket,
		operationTimeout: operationTimeout,
		storageClient:    storageClient,
		videoClient:      videoClient,
		logger:           logger,
	}, nil
}

// Close releases the underlying API clients.
func (c *Client) Close() error {
	videoErr := c.videoClient.Close()
	storageErr := c.storageClient.Close()
	if videoErr != nil {
		return videoErr
	}
	return storageErr
}

// Analyze uploads the video to the scratch bucket, annotates it, and
// returns the formatted content description. The scratch object is deleted
// afterwards on a best-effort basis.
func (c *Client) Analyze(ctx context.Context, videoPath string) (string, error) {
	objectName := fmt.Sprintf("uploads/%s_%s", uuid.New(), filepath.Base(videoPath))
	gcsURI := fmt.Sprintf("gs://%s/%s", c.bucket, objectName)

	if err := c.upload(ctx, videoPath, objectName); err != nil {
		return "", err
	}
	defer func() {
		if err := c.storageClient.Bucket(c.bucket).Object(objectName).Delete(context.WithoutCancel(ctx)); err != nil {
			c.logger.Warn("Failed to delete scratch object",
				slog.String("object", objectName),
				slog.String("error", err.Error()),
			)
		}
	}()

	c.logger.Info("Starting video analysis",
		slog.String("uri", gcsURI),
	)

	opCtx, cancel := context.WithTimeout(ctx, c.operationTimeout)
	defer cancel()

	op, err := c.videoClient.AnnotateVideo(opCtx, &videointelligencepb.AnnotateVideoRequest{
		InputUri: gcsURI,
		Features: []videointelligencepb.Feature{
			videointelligencepb.Feature_LABEL_DETECTION,
			videointelligencepb.Feature_SHOT_CHANGE_DETECTION,
			videointelligencepb.Feature_OBJECT_TRACKING,
		},
		VideoContext: &videointelligencepb.VideoContext{
			LabelDetectionConfig: &videointelligencepb.LabelDetectionConfig{
				LabelDetectionMode: videointelligencepb.LabelDetectionMode_SHOT_AND_FRAME_MODE,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("video intelligence request failed: %w", err)
	}

	resp, err := op.Wait(opCtx)
	if err != nil {
		return "", fmt.Errorf("video intelligence operation failed: %w", err)
	}
	if len(resp.AnnotationResults) == 0 {
		return "", fmt.Errorf("video intelligence returned no annotation results")
	}

	videoContext := formatContext(resp.AnnotationResults[0])
	c.logger.Info("Video analysis complete",
		slog.Int("context_chars", len(videoContext)),
	)
	return videoContext, nil
}

// upload copies the local video into the scratch bucket.
func (c *Client) upload(ctx context.Context, videoPath, objectName string) error {
	f, err := os.Open(videoPath)
	if err != nil {
		return fmt.Errorf("failed to open video for upload: %w", err)
	}
	defer f.Close()

	w := c.storageClient.Bucket(c.bucket).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("failed to upload video to gs://%s/%s: %w", c.bucket, objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize upload to gs://%s/%s: %w", c.bucket, objectName, err)
	}

	c.logger.Info("Video staged for analysis",
		slog.String("bucket", c.bucket),
		slog.String("object", objectName),
	)
	return nil
}
