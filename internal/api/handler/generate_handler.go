package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bruno-ai/bruno-be/internal/api/dto"
	"github.com/bruno-ai/bruno-be/internal/pipeline"
)

// upload is a validated video file saved under the upload directory.
type upload struct {
	Path     string
	Filename string
	Duration float64
}

// saveUpload persists the multipart video file and validates it before any
// pipeline work starts. A rejected upload never produces pipeline events.
func (h *GenerateHandler) saveUpload(c *gin.Context) (*upload, bool) {
	fileHeader, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "missing video file"})
		return nil, false
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "video/") {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: fmt.Sprintf("unsupported content type %q, expected a video", contentType),
		})
		return nil, false
	}

	ext := filepath.Ext(fileHeader.Filename)
	path := filepath.Join(h.uploadDir, uuid.New().String()+ext)
	if err := c.SaveUploadedFile(fileHeader, path); err != nil {
		h.logger.Error("failed to save upload", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to save upload"})
		return nil, false
	}

	duration, err := h.probe.Duration(c.Request.Context(), path)
	if err != nil {
		os.Remove(path)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "could not read video duration"})
		return nil, false
	}

	maxSeconds := h.limits.MaxVideoDuration.Seconds()
	if duration > maxSeconds {
		os.Remove(path)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: fmt.Sprintf("video is %.1fs long, maximum is %.0fs", duration, maxSeconds),
		})
		return nil, false
	}

	return &upload{Path: path, Filename: fileHeader.Filename, Duration: duration}, true
}

// Generate runs the full pipeline synchronously and responds with the
// combined video file.
func (h *GenerateHandler) Generate(c *gin.Context) {
	up, ok := h.saveUpload(c)
	if !ok {
		return
	}
	defer os.Remove(up.Path)

	log := h.logger.With("filename", up.Filename)
	emit := func(event pipeline.Event) {
		log.Info("pipeline event", "stage", event.Stage, "message", event.Message)
	}

	result, err := h.runner.Run(c.Request.Context(), pipeline.Job{
		VideoPath: up.Path,
		Filename:  up.Filename,
		Duration:  up.Duration,
	}, emit)
	if err != nil {
		log.Error("pipeline failed", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", result.OutputName))
	c.Header("Accept-Ranges", "bytes")
	c.Header("Cache-Control", "no-cache")
	c.Header("Content-Type", "video/mp4")
	c.File(result.OutputPath)
}

// GenerateStream runs the pipeline while streaming progress events to the
// client as server-sent events. Each event is delivered before the stage it
// announces does its work, so clients observe progress in real time.
func (h *GenerateHandler) GenerateStream(c *gin.Context) {
	up, ok := h.saveUpload(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	log := h.logger.With("filename", up.Filename)

	// Captured once; the goroutine must not touch the gin context, which
	// is pooled and recycled after the handler returns.
	reqCtx := c.Request.Context()

	// Unbuffered so the runner blocks until each event is written out.
	events := make(chan pipeline.Event)
	go func() {
		defer close(events)
		defer os.Remove(up.Path)

		emit := func(event pipeline.Event) {
			select {
			case events <- event:
			case <-reqCtx.Done():
			}
		}

		_, err := h.runner.Run(reqCtx, pipeline.Job{
			VideoPath: up.Path,
			Filename:  up.Filename,
			Duration:  up.Duration,
		}, emit)
		if err != nil {
			log.Error("pipeline failed", "error", err)
		}
	}()

	for event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			log.Error("failed to encode event", "error", err)
			continue
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", data)
		c.Writer.Flush()
	}
}
