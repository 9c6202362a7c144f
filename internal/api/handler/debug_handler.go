package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/bruno-ai/bruno-be/internal/api/dto"
)

// AnalyzeOnly runs video analysis without generating music. Useful for
// inspecting what the vision model sees in a clip.
func (h *GenerateHandler) AnalyzeOnly(c *gin.Context) {
	up, ok := h.saveUpload(c)
	if !ok {
		return
	}
	defer os.Remove(up.Path)

	videoContext, err := h.analyzer.Analyze(c.Request.Context(), up.Path)
	if err != nil {
		h.logger.Error("analysis failed", "filename", up.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.AnalyzeResponse{
		Context:  videoContext,
		Duration: up.Duration,
	})
}

// PromptOnly runs analysis and prompt writing, returning the generation
// prompt that would be submitted without actually submitting it.
func (h *GenerateHandler) PromptOnly(c *gin.Context) {
	up, ok := h.saveUpload(c)
	if !ok {
		return
	}
	defer os.Remove(up.Path)

	ctx := c.Request.Context()

	videoContext, err := h.analyzer.Analyze(ctx, up.Path)
	if err != nil {
		h.logger.Error("analysis failed", "filename", up.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	prompt, err := h.prompter.WritePrompt(ctx, videoContext, up.Duration)
	if err != nil {
		h.logger.Error("prompt writing failed", "filename", up.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.PromptResponse{
		Context:      videoContext,
		Duration:     up.Duration,
		SunoPrompt:   prompt.Prompt,
		Tags:         prompt.Tags,
		NegativeTags: prompt.NegativeTags,
	})
}
