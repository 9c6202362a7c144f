package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/bruno-ai/bruno-be/internal/api/dto"
)

// Output serves a previously generated video from the output directory.
func (h *GenerateHandler) Output(c *gin.Context) {
	name := c.Param("filename")

	// Reject anything that could escape the output directory.
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid filename"})
		return
	}

	path := filepath.Join(h.outputDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "output not found"})
		return
	}

	c.Header("Accept-Ranges", "bytes")
	c.Header("Cache-Control", "no-cache")
	c.Header("Content-Type", "video/mp4")
	c.File(path)
}
