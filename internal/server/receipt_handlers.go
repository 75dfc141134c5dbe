package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/splitr/splitr/internal/middleware"
)

func (s *Server) handleParseReceipt(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if header.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}

	receipt, err := s.receipts.Parse(c.Request.Context(), middleware.GetUserID(c),
		header.Filename, header.Header.Get("Content-Type"), image)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

func (s *Server) handleListReceipts(c *gin.Context) {
	receipts, err := s.receipts.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipts": receipts})
}

func (s *Server) handleGetReceipt(c *gin.Context) {
	receipt, err := s.receipts.Get(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}
