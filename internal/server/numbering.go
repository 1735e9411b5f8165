package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	numberingdomain "github.com/smallbiznis/docflow/internal/numbering/domain"
)

type generateNumberRequest struct {
	Type           string `json:"type"`
	ManualOverride string `json:"manual_override"`
}

type resetNumberingRequest struct {
	Type string `json:"type"`
	Year int    `json:"year"`
}

func (s *Server) GenerateNumber(c *gin.Context) {
	var req generateNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	documentType := numberingdomain.DocumentType(strings.TrimSpace(req.Type))
	c.Set("document_type", string(documentType))

	resp, err := s.numberingSvc.Generate(c.Request.Context(), documentType, req.ManualOverride)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetNumberingState(c *gin.Context) {
	state, err := s.numberingSvc.State(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": state})
}

func (s *Server) ResetNumbering(c *gin.Context) {
	var req resetNumberingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	documentType := numberingdomain.DocumentType(strings.TrimSpace(req.Type))
	c.Set("document_type", string(documentType))

	ctx := c.Request.Context()
	if err := s.numberingSvc.ResetYear(ctx, documentType, req.Year); err != nil {
		AbortWithError(c, err)
		return
	}

	state, err := s.numberingSvc.State(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": state})
}
