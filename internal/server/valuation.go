package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	valuationdomain "github.com/smallbiznis/docflow/internal/valuation/domain"
)

type computeValuationRequest struct {
	RateConvention string                     `json:"rate_convention"`
	Lines          []valuationdomain.LineItem `json:"lines"`
}

func (s *Server) ComputeValuation(c *gin.Context) {
	var req computeValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.valuationSvc.ComputeDocumentTotals(c.Request.Context(), req.Lines, valuationdomain.RateConvention(req.RateConvention))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
