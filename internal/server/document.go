package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	documentdomain "github.com/smallbiznis/docflow/internal/document/domain"
	numberingdomain "github.com/smallbiznis/docflow/internal/numbering/domain"
	"github.com/smallbiznis/docflow/internal/render"
	"github.com/smallbiznis/docflow/pkg/db/pagination"
)

func (s *Server) PreviewDocument(c *gin.Context) {
	var req documentdomain.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	c.Set("document_type", string(req.Type))

	resp, err := s.documentSvc.Preview(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateDocument(c *gin.Context) {
	var req documentdomain.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	c.Set("document_type", string(req.Type))

	resp, err := s.documentSvc.Save(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateDocument(c *gin.Context) {
	var req documentdomain.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.documentSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDocuments(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Type string `form:"type"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.documentSvc.List(c.Request.Context(), documentdomain.ListRequest{
		Type:       numberingdomain.DocumentType(strings.TrimSpace(query.Type)),
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      resp.Documents,
		"page_info": resp.PageInfo,
	})
}

func (s *Server) GetDocumentByID(c *gin.Context) {
	resp, err := s.documentSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteDocument(c *gin.Context) {
	if err := s.documentSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) GetDocumentPDF(c *gin.Context) {
	file, err := s.renderSvc.DocumentPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	writeFile(c, file)
}

func (s *Server) ExportDocuments(c *gin.Context) {
	documentType := numberingdomain.DocumentType(strings.TrimSpace(c.Query("type")))

	file, err := s.exportSvc.Register(c.Request.Context(), documentType)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	writeFile(c, file)
}

func writeFile(c *gin.Context, file render.File) {
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
