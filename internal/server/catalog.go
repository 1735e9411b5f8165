package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallbiznis/docflow/internal/catalog/domain"
)

// registerRegistry mounts list, get, create, update and delete routes for
// one catalog list.
func registerRegistry[T any](api *gin.RouterGroup, path string, reg catalogdomain.Registry[T], view, manage gin.HandlerFunc) {
	api.GET(path, view, func(c *gin.Context) {
		resp, err := reg.List(c.Request.Context())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if resp == nil {
			resp = []T{}
		}
		c.JSON(http.StatusOK, gin.H{"data": resp})
	})

	api.GET(path+"/:id", view, func(c *gin.Context) {
		resp, err := reg.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": resp})
	})

	api.POST(path, manage, func(c *gin.Context) {
		var req T
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		resp, err := reg.Create(c.Request.Context(), req)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": resp})
	})

	api.PUT(path+"/:id", manage, func(c *gin.Context) {
		var req T
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		resp, err := reg.Update(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": resp})
	})

	api.DELETE(path+"/:id", manage, func(c *gin.Context) {
		if err := reg.Delete(c.Request.Context(), c.Param("id")); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func (s *Server) SetDefaultTemplate(c *gin.Context) {
	resp, err := s.catalogSvc.SetDefaultTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
