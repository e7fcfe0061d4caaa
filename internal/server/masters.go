package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	masterdatadomain "github.com/smallbiznis/orderdesk/internal/masterdata/domain"
)

func kindParam(c *gin.Context) (masterdatadomain.Kind, error) {
	kind, ok := masterdatadomain.ParseKind(c.Param("kind"))
	if !ok {
		return "", masterdatadomain.ErrInvalidKind
	}
	return kind, nil
}

func (s *Server) ListMasters(c *gin.Context) {
	kind, err := kindParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	entries, err := s.masterdataSvc.List(c.Request.Context(), clientID(c), kind)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if entries == nil {
		entries = []masterdatadomain.Entry{}
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (s *Server) GetMaster(c *gin.Context) {
	kind, err := kindParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	entry, err := s.masterdataSvc.Get(c.Request.Context(), clientID(c), kind, strings.TrimSpace(c.Param("code")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entry})
}

func (s *Server) CreateMaster(c *gin.Context) {
	kind, err := kindParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.masterdataSvc.Create(c.Request.Context(), clientID(c), kind, fields)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateMaster(c *gin.Context) {
	kind, err := kindParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.masterdataSvc.Update(c.Request.Context(), clientID(c), kind, strings.TrimSpace(c.Param("code")), fields)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
