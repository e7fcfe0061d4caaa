package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	csdomain "github.com/smallbiznis/orderdesk/internal/clientstate/domain"
)

// Credential history is per browser client and needs no session: the login
// page reads it to offer autofill.
func (s *Server) ListCredentials(c *gin.Context) {
	history, err := s.credentials.History(c.Request.Context(), clientID(c), c.Param("role"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if history == nil {
		history = []csdomain.Credential{}
	}
	c.JSON(http.StatusOK, gin.H{"data": history})
}

func (s *Server) RemoveCredential(c *gin.Context) {
	history, err := s.credentials.Remove(c.Request.Context(), clientID(c), c.Param("role"), c.Param("email"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if history == nil {
		history = []csdomain.Credential{}
	}
	c.JSON(http.StatusOK, gin.H{"data": history})
}

func (s *Server) ClearCredentials(c *gin.Context) {
	if err := s.credentials.Clear(c.Request.Context(), clientID(c), c.Param("role")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
