package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/orderdesk/internal/authorization"
)

var dashboardObjects = map[string]string{
	"admin":       authorization.ObjectAdminDashboard,
	"distributor": authorization.ObjectDistributorDashboard,
	"corporate":   authorization.ObjectCorporateDashboard,
}

// Dashboard answers whether the caller may open a role dashboard and, if so,
// returns the profile it renders.
func (s *Server) Dashboard(c *gin.Context) {
	object, ok := dashboardObjects[strings.ToLower(strings.TrimSpace(c.Param("name")))]
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}
	sess, ok := sessionFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if err := s.authzSvc.Authorize(c.Request.Context(), sess.Role, object, authorization.ActionView); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sessionView(sess)})
}
