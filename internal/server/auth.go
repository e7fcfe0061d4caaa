package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	sessiondomain "github.com/smallbiznis/orderdesk/internal/session/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleType string `json:"role_type"`
}

// Login exchanges credentials and resolves the profile for the chosen role
// type. Rejections come back as 200 with success=false and a message.
func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.sessions.Login(c.Request.Context(), clientID(c), sessiondomain.LoginRequest{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
		RoleType: strings.TrimSpace(req.RoleType),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type restoreRequest struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
}

// Restore is the identity provider's auth-state callback.
func (s *Server) Restore(c *gin.Context) {
	var req restoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sess, err := s.sessions.Restore(c.Request.Context(), clientID(c), sessiondomain.RestoreRequest{
		IDToken:      strings.TrimSpace(req.IDToken),
		RefreshToken: strings.TrimSpace(req.RefreshToken),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sessionView(sess)})
}

func (s *Server) Logout(c *gin.Context) {
	if err := s.sessions.Logout(c.Request.Context(), clientID(c)); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"state": sessiondomain.StateAnonymous}})
}

func (s *Server) CurrentSession(c *gin.Context) {
	sess, err := s.sessions.Current(c.Request.Context(), clientID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sessionView(sess)})
}

type signupAdminRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	MobileNumber string `json:"mobile_number"`
}

func (s *Server) SignupAdmin(c *gin.Context) {
	var req signupAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.sessions.SignupAdmin(c.Request.Context(), sessiondomain.SignupAdminRequest{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		Password:     req.Password,
		MobileNumber: strings.TrimSpace(req.MobileNumber),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type provisionRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Updates  map[string]any `json:"updates"`
}

// ProvisionAccount creates the login for a distributor or corporate record.
func (s *Server) ProvisionAccount(c *gin.Context) {
	var req provisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.sessions.ProvisionAccount(c.Request.Context(), sessiondomain.ProvisionRequest{
		Kind:     strings.TrimSpace(c.Param("kind")),
		Code:     strings.TrimSpace(c.Param("code")),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
		Updates:  req.Updates,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type sessionResponse struct {
	State    sessiondomain.State    `json:"state"`
	Role     sessiondomain.Role     `json:"role,omitempty"`
	RoleType sessiondomain.RoleType `json:"role_type,omitempty"`
	Email    string                 `json:"email,omitempty"`
	Profile  sessiondomain.Profile  `json:"profile,omitempty"`
	Landing  string                 `json:"landing,omitempty"`
}

func sessionView(sess sessiondomain.Session) sessionResponse {
	resp := sessionResponse{
		State:    sess.State,
		Role:     sess.Role,
		RoleType: sess.RoleType,
		Email:    sess.Email,
		Profile:  sess.Profile,
	}
	if sess.State == sessiondomain.StateResolved {
		resp.Landing = sessiondomain.Landing(sess.Role)
	}
	return resp
}
