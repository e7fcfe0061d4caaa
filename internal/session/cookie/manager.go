package cookie

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smallbiznis/orderdesk/internal/config"
)

const (
	DefaultCookieName = "_odcid"
	clientIDLifetime  = 365 * 24 * time.Hour
)

// Manager issues the opaque client id cookie that keys all per-client state.
type Manager struct {
	cookieName string
	secure     bool
}

func NewManager(cfg config.Config) *Manager {
	return &Manager{
		cookieName: DefaultCookieName,
		secure:     cfg.AuthCookieSecure,
	}
}

func (m *Manager) CookieName() string {
	return m.cookieName
}

// ClientID reads the client id, rejecting anything that is not a uuid.
func (m *Manager) ClientID(c *gin.Context) (string, bool) {
	value, err := c.Cookie(m.cookieName)
	if err != nil {
		return "", false
	}
	value = strings.TrimSpace(value)
	if _, err := uuid.Parse(value); err != nil {
		return "", false
	}
	return value, true
}

// Ensure returns the client id, issuing a new cookie when there is none.
func (m *Manager) Ensure(c *gin.Context) string {
	if id, ok := m.ClientID(c); ok {
		return id
	}
	id := uuid.NewString()
	m.Set(c, id, time.Now().Add(clientIDLifetime))
	return id
}

func (m *Manager) Set(c *gin.Context, value string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, value, maxAge, "/", "", m.secure, true)
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
}
