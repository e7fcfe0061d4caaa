package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Profile is the role-specific backend record of the signed-in identity.
type Profile map[string]any

func (p Profile) String(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// State returns the registered state (jurisdiction) of the profile.
func (p Profile) State() string {
	return strings.TrimSpace(p.String("state"))
}

func (p Profile) Clone() Profile {
	if p == nil {
		return nil
	}
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Session is the authenticated actor of one browser client.
type Session struct {
	ClientID  string    `json:"-"`
	State     State     `json:"state"`
	Role      Role      `json:"role,omitempty"`
	RoleType  RoleType  `json:"role_type,omitempty"`
	Profile   Profile   `json:"profile,omitempty"`
	UID       string    `json:"uid,omitempty"`
	Email     string    `json:"email,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s Session) Authenticated() bool {
	return s.State == StateResolved || s.State == StateUnresolved
}

func (s Session) Clone() Session {
	s.Profile = s.Profile.Clone()
	return s
}

// Resolution is the outcome of resolving an identity to a profile.
type Resolution struct {
	Role     Role
	RoleType RoleType
	Profile  Profile
	Hinted   bool
	Calls    int
}

func (r Resolution) Found() bool {
	return r.Role != RoleUnknown && len(r.Profile) > 0
}

type LoginResult struct {
	Success  bool     `json:"success"`
	Role     Role     `json:"role,omitempty"`
	RoleType RoleType `json:"role_type,omitempty"`
	Profile  Profile  `json:"profile,omitempty"`
	Landing  string   `json:"landing,omitempty"`
	Message  string   `json:"message,omitempty"`
}

type SignupResult struct {
	Success      bool   `json:"success"`
	Role         string `json:"role,omitempty"`
	Message      string `json:"message,omitempty"`
	AffectedRows int64  `json:"affected_rows,omitempty"`
}

type LoginRequest struct {
	Email    string
	Password string
	RoleType string
}

type RestoreRequest struct {
	IDToken      string
	RefreshToken string
}

type SignupAdminRequest struct {
	Username     string
	Email        string
	Password     string
	MobileNumber string
}

type ProvisionRequest struct {
	Kind     string
	Code     string
	Email    string
	Password string
	Updates  map[string]any
}
