package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Keys persisted per client. They mirror what the browser application kept
// in local storage so an exported state can be loaded back by the SPA.
const (
	KeyUserType     = "userType"
	KeyUserRole     = "userRole"
	KeyUserData     = "userData"
	KeyIDToken      = "idToken"
	KeyRefreshToken = "refreshToken"

	credentialHistoryPrefix = "credentials_history_"
)

// CredentialHistoryKey returns the namespaced history key for role.
func CredentialHistoryKey(role string) string {
	return credentialHistoryPrefix + strings.ToLower(strings.TrimSpace(role))
}

// Entry is one persisted key of one client. Values are JSON documents.
type Entry struct {
	ID        snowflake.ID   `gorm:"primaryKey"`
	ClientID  string         `gorm:"column:client_id;type:varchar(64);not null;uniqueIndex:ux_client_state_key"`
	Key       string         `gorm:"column:state_key;type:varchar(128);not null;uniqueIndex:ux_client_state_key"`
	Value     datatypes.JSON `gorm:"column:value;not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

func (Entry) TableName() string { return "client_state_entries" }

// Credential is one login-form autofill suggestion. Passwords are never kept.
type Credential struct {
	Email     string    `json:"email"`
	Username  string    `json:"username,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
