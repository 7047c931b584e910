package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type OAuthClient struct {
	ID          string `gorm:"primaryKey"`
	Secret      string `gorm:"not null" json:"-"`
	Name        string
	Domain      string
	UserID      string `gorm:"index"` // owner; client_credentials tokens act as this user
	Scopes      string // space-separated
	GrantTypes  string // space-separated, e.g. "authorization_code client_credentials"
	RedirectURI string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (OAuthClient) TableName() string {
	return "oauth_clients"
}

// GetID implements oauth2.ClientInfo
func (c *OAuthClient) GetID() string { return c.ID }

// GetSecret implements oauth2.ClientInfo
func (c *OAuthClient) GetSecret() string { return c.Secret }

// GetDomain implements oauth2.ClientInfo
func (c *OAuthClient) GetDomain() string { return c.Domain }

// IsPublic implements oauth2.ClientInfo
func (c *OAuthClient) IsPublic() bool { return false }

// GetUserID implements oauth2.ClientInfo
func (c *OAuthClient) GetUserID() string { return c.UserID }

// VerifyPassword compares a plain secret against the stored bcrypt hash.
// It makes the client an oauth2.ClientPasswordVerifier.
func (c *OAuthClient) VerifyPassword(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.Secret), []byte(secret)) == nil
}

// AllowsGrant reports whether the client was registered for the grant type
func (c *OAuthClient) AllowsGrant(grant string) bool {
	for _, g := range strings.Fields(c.GrantTypes) {
		if g == grant {
			return true
		}
	}
	return false
}
