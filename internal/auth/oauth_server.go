package auth

import (
	"github.com/franciscosanchezn/gin-food-api/internal/config"
	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

var log = config.NewLogger()

type OAuthService struct {
	server *server.Server
	db     *gorm.DB
}

func NewOAuthService(db *gorm.DB, jwtSecret string) *OAuthService {
	manager := manage.NewDefaultManager()
	manager.SetAuthorizeCodeExp(authorizeCodeTTL)

	// Access tokens carry uid and role so the API can authorise without a lookup
	manager.MapAccessGenerate(NewCustomJWTAccessGenerate([]byte(jwtSecret), jwt.SigningMethodHS256, db))

	tokenStore := NewGormTokenStore(db)
	manager.MustTokenStorage(tokenStore, nil)

	clientStore := NewGormClientStore(db)
	manager.MapClientStorage(clientStore)

	srv := server.NewDefaultServer(manager)
	srv.SetAllowGetAccessRequest(true)
	srv.SetClientInfoHandler(server.ClientFormHandler)
	srv.SetAllowedGrantType(oauth2.AuthorizationCode, oauth2.ClientCredentials)

	o := &OAuthService{
		server: srv,
		db:     db,
	}
	srv.SetClientAuthorizedHandler(o.clientAllowsGrant)
	return o
}

func (o *OAuthService) GetServer() *server.Server {
	return o.server
}

// clientAllowsGrant rejects grants the client was not registered for
func (o *OAuthService) clientAllowsGrant(clientID string, grant oauth2.GrantType) (bool, error) {
	var client models.OAuthClient
	if err := o.db.Where("id = ?", clientID).First(&client).Error; err != nil {
		return false, nil
	}
	return client.AllowsGrant(grant.String()), nil
}
