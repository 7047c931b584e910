package auth

import (
	"errors"
	"net/http"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
	oauth2errors "github.com/go-oauth2/oauth2/v4/errors"
)

// TokenResponse is the RFC 6749 access token response
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// HandleToken handles the token endpoint for both client credentials and authorization code grants
// @Summary Token Endpoint
// @Description Obtain an access token using client credentials or authorization code grant
// @Tags OAuth2
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Grant type: client_credentials or authorization_code"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string true "Client Secret"
// @Param code formData string false "Authorization code (required for authorization_code grant)"
// @Param redirect_uri formData string false "Redirect URI (required for authorization_code grant)"
// @Param code_verifier formData string false "PKCE verifier"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} models.OAuth2Error
// @Failure 401 {object} models.OAuth2Error
// @Router /oauth/token [post]
func (o *OAuthService) HandleToken(c *gin.Context) {
	grant := oauth2.GrantType(c.PostForm("grant_type"))

	var req *oauth2.TokenGenerateRequest
	switch grant {
	case oauth2.ClientCredentials:
		req = &oauth2.TokenGenerateRequest{}
	case oauth2.AuthorizationCode:
		req = &oauth2.TokenGenerateRequest{
			Code:         c.PostForm("code"),
			RedirectURI:  c.PostForm("redirect_uri"),
			CodeVerifier: c.PostForm("code_verifier"),
		}
		if req.Code == "" {
			c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidRequest, "code is required"))
			return
		}
	default:
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrUnsupportedGrantType, "Supported grants: client_credentials, authorization_code"))
		return
	}

	req.ClientID = c.PostForm("client_id")
	req.ClientSecret = c.PostForm("client_secret")

	var client models.OAuthClient
	if err := o.db.WithContext(c.Request.Context()).Where("id = ?", req.ClientID).First(&client).Error; err != nil {
		c.JSON(http.StatusUnauthorized, models.NewOAuth2Error(models.ErrInvalidClient, "Client authentication failed"))
		return
	}
	if !client.AllowsGrant(grant.String()) {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrUnauthorizedClient, "Client is not registered for "+grant.String()))
		return
	}
	if grant == oauth2.ClientCredentials {
		req.Scope = client.Scopes
	}

	// The manager verifies the secret and consumes the code
	ti, err := o.server.Manager.GenerateAccessToken(c.Request.Context(), grant, req)
	if err != nil {
		o.respondTokenError(c, client.ID, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: ti.GetAccess(),
		TokenType:   "Bearer",
		ExpiresIn:   int64(ti.GetAccessExpiresIn().Seconds()),
		Scope:       ti.GetScope(),
	})
}

func (o *OAuthService) respondTokenError(c *gin.Context, clientID string, err error) {
	entry := log.WithError(err).WithField("client_id", clientID)
	switch {
	case errors.Is(err, oauth2errors.ErrInvalidClient):
		entry.Warn("Client authentication failed")
		c.JSON(http.StatusUnauthorized, models.NewOAuth2Error(models.ErrInvalidClient, "Client authentication failed"))
	case errors.Is(err, oauth2errors.ErrInvalidAuthorizeCode),
		errors.Is(err, oauth2errors.ErrInvalidRedirectURI),
		errors.Is(err, oauth2errors.ErrMissingCodeVerifier),
		errors.Is(err, oauth2errors.ErrInvalidCodeChallenge):
		entry.Warn("Authorization grant rejected")
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidGrant, err.Error()))
	case errors.Is(err, models.ErrRecordNotFound):
		entry.Warn("Token requested for unknown user")
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidGrant, "The client owner no longer exists"))
	default:
		entry.Error("Token generation failed")
		c.JSON(http.StatusInternalServerError, models.NewOAuth2Error("server_error", "token_generation_failed"))
	}
}
