package auth

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/franciscosanchezn/gin-food-api/internal/middleware"
	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
	oauth2errors "github.com/go-oauth2/oauth2/v4/errors"
)

const authorizeCodeTTL = 10 * time.Minute

// HandleAuthorize issues an authorization code for the signed-in user
// @Summary Authorization endpoint
// @Description Issue an authorization code to a registered client on behalf of the caller
// @Tags OAuth2
// @Produce json
// @Security BearerAuth
// @Param response_type query string true "Must be code"
// @Param client_id query string true "Client ID"
// @Param redirect_uri query string false "Redirect URI registered for the client"
// @Param scope query string false "Requested scope"
// @Param state query string false "Opaque state echoed back"
// @Param code_challenge query string false "PKCE challenge"
// @Param code_challenge_method query string false "plain or S256"
// @Success 302
// @Failure 400 {object} models.OAuth2Error
// @Failure 401 {object} models.OAuth2Error
// @Router /oauth/authorize [get]
func (o *OAuthService) HandleAuthorize(c *gin.Context) {
	if c.Query("response_type") != "code" {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error("unsupported_response_type", "Only response_type=code is supported"))
		return
	}

	clientID := c.Query("client_id")
	var client models.OAuthClient
	if err := o.db.WithContext(c.Request.Context()).Where("id = ?", clientID).First(&client).Error; err != nil {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidClient, "Unknown client"))
		return
	}
	if !client.AllowsGrant(oauth2.AuthorizationCode.String()) {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrUnauthorizedClient, "Client is not registered for authorization_code"))
		return
	}

	redirectURI := c.Query("redirect_uri")
	if redirectURI == "" {
		redirectURI = client.RedirectURI
	}
	if redirectURI == "" || redirectURI != client.RedirectURI {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidRequest, "redirect_uri does not match the registered URI"))
		return
	}
	target, err := url.Parse(redirectURI)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidRequest, "redirect_uri is not a valid URL"))
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, models.NewOAuth2Error("authorization_required", "Sign in before authorising a client"))
		return
	}

	ti, err := o.server.Manager.GenerateAuthToken(c.Request.Context(), oauth2.Code, &oauth2.TokenGenerateRequest{
		ClientID:            client.ID,
		UserID:              userID,
		RedirectURI:         redirectURI,
		Scope:               c.Query("scope"),
		CodeChallenge:       c.Query("code_challenge"),
		CodeChallengeMethod: oauth2.CodeChallengeMethod(c.Query("code_challenge_method")),
	})
	if err != nil {
		if errors.Is(err, oauth2errors.ErrInvalidRedirectURI) {
			c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidRequest, "redirect_uri is outside the client domain"))
			return
		}
		log.WithError(err).WithField("client_id", client.ID).Error("Failed to issue authorization code")
		c.JSON(http.StatusInternalServerError, models.NewOAuth2Error("server_error", "Could not issue authorization code"))
		return
	}

	query := target.Query()
	query.Set("code", ti.GetCode())
	if state := c.Query("state"); state != "" {
		query.Set("state", state)
	}
	target.RawQuery = query.Encode()

	log.WithField("client_id", client.ID).WithField("user_id", userID).Info("Authorization code issued")
	c.Redirect(http.StatusFound, target.String())
}
