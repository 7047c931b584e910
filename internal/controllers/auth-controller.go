package controllers

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-food-api/internal/auth"
	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const devTokenTTL = 24 * time.Hour

type AuthController struct {
	userService   services.UserService
	clientService services.ClientService
	jwtSecret     []byte
}

func NewAuthController(userService services.UserService, clientService services.ClientService, jwtSecret string) *AuthController {
	return &AuthController{
		userService:   userService,
		clientService: clientService,
		jwtSecret:     []byte(jwtSecret),
	}
}

// Register godoc
// @Summary Create a customer account
// @Description Creates the account and a client_credentials OAuth client for it. The secret is only shown once.
// @Tags auth
// @Accept json
// @Produce json
// @Param account body object{email=string,name=string,phone=string} true "Account details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Router /api/v1/auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Name  string `json:"name" binding:"required"`
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user := &models.User{
		Email: req.Email,
		Name:  req.Name,
		Phone: req.Phone,
	}
	if err := ac.userService.CreateUser(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	secret, hash, err := newClientSecret()
	if err != nil {
		respondError(c, err)
		return
	}
	client := &models.OAuthClient{
		ID:         uuid.NewString(),
		Secret:     hash,
		Name:       req.Name + " default client",
		UserID:     user.ID,
		GrantTypes: "client_credentials",
	}
	if err := ac.clientService.CreateClient(c.Request.Context(), client); err != nil {
		respondError(c, err)
		return
	}

	log.WithField("user_id", user.ID).Info("Account registered")
	c.JSON(http.StatusCreated, gin.H{
		"user":          user,
		"client_id":     client.ID,
		"client_secret": secret,
	})
}

// Me godoc
// @Summary Get my account
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/me [get]
func (ac *AuthController) Me(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	user, err := ac.userService.GetUserByID(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// TestToken godoc
// @Summary Development token
// @Description Issues a 24h token for an existing account. Only mounted outside production.
// @Tags auth
// @Produce json
// @Param user query string false "User ID, defaults to customer"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.APIError
// @Router /test-token [get]
func (ac *AuthController) TestToken(c *gin.Context) {
	userID := c.DefaultQuery("user", "customer")
	user, err := ac.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := auth.IssueDevToken(ac.jwtSecret, user.ID, user.Role(), devTokenTTL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"type":       "Bearer",
		"role":       user.Role(),
		"expires_in": int64(devTokenTTL.Seconds()),
	})
}
