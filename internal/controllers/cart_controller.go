package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-food-api/internal/cart"
	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/services"
	"github.com/gin-gonic/gin"
)

// CartView is the cart as returned to the client
type CartView struct {
	Lines          []models.CartLine `json:"lines"`
	TotalItemCount int               `json:"totalItemCount"`
	Subtotal       int64             `json:"subtotal"`
}

func viewCart(c *cart.Cart) CartView {
	lines := c.Snapshot()
	if lines == nil {
		lines = []models.CartLine{}
	}
	return CartView{
		Lines:          lines,
		TotalItemCount: c.TotalItemCount(),
		Subtotal:       c.Subtotal(),
	}
}

type CartController struct {
	sessions *cart.Sessions
	catalog  services.CatalogService
}

func NewCartController(sessions *cart.Sessions, catalog services.CatalogService) *CartController {
	return &CartController{sessions: sessions, catalog: catalog}
}

// GetCart godoc
// @Summary Get the cart
// @Tags cart
// @Produce json
// @Success 200 {object} CartView
// @Security BearerAuth
// @Router /api/v1/protected/cart [get]
func (cc *CartController) GetCart(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, viewCart(cc.sessions.Get(actor.UserID)))
}

// AddLine godoc
// @Summary Add a configured item
// @Description An identical configuration already in the cart has its quantity increased
// @Tags cart
// @Accept json
// @Produce json
// @Param configuration body models.ItemConfiguration true "Configuration"
// @Success 201 {object} CartView
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/cart [post]
func (cc *CartController) AddLine(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var cfg models.ItemConfiguration
	if err := c.ShouldBindJSON(&cfg); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := cc.catalog.GetItem(c.Request.Context(), cfg.FoodID)
	if err != nil {
		respondError(c, err)
		return
	}

	userCart := cc.sessions.Get(actor.UserID)
	if _, err := userCart.AddLine(cfg, item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, viewCart(userCart))
}

// SetQuantity godoc
// @Summary Change a line's quantity
// @Description Quantities below one are raised to one; more than 99 is rejected
// @Tags cart
// @Accept json
// @Produce json
// @Param fingerprint path string true "Line fingerprint"
// @Param quantity body object{quantity=int} true "New quantity"
// @Success 200 {object} CartView
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/cart/lines/{fingerprint} [put]
func (cc *CartController) SetQuantity(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userCart := cc.sessions.Get(actor.UserID)
	if _, err := userCart.SetQuantity(c.Param("fingerprint"), req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewCart(userCart))
}

// RemoveLine godoc
// @Summary Remove a line
// @Tags cart
// @Produce json
// @Param fingerprint path string true "Line fingerprint"
// @Success 200 {object} CartView
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/cart/lines/{fingerprint} [delete]
func (cc *CartController) RemoveLine(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	userCart := cc.sessions.Get(actor.UserID)
	if err := userCart.RemoveLine(c.Param("fingerprint")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewCart(userCart))
}

// ClearCart godoc
// @Summary Empty the cart
// @Tags cart
// @Success 204
// @Security BearerAuth
// @Router /api/v1/protected/cart [delete]
func (cc *CartController) ClearCart(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	cc.sessions.Get(actor.UserID).Clear()
	c.Status(http.StatusNoContent)
}
