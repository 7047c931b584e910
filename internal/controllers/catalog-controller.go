package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/services"
	"github.com/gin-gonic/gin"
)

// CatalogController handles HTTP requests related to the menu
type CatalogController interface {
	// ListItems retrieves the menu
	ListItems(c *gin.Context)
	// GetItem retrieves a menu item by its ID
	GetItem(c *gin.Context)
	// PriceItem quotes a configuration of an item
	PriceItem(c *gin.Context)
	// CreateItem adds an item to the menu
	CreateItem(c *gin.Context)
	// UpdateItem partially updates a menu item
	UpdateItem(c *gin.Context)
	// DeleteItem removes a menu item
	DeleteItem(c *gin.Context)
}

type catalogController struct {
	service services.CatalogService
}

// NewCatalogController creates a new instance of CatalogController
func NewCatalogController(service services.CatalogService) CatalogController {
	return &catalogController{service: service}
}

// ListItems godoc
// @Summary Get the menu
// @Description Get every menu item, optionally filtered by category
// @Tags menu
// @Produce json
// @Param category query string false "Burger, Pizza, FriedFood, Chicken, Drinks or Dessert"
// @Success 200 {array} models.CatalogItem
// @Failure 400 {object} models.APIError
// @Router /api/v1/public/menu [get]
func (c *catalogController) ListItems(ctx *gin.Context) {
	items, err := c.service.ListItems(ctx.Request.Context(), models.Category(ctx.Query("category")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, items)
}

// GetItem godoc
// @Summary Get menu item by ID
// @Tags menu
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} models.CatalogItem
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/menu/{id} [get]
func (c *catalogController) GetItem(ctx *gin.Context) {
	item, err := c.service.GetItem(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, item)
}

// PriceItem godoc
// @Summary Price a configuration
// @Description Compute the unit price and fingerprint of a configuration without adding it to a cart
// @Tags menu
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param configuration body models.ItemConfiguration true "Configuration"
// @Success 200 {object} services.PriceQuote
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/menu/{id}/price [post]
func (c *catalogController) PriceItem(ctx *gin.Context) {
	var cfg models.ItemConfiguration
	if err := ctx.ShouldBindJSON(&cfg); err != nil {
		respondBindError(ctx, err)
		return
	}

	quote, err := c.service.PriceConfiguration(ctx.Request.Context(), ctx.Param("id"), cfg)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, quote)
}

// CreateItem godoc
// @Summary Create a menu item
// @Tags menu
// @Accept json
// @Produce json
// @Param item body models.CatalogItem true "Menu item"
// @Success 201 {object} models.CatalogItem
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/menu [post]
func (c *catalogController) CreateItem(ctx *gin.Context) {
	var item models.CatalogItem
	if err := ctx.ShouldBindJSON(&item); err != nil {
		respondBindError(ctx, err)
		return
	}

	created, err := c.service.CreateItem(ctx.Request.Context(), item)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, created)
}

// UpdateItem godoc
// @Summary Update a menu item
// @Description Fields left out of the payload keep their current value
// @Tags menu
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param item body models.CatalogItemPatch true "Fields to change"
// @Success 200 {object} models.CatalogItem
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/menu/{id} [put]
func (c *catalogController) UpdateItem(ctx *gin.Context) {
	var patch models.CatalogItemPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		respondBindError(ctx, err)
		return
	}

	updated, err := c.service.UpdateItem(ctx.Request.Context(), ctx.Param("id"), patch)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, updated)
}

// DeleteItem godoc
// @Summary Delete a menu item
// @Description Orders already placed keep their own copy of the item
// @Tags menu
// @Param id path string true "Item ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/menu/{id} [delete]
func (c *catalogController) DeleteItem(ctx *gin.Context) {
	if err := c.service.DeleteItem(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
