package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/services"
	"github.com/gin-gonic/gin"
)

type AdminController struct {
	users   services.UserService
	reports services.ReportService
}

func NewAdminController(users services.UserService, reports services.ReportService) *AdminController {
	return &AdminController{users: users, reports: reports}
}

// Report godoc
// @Summary Generate the logistics report
// @Description Summarises the latest orders and asks the report model for a written briefing
// @Tags admin
// @Produce json
// @Success 200 {object} services.Report
// @Failure 503 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/report [post]
func (ac *AdminController) Report(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	report, err := ac.reports.Generate(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListUsers godoc
// @Summary List accounts
// @Tags admin
// @Produce json
// @Success 200 {array} models.User
// @Security BearerAuth
// @Router /api/v1/protected/admin/users [get]
func (ac *AdminController) ListUsers(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	users, err := ac.users.ListUsers(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// SetUserStatus godoc
// @Summary Suspend or reactivate an account
// @Description The account owner receives an alert in their mailbox
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param status body object{status=string} true "Active or Suspended"
// @Success 200 {object} models.User
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/users/{id}/status [put]
func (ac *AdminController) SetUserStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req struct {
		Status models.UserStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := ac.users.SetStatus(c.Request.Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
