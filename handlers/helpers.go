package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/onyangohw/hardware_backend/models"
	"github.com/onyangohw/hardware_backend/utils"
)

// bindJSON decodes the request body and writes the 400 response itself on
// failure. Binding-tag violations come back as a field-keyed map.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, utils.ProcessValidationErrors(err))
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return false
	}
	return true
}

// idParam parses the :id path segment. On failure it writes the 400
// response itself and the handler must return.
func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func pageParams(c *gin.Context) (*int, *string) {
	var limit *int
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = &n
		}
	}
	var after *string
	if raw := c.Query("after"); raw != "" {
		after = &raw
	}
	return limit, after
}

func strQuery(c *gin.Context, name string) *string {
	if raw := c.Query(name); raw != "" {
		return &raw
	}
	return nil
}

func intQuery(c *gin.Context, name string) *int {
	if raw := c.Query(name); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			return &n
		}
	}
	return nil
}

func boolQuery(c *gin.Context, name string) *bool {
	if raw := c.Query(name); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			return &b
		}
	}
	return nil
}

// dateQuery accepts the date-only form used by list filters. A malformed
// value writes the 400 response; ok=false means the handler must return.
func dateQuery(c *gin.Context, name string) (*models.MyDateString, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be YYYY-MM-DD"})
		return nil, false
	}
	d := models.MyDateString(t)
	return &d, true
}

// requireAuth rejects requests whose token did not resolve to a session.
func requireAuth(c *gin.Context) bool {
	if _, ok := utils.GetUsernameFromContext(c.Request.Context()); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}
	return true
}

// requireRoles gates an endpoint to the named roles. Admin always passes.
func requireRoles(c *gin.Context, roles ...models.UserRole) bool {
	if !requireAuth(c) {
		return false
	}
	role, ok := utils.GetRoleFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return false
	}
	if models.UserRole(role) == models.UserRoleAdmin {
		return true
	}
	for _, r := range roles {
		if models.UserRole(role) == r {
			return true
		}
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	return false
}

func requireAdmin(c *gin.Context) bool {
	return requireRoles(c)
}

// Shop-side finance actions: approving material requests, rejecting them,
// and confirming that workshop cash physically arrived.
var shopFinanceRoles = []models.UserRole{
	models.UserRoleOwner,
	models.UserRoleManager,
	models.UserRoleStorekeeper,
}

// Workshop-side actions: paying transfers and recording repair payments.
var workshopRoles = []models.UserRole{
	models.UserRoleOwner,
	models.UserRoleManager,
	models.UserRoleTechnician,
}
