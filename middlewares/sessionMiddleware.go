package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/models"
	"github.com/onyangohw/hardware_backend/utils"
)

// SessionMiddleware resolves the opaque session token into the full request
// identity: username, business, unit, role. Requests without a token pass
// through; protected routes reject them downstream.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get("token")
		if token == "" {
			c.Next()
			return
		}
		username, exists, err := config.GetRedisValue("Token:" + token)
		if err != nil || !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		user := models.User{}
		cached, err := config.GetRedisObject("User:"+username, &user)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		if !cached {
			db := config.GetDB()
			if err := db.WithContext(c.Request.Context()).Model(&models.User{}).
				Where("username = ?", username).Take(&user).Error; err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				c.Abort()
				return
			}
			if err := config.SetRedisObject("User:"+username, &user, 0); err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				c.Abort()
				return
			}
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetUsernameInContext(ctx, username)
		ctx = utils.SetBusinessIdInContext(ctx, user.BusinessId)
		ctx = utils.SetUserIdInContext(ctx, user.ID)
		ctx = utils.SetUserNameInContext(ctx, user.Name)
		ctx = utils.SetRoleInContext(ctx, string(user.Role))
		if user.UnitId != nil {
			ctx = utils.SetUnitIdInContext(ctx, *user.UnitId)
		}
		if user.Role == models.UserRoleAdmin {
			ctx = utils.SetIsAdminInContext(ctx, true)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
