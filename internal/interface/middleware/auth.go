package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/shopora/user-service/pkg/helpers"
	"github.com/shopora/user-service/pkg/response"
)

// Auth validates the session token cookie and ensures an active session
// exists in Redis. It sets userID, userName and userEmail in the Gin
// context on success.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing session token", nil)
			return
		}
		claims, err := jwt.ParseSessionToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid session token", nil)
			return
		}

		key := "user:session:" + claims.UserID
		data, err := rdb.HGetAll(c.Request.Context(), key).Result()
		if err != nil || len(data) == 0 {
			response.Abort(c, http.StatusUnauthorized, "session not found", nil)
			return
		}

		c.Set("userID", data["user_id"])
		c.Set("userName", data["name"])
		c.Set("userEmail", data["email"])
		c.Next()
	}
}
