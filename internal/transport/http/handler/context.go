package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"gopherai-docqa/internal/app"
	"gopherai-docqa/internal/transport/http/middleware"
)

func getUserIDFromContext(c *gin.Context) (uint, bool) {
	userIDAny, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := userIDAny.(uint)
	return userID, ok && userID != 0
}

func actorFromContext(c *gin.Context) (app.Actor, bool) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return app.Actor{}, false
	}
	return app.Actor{UserID: userID, Role: c.GetString(middleware.ContextRoleKey)}, true
}

func parseUintParam(c *gin.Context, key string) (uint, bool) {
	u, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || u == 0 {
		return 0, false
	}
	return uint(u), true
}
