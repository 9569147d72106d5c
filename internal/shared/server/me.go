package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-review/internal/shared/server/middleware"
	"resume-review/internal/shared/server/respond"
)

// registerMeRoutes attaches the /me endpoint.
func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", meHandler)
}

// meHandler reports the signed-in principal. username falls back from the
// display name to the email and finally to the user id.
func meHandler(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}

	username := middleware.UserNameFromContext(c)
	if username == "" {
		username = middleware.UserEmailFromContext(c)
	}
	if username == "" {
		username = userID
	}

	response := gin.H{
		"userId":   userID,
		"username": username,
	}
	if picture := middleware.UserPictureFromContext(c); picture != "" {
		response["picture"] = picture
	}

	respond.JSON(c, http.StatusOK, response)
}
