package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/pricewatch/web/internal/views"
)

const themeCookieMaxAge = 365 * 24 * 60 * 60

// ToggleTheme flips the light/dark cookie and returns to the posted page
func ToggleTheme(c *gin.Context) {
	current, _ := c.Cookie(views.ThemeCookie)
	next := views.ParseTheme(current).Toggle()

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(views.ThemeCookie, string(next), themeCookieMaxAge, "/", "", false, true)
	redirect(c, safeReturn(c.PostForm("return")))
}
