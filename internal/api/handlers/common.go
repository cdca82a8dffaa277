package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/codyseavey/pricewatch/web/internal/logger"
	"github.com/codyseavey/pricewatch/web/internal/views"
)

// Display holds the presentation settings the page handlers share
type Display struct {
	Location    *time.Location
	RecentLimit int
	// Now is the clock used for relative times; nil means time.Now
	Now func() time.Time
}

func (d Display) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d Display) location() *time.Location {
	if d.Location == nil {
		return time.UTC
	}
	return d.Location
}

func newPage(c *gin.Context, title, nav string) views.Page {
	theme, _ := c.Cookie(views.ThemeCookie)
	return views.Page{
		Title: title,
		Nav:   nav,
		Theme: views.ParseTheme(theme),
		Toast: views.ToastFor(c.Query("notice")),
		Path:  returnPath(c.Request.URL),
	}
}

// returnPath is the current page without its one-shot notice
func returnPath(u *url.URL) string {
	q := u.Query()
	q.Del("notice")
	if len(q) == 0 {
		return u.Path
	}
	return u.Path + "?" + q.Encode()
}

func renderFragment(c *gin.Context, name string, data any) {
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, name, data)
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// readFailed logs a read that ended in error. The view falls back to its
// empty state.
func readFailed(c *gin.Context, what string, err error) {
	if err == nil {
		return
	}
	logger.FromGin(c).Warn("read failed", zap.String("query", what), zap.Error(err))
}

func parseID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// parsePrice reads an optional won amount from a form field. Digit grouping
// commas are accepted.
func parsePrice(s string) (*int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, strconv.ErrRange
	}
	return &n, nil
}

// safeReturn only allows same-site relative paths
func safeReturn(s string) string {
	if !strings.HasPrefix(s, "/") || strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/\\") {
		return "/"
	}
	return s
}
