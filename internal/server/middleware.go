package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/colorvibe/internal/app"
)

const controllerKey = "controller"

// securityHeaders adds security headers to all responses.
func securityHeaders() gin.HandlerFunc {
	// Preview fonts come from Google Fonts; styles are inline.
	csp := "default-src 'self'; " +
		"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com; " +
		"font-src 'self' https://fonts.gstatic.com; " +
		"img-src 'self' data:; " +
		"form-action 'self'; " +
		"frame-ancestors 'none'"

	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "same-origin")
		c.Header("Content-Security-Policy", csp)
		c.Next()
	}
}

// accessLog logs one line per request through hclog.
func accessLog(logger hclog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"bytes", c.Writer.Size(),
			"duration", time.Since(start),
			"client", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request", args...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", args...)
		default:
			logger.Debug("request", args...)
		}
	}
}

// sessions attaches the caller's Controller to the context, starting a new
// session and setting the cookie when the request has none.
func (s *Server) sessions() gin.HandlerFunc {
	name := s.cfg.Session.CookieName
	maxAge := int(s.cfg.Session.TTL / time.Second)

	return func(c *gin.Context) {
		id, _ := c.Cookie(name)
		sid, ctrl, created := s.store.GetOrCreate(id)
		if created || sid != id {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(name, sid, maxAge, "/", "", s.cfg.Session.SecureCookie, true)
		}
		c.Set(controllerKey, ctrl)
		c.Next()
	}
}

func controller(c *gin.Context) *app.Controller {
	return c.MustGet(controllerKey).(*app.Controller)
}
