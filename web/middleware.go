package web

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"notevault/models"
	"notevault/web/api"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
)

// CorsMiddleware handles CORS headers for cross-origin requests
func CorsMiddleware(c rweb.Context) error {
	c.Response().SetHeader("Access-Control-Allow-Origin", "*")
	c.Response().SetHeader("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	c.Response().SetHeader("Access-Control-Allow-Headers",
		"Content-Type, Authorization, X-Requested-With, "+api.BodyEncodingHeader)

	if c.Request().Method() == "OPTIONS" {
		c.SetStatus(http.StatusOK)
		return nil
	}

	return c.Next()
}

// JWTAuthMiddleware validates the access token and marks the request as
// authenticated. The token is read from a Bearer header, falling back to the
// browser cookie. It never blocks; handlers decide what needs authentication.
func JWTAuthMiddleware(gate *models.AccessGate) rweb.Handler {
	return func(c rweb.Context) error {
		token := ""
		if authHeader := c.Request().Header("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		} else if cookie, err := c.GetCookie(api.TokenCookie); err == nil {
			token = cookie
		}

		if token == "" {
			c.Set("authenticated", false)
			return c.Next()
		}

		claims, err := gate.ValidateToken(token)
		if err != nil {
			// Invalid tokens are not logged individually
			c.Set("authenticated", false)
			return c.Next()
		}

		c.Set("session_id", claims.SessionID)
		c.Set("authenticated", true)
		return c.Next()
	}
}

// SecurityHeadersMiddleware adds security headers to responses
func SecurityHeadersMiddleware(c rweb.Context) error {
	c.Response().SetHeader("X-Content-Type-Options", "nosniff")
	c.Response().SetHeader("X-Frame-Options", "DENY")
	c.Response().SetHeader("Referrer-Policy", "strict-origin-when-cross-origin")

	csp := []string{
		"default-src 'self'",
		"script-src 'self'",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data:",
		"connect-src 'self'",
	}
	c.Response().SetHeader("Content-Security-Policy", strings.Join(csp, "; "))

	return c.Next()
}

// LoginRateLimit limits password attempts per client address.
func LoginRateLimit(attemptsPerMinute int, next rweb.Handler) rweb.Handler {
	type visitor struct {
		windowStart time.Time
		count       int
	}

	var mu sync.Mutex
	visitors := make(map[string]*visitor)

	return func(c rweb.Context) error {
		ip := c.Request().Header("X-Forwarded-For")
		if ip == "" {
			ip = c.Request().Header("X-Real-IP")
		}
		if ip == "" {
			ip = "unknown"
		}

		now := time.Now()
		mu.Lock()
		for addr, v := range visitors {
			if now.Sub(v.windowStart) > time.Minute {
				delete(visitors, addr)
			}
		}
		v, ok := visitors[ip]
		if !ok {
			v = &visitor{windowStart: now}
			visitors[ip] = v
		}
		v.count++
		exceeded := v.count > attemptsPerMinute
		mu.Unlock()

		if exceeded {
			logger.Info("Login rate limit exceeded", "ip", ip)
			c.SetStatus(http.StatusTooManyRequests)
			return c.WriteJSON(api.APIResponse{Success: false, Error: "too many attempts, try again later"})
		}
		return next(c)
	}
}

// LoggingMiddleware provides detailed request logging
func LoggingMiddleware(c rweb.Context) error {
	start := time.Now()

	logger.Debug("Request started",
		"method", c.Request().Method(),
		"path", c.Request().Path(),
	)

	err := c.Next()

	logger.Debug("Request completed",
		"method", c.Request().Method(),
		"path", c.Request().Path(),
		"duration", time.Since(start),
		"error", err,
	)

	return err
}
