package auth

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const HeaderName = "X-API-Token"

// tokenFrom reads "Authorization: Bearer <token>" or the X-API-Token header.
func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	return strings.TrimSpace(c.GetHeader(HeaderName))
}

// Protect guards mutating routes with a shared API token checked against
// its bcrypt hash. An empty hash returns nil: routes stay open.
func Protect(hash string, log *logrus.Logger) gin.HandlerFunc {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return nil
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	// bcrypt is slow; remember the last accepted token
	var (
		mu   sync.Mutex
		last string
	)
	return func(c *gin.Context) {
		tok := tokenFrom(c)
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		mu.Lock()
		known := last != "" && tok == last
		mu.Unlock()
		if !known {
			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(tok)); err != nil {
				log.WithFields(logrus.Fields{"path": c.FullPath(), "ip": c.ClientIP()}).Warn("rejected api token")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			mu.Lock()
			last = tok
			mu.Unlock()
		}
		c.Next()
	}
}
