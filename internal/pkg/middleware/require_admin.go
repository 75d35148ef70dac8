package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/reject"
	"github.com/rs/zerolog/log"
)

const AdminSecretHeader = "X-Admin-Secret"

// RequireAdmin guards operator endpoints. An empty secret disables them.
func RequireAdmin(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(AdminSecretHeader)
		if secret == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
			log.Warn().Str("path", c.FullPath()).Msg("Admin secret rejected")
			c.AbortWithStatusJSON(http.StatusForbidden, reject.ForbiddenProblem())
			return
		}
		c.Next()
	}
}
