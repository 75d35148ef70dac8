package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/identity"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/reject"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/utils"
	"github.com/rs/zerolog/log"
)

const (
	accessTokenRequired string = "error.token.required"
	accessTokenInvalid  string = "error.token.invalid"
)

// VerifyAuthToken binds the request to the party its bearer token proves.
func VerifyAuthToken(verifier identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.Request.Header.Get("Authorization")
		idTokenValue := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if idTokenValue == "" {
			log.Warn().Str("path", c.FullPath()).Msg("Token missing: 401")
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				reject.NewProblem().
					WithTitle("Missing access token").
					WithStatus(http.StatusUnauthorized).
					WithCode(accessTokenRequired).
					Build())
			return
		}

		party, err := verifier.Verify(c.Request.Context(), idTokenValue)
		if err != nil {
			log.Warn().Err(err).Msg("Error verifying token")
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				reject.NewProblem().
					WithTitle("Cannot verify access token").
					WithStatus(http.StatusUnauthorized).
					WithCode(accessTokenInvalid).
					WithDetail(err.Error()).
					Build())
			return
		}

		utils.SetPartyCtx(party, c)
		c.Next()
	}
}
