package middleware

import (
	"bytes"
	"io"
	"net/http"

	"howlo/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"
)

// максимальный размер тела запроса от слака
const maxSlackBody = 1 << 20

// VerifySlackSignature проверяет X-Slack-Signature по signing secret.
// Пустой secret - проверка выключена (локальная разработка).
func VerifySlackSignature(secret string) gin.HandlerFunc {
	if secret == "" {
		logger.Warn("SLACK_SIGNING_SECRET не задан: подписи запросов не проверяются")
	}

	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSlackBody))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		sv, err := slack.NewSecretsVerifier(c.Request.Header, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing signature"})
			return
		}
		if _, err := sv.Write(body); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
		if err := sv.Ensure(); err != nil {
			logger.Warn("неверная подпись запроса слака", "path", c.FullPath(), "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
		c.Next()
	}
}
