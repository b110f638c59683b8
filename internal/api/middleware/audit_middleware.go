package middleware

import (
	"github.com/gin-gonic/gin"

	"taskhive/internal/domain/audit"
)

// AuditMiddleware records an audit entry for the wrapped route. The record is
// written after the handler runs so the final status code is captured; a
// failed write never affects the response.
type AuditMiddleware struct {
	recorder *audit.Recorder
}

func NewAuditMiddleware(recorder *audit.Recorder) *AuditMiddleware {
	return &AuditMiddleware{recorder: recorder}
}

// LogAction records the given action for authenticated requests
func (m *AuditMiddleware) LogAction(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		userID, ok := GetUserID(c)
		if !ok {
			return
		}

		m.recorder.Record(audit.Entry{
			UserID:   userID,
			Action:   action,
			Resource: c.Param("id"),
			Details: audit.Details{
				Method: c.Request.Method,
				Path:   c.Request.URL.Path,
				Query:  c.Request.URL.RawQuery,
				Status: c.Writer.Status(),
			},
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
	}
}
