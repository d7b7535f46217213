package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/honeyjobs-backend/internal/interface/http/response"
	"github.com/ignatzorin/honeyjobs-backend/internal/logger"
	"github.com/ignatzorin/honeyjobs-backend/internal/pkg/apperror"
)

// ErrorHandler отвечает за ошибки, переданные хэндлерами через c.Error,
// если хэндлер сам ничего не записал.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		logger.Log.WithFields(logrus.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"code":   apperror.CodeOf(err),
		}).Debug("http: ошибка из c.Errors")

		response.Error(c, err)
	}
}
