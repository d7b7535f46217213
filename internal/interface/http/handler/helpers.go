package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/honeyjobs-backend/internal/http/middleware"
	"github.com/ignatzorin/honeyjobs-backend/internal/interface/http/dto"
	"github.com/ignatzorin/honeyjobs-backend/internal/interface/http/response"
	"github.com/ignatzorin/honeyjobs-backend/internal/pkg/apperror"
)

// callerID достаёт пользователя из контекста. При отсутствии сам отвечает 401.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}

// pathUUID разбирает UUID из параметра пути. При ошибке сам отвечает 400.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "параметр "+name+" должен быть валидным UUID")
		return uuid.Nil, false
	}
	return id, true
}

func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// webhookPaymentID читает id платежа: Mollie присылает form-urlencoded,
// для ручных вызовов и тестов поддерживается JSON.
func webhookPaymentID(c *gin.Context) string {
	if id := c.PostForm("id"); id != "" {
		return id
	}
	var req dto.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return ""
	}
	return req.ID
}
