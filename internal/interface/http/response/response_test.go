package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/honeyjobs-backend/internal/pkg/apperror"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func run(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	fn(c)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestError_AppError(t *testing.T) {
	w, body := run(t, func(c *gin.Context) { Error(c, apperror.ErrEscrowAlreadyExists) })

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "PRECONDITION_FAILED", body.Error.Code)
	assert.Equal(t, apperror.ErrEscrowAlreadyExists.Message, body.Error.Message)
}

func TestError_HidesCause(t *testing.T) {
	err := apperror.Database(errors.New("pq: relation does not exist"), "не удалось получить контракт")
	w, body := run(t, func(c *gin.Context) { Error(c, err) })

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "DATABASE_ERROR", body.Error.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
}

func TestError_PlainError(t *testing.T) {
	w, body := run(t, func(c *gin.Context) { Error(c, errors.New("boom")) })

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.Equal(t, internalMessage, body.Error.Message)
}

func TestPaginated_HasMore(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Paginated(c, []int{1, 2}, 5, 2, 2)

	var body PaginatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.True(t, body.Pagination.HasMore)
	assert.Equal(t, 5, body.Pagination.Total)
}
