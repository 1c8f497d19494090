package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitepulse/backend/internal/domain/shared"
	"github.com/sitepulse/backend/internal/interfaces/http/dto"
	"github.com/sitepulse/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/")

	h.Success(c, gin.H{"name": "sitepulse"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestBaseHandlerSuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/")

	h.SuccessWithMeta(c, []string{"a"}, 41, 2, 20)

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(41), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"not found", shared.NewNotFoundError("project"), http.StatusNotFound, dto.ErrCodeNotFound},
		{"already exists", shared.NewAlreadyExistsError("tenant"), http.StatusConflict, dto.ErrCodeAlreadyExists},
		{"quota exceeded", shared.NewQuotaExceededError("monthly seo_runs allowance exhausted"), http.StatusTooManyRequests, dto.ErrCodeQuotaExceeded},
		{"capacity exceeded", shared.NewCapacityExceededError("project limit reached"), http.StatusPaymentRequired, dto.ErrCodeCapacityExceeded},
		{"tenant suspended", shared.NewTenantSuspendedError(), http.StatusForbidden, dto.ErrCodeTenantSuspended},
		{"upstream failure", shared.NewUpstreamFailureError("pagespeed timeout"), http.StatusBadGateway, dto.ErrCodeUpstreamFailure},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	h := &BaseHandler{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(http.MethodGet, "/")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
		})
	}
}

func TestBaseHandlerErrorCarriesRequestID(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/")
	c.Set(middleware.RequestIDKey, "req-789")

	h.NotFound(c, "Audit not found")

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	assert.Equal(t, "Audit not found", resp.Error.Message)
}

func TestGetTenantID(t *testing.T) {
	tenantID := uuid.New()

	c, _ := newTestContext(http.MethodGet, "/")
	c.Set(middleware.JWTTenantIDKey, tenantID.String())

	got, err := getTenantID(c)
	require.NoError(t, err)
	assert.Equal(t, tenantID, got)

	c2, _ := newTestContext(http.MethodGet, "/")
	_, err = getTenantID(c2)
	assert.Error(t, err)
}

func TestGetUserID(t *testing.T) {
	userID := uuid.New()

	c, _ := newTestContext(http.MethodGet, "/")
	c.Set(middleware.JWTUserIDKey, userID.String())

	got, err := getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestParseIDParam(t *testing.T) {
	id := uuid.New()
	c, _ := newTestContext(http.MethodGet, "/")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	got, err := parseIDParam(c, "id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	_, err = parseIDParam(c, "id")
	assert.Error(t, err)
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected shared.Filter
	}{
		{
			name:     "defaults",
			query:    "",
			expected: shared.DefaultFilter(),
		},
		{
			name:  "explicit paging and ordering",
			query: "?page=3&page_size=50&order_by=updated_at&order_dir=asc&search=blog",
			expected: shared.Filter{
				Page:     3,
				PageSize: 50,
				OrderBy:  "updated_at",
				OrderDir: "asc",
				Search:   "blog",
				Filters:  map[string]interface{}{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodGet, "/"+tt.query)
			assert.Equal(t, tt.expected, parseFilter(c))
		})
	}
}
