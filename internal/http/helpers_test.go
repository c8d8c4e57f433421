package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseIndexParam_Valid(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "index", Value: "3"}}

	idx, ok := parseIndexParam(c, "index")

	assert.True(t, ok)
	assert.Equal(t, 3, idx)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseIndexParam_Invalid(t *testing.T) {
	for _, value := range []string{"abc", "-1", ""} {
		t.Run(value, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Params = gin.Params{{Key: "index", Value: value}}

			idx, ok := parseIndexParam(c, "index")

			assert.False(t, ok)
			assert.Equal(t, 0, idx)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "invalid index")
		})
	}
}

func TestQueryInt(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		want   int
		wantOK bool
	}{
		{"absent uses default", "/", 50, true},
		{"parsed", "/?count=20", 20, true},
		{"clamped", "/?count=5000", 500, true},
		{"negative", "/?count=-2", 0, false},
		{"garbage", "/?count=ten", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", tt.query, nil)

			got, ok := queryInt(c, "count", 50, 500)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestRespondInternalError_HidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)

	respondInternalError(c, errors.New("disk on fire"), "test")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk on fire")
	assert.Contains(t, w.Body.String(), `"error":"internal server error"`)
}

func TestRespondErrorCode(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondErrorCode(c, http.StatusUnprocessableEntity, "import_validation", "bad file")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"bad file","code":"import_validation"}`, w.Body.String())
}
