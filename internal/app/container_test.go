package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryContainer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := NewContainer(Config{BcryptCost: 4, MaxPageSize: 10})
	require.NotNil(t, c.Router)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		c.Router.ServeHTTP(w, req)
		return w
	}

	w := do("POST", "/v1/roles", `{"name":"Staff"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do("POST", "/v1/users", `{"username":"alice","email":"alice@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do("GET", "/v1/users?page_size=11", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do("GET", "/v1/users?page_size=10", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}
