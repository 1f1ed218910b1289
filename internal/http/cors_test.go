package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "single origin",
			input:    "https://app.example.com",
			expected: []string{"https://app.example.com"},
		},
		{
			name:     "multiple origins with whitespace",
			input:    "https://app.example.com, https://admin.example.com ,https://www.example.com",
			expected: []string{"https://app.example.com", "https://admin.example.com", "https://www.example.com"},
		},
		{
			name:     "only commas and whitespace",
			input:    " , , ",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseOrigins(tt.input))
		})
	}
}

func TestCreateCORSMiddleware_Disabled(t *testing.T) {
	middleware := createCORSMiddleware(false, "https://app.example.com", discardLogger())
	assert.Nil(t, middleware)
}

func TestCreateCORSMiddleware_EnabledWithoutOrigins(t *testing.T) {
	assert.Nil(t, createCORSMiddleware(true, "", discardLogger()))
	assert.Nil(t, createCORSMiddleware(true, " , ", discardLogger()))
}

func TestCreateCORSMiddleware_AllowsConfiguredOrigin(t *testing.T) {
	middleware := createCORSMiddleware(true, "https://app.example.com", discardLogger())
	require.NotNil(t, middleware)

	router := gin.New()
	router.Use(middleware)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	t.Run("allowed origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://app.example.com")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		router.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/test", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
