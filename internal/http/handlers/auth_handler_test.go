package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAuthHandler_RegisterValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	handler := &AuthHandler{auth: nil}
	r.POST("/api/auth/register", handler.Register)

	cases := []struct {
		name string
		body string
	}{
		{"пустое тело", `{}`},
		{"некорректный email", `{"email": "not-an-email", "password": "Password123", "first_name": "Max", "last_name": "Mustermann"}`},
		{"слабый пароль", `{"email": "user@example.com", "password": "password", "first_name": "Max", "last_name": "Mustermann"}`},
		{"роль admin", `{"email": "user@example.com", "password": "Password123", "first_name": "Max", "last_name": "Mustermann", "role": "admin"}`},
		{"несуществующая роль", `{"email": "user@example.com", "password": "Password123", "first_name": "Max", "last_name": "Mustermann", "role": "root"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAuthHandler_LoginValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	handler := &AuthHandler{auth: nil}
	r.POST("/api/auth/login", handler.Login)

	req, _ := http.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"email": "broken"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_SessionsRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	handler := &AuthHandler{auth: nil}
	r.GET("/api/auth/sessions", handler.ListSessions)
	r.DELETE("/api/auth/sessions/:id", handler.DeleteSession)
	r.DELETE("/api/auth/sessions", handler.DeleteAllSessionsExcept)

	// Без контекста пользователя все операции с сессиями отклоняются.
	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/sessions"},
		{http.MethodDelete, "/api/auth/sessions/9f1c6e8a-0000-0000-0000-000000000000"},
		{http.MethodDelete, "/api/auth/sessions"},
	}

	for _, tc := range cases {
		req, _ := http.NewRequest(tc.method, tc.path, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestAuthHandler_RefreshRequiresToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	handler := &AuthHandler{auth: nil}
	r.POST("/api/auth/refresh", handler.Refresh)

	req, _ := http.NewRequest(http.MethodPost, "/api/auth/refresh", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
