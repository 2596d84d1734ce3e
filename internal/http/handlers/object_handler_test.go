package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestObjectHandler_GetInvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	handler := &ObjectHandler{objects: nil}
	r.GET("/api/objects/:id", handler.Get)

	for _, id := range []string{"abc", "0", "-1"} {
		req, _ := http.NewRequest(http.MethodGet, "/api/objects/"+id, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestObjectHandler_CreateWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	handler := &ObjectHandler{objects: nil}
	r.POST("/api/provider/objects", handler.Create)

	req, _ := http.NewRequest(http.MethodPost, "/api/provider/objects", bytes.NewBufferString(`{"title_de": "Bank", "type": "bench"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestObjectHandler_UpdateStatusWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	handler := &ObjectHandler{objects: nil}
	r.PATCH("/api/provider/objects/:id/status", handler.UpdateStatus)

	req, _ := http.NewRequest(http.MethodPatch, "/api/provider/objects/1/status", bytes.NewBufferString(`{"status": "reserved"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
