package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSyncRejectsMalformedID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewSimplifiedEnrollmentHandler(nil, nil, nil)

	r := gin.New()
	r.POST("/simplified-enrollments/:id/sync", h.Sync)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/simplified-enrollments/abc/sync", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestFixStudentAccountRejectsNegativeID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewSimplifiedEnrollmentHandler(nil, nil, nil)

	r := gin.New()
	r.POST("/simplified-enrollments/:id/fix-student-account", h.FixStudentAccount)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/simplified-enrollments/-1/fix-student-account", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewWebhookHandler(nil)

	r := gin.New()
	r.POST("/webhook/asaas", h.Asaas)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/asaas", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}
