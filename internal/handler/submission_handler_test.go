package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/defense-portal-api/internal/repository"
	"github.com/noah-isme/defense-portal-api/internal/service"
	"github.com/noah-isme/defense-portal-api/pkg/response"
)

func newSubmissionTestHandler() (*SubmissionHandler, *repository.ProcessStore) {
	store := repository.NewProcessStore()
	catalog := service.NewCatalogService(nil)
	svc := service.NewSubmissionService(store, catalog, nil, nil, "2024/2025", nil, nil, nil)
	return NewSubmissionHandler(svc), store
}

func TestSubmissionHandlerRegister(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newSubmissionTestHandler()

	body := `{"student_npm":"2011001","student_name":"Budi Santoso","phase":"proposal","files":{"draft_proposal":{"id":"f1","file_name":"draft.pdf","path":"2025/03/f1.pdf"}}}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/submissions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Register(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, "2011001", data["student_npm"])
}

func TestSubmissionHandlerRegisterInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newSubmissionTestHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/submissions", bytes.NewBufferString(`{"student_npm":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Register(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmissionHandlerRegisterMissingFiles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newSubmissionTestHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/submissions", bytes.NewBufferString(`{"student_npm":"2011001","phase":"proposal","files":{}}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Register(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}

func TestSubmissionHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newSubmissionTestHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/submissions/missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}
