package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopherai-docqa/internal/app"
	"gopherai-docqa/internal/apperror"
	"gopherai-docqa/internal/model"
	"gopherai-docqa/internal/pkg/jwtutil"
	"gopherai-docqa/internal/transport/http/middleware"
)

const testSecret = "test-secret"

type fakeDocs struct {
	uploaded  []string
	uploadErr error
	deleteErr error
	renamed   string
	askErr    error
	asked     app.AskInput
}

func (f *fakeDocs) Upload(_ context.Context, in app.UploadInput) (*model.Document, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	if !in.Actor.IsAdmin() {
		return nil, apperror.New(apperror.Authorization, "")
	}
	body, _ := io.ReadAll(in.Content)
	f.uploaded = append(f.uploaded, in.Filename+":"+string(body))
	return &model.Document{ID: 42}, nil
}

func (f *fakeDocs) Delete(_ context.Context, _ app.Actor, _ uint) error { return f.deleteErr }

func (f *fakeDocs) Rename(_ context.Context, _ app.Actor, _ uint, newName string) error {
	f.renamed = newName
	return nil
}

func (f *fakeDocs) View(_ context.Context, id uint) (*app.DocumentView, error) {
	if id != 42 {
		return nil, apperror.New(apperror.NotFound, "Document not found")
	}
	return &app.DocumentView{Content: "Hello World", Summary: "Summary not available", FileType: model.FileTypeTXT}, nil
}

func (f *fakeDocs) List(_ context.Context) ([]model.Document, error) {
	return []model.Document{{ID: 42, OriginalFilename: "report.txt"}}, nil
}

func (f *fakeDocs) Reprocess(_ context.Context, _ app.Actor, id uint) (*model.Document, error) {
	s := "fresh"
	return &model.Document{ID: id, Summary: &s}, nil
}

func (f *fakeDocs) Ask(_ context.Context, in app.AskInput) (*app.AskResult, error) {
	f.asked = in
	if f.askErr != nil {
		return nil, f.askErr
	}
	return &app.AskResult{Answer: "It says hello."}, nil
}

func (f *fakeDocs) ChatHistory(_ context.Context, userID, documentID uint, _ int) ([]model.ChatLog, error) {
	return []model.ChatLog{{UserID: userID, DocumentID: documentID, Question: "q", Answer: "a"}}, nil
}

const testMaxUpload = 1 << 20

func newTestRouter(docs DocumentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewDocumentHandler(docs, testMaxUpload)
	api := r.Group("/api/v1", middleware.AuthJWT(testSecret))
	api.GET("/documents", h.List)
	api.POST("/documents", middleware.LimitBody(testMaxUpload+64<<10), h.Upload)
	api.GET("/documents/:id", h.View)
	api.DELETE("/documents/:id", h.Delete)
	api.PATCH("/documents/:id", h.Rename)
	api.POST("/documents/:id/reprocess", h.Reprocess)
	api.GET("/documents/:id/chats", h.ChatHistory)
	api.POST("/ask", h.Ask)
	return r
}

func bearer(t *testing.T, userID uint, role string) string {
	t.Helper()
	token, err := jwtutil.GenerateToken(testSecret, time.Hour, userID, "u", role)
	require.NoError(t, err)
	return "Bearer " + token
}

func do(t *testing.T, r http.Handler, req *http.Request) (int, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w.Code, body
}

func multipartUpload(t *testing.T, auth, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", auth)
	return req
}

func TestUploadHandler(t *testing.T) {
	docs := &fakeDocs{}
	r := newTestRouter(docs)

	code, body := do(t, r, multipartUpload(t, bearer(t, 1, model.RoleAdmin), "report.txt", "Hello World"))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(42), body["document_id"])
	assert.Equal(t, []string{"report.txt:Hello World"}, docs.uploaded)

	code, body = do(t, r, multipartUpload(t, bearer(t, 2, model.RoleUser), "report.txt", "x"))
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Admin privileges required", body["error"])
}

func TestUploadHandlerErrors(t *testing.T) {
	docs := &fakeDocs{uploadErr: apperror.Processing("pdf", errors.New("malformed xref"))}
	r := newTestRouter(docs)
	auth := bearer(t, 1, model.RoleAdmin)

	code, body := do(t, r, multipartUpload(t, auth, "a.pdf", "junk"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error processing pdf file: malformed xref", body["error"])

	docs.uploadErr = apperror.Wrap(apperror.EmbeddingStorage, errors.New("dial tcp 10.1.2.3:19530"))
	code, body = do(t, r, multipartUpload(t, auth, "a.txt", "x"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", body["error"])

	// just over the file limit but inside the body cap
	code, body = do(t, r, multipartUpload(t, auth, "big.txt", strings.Repeat("x", testMaxUpload+1024)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	assert.Equal(t, false, body["success"])

	// far past the body cap, the multipart parse itself fails
	code, body = do(t, r, multipartUpload(t, auth, "huge.txt", strings.Repeat("x", 3*testMaxUpload)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	assert.Equal(t, "File too large (max 1MB)", body["error"])

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", nil)
	req.Header.Set("Authorization", auth)
	code, body = do(t, r, req)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No file provided", body["error"])
}

func TestAuthRequired(t *testing.T) {
	r := newTestRouter(&fakeDocs{})

	code, body := do(t, r, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, false, body["success"])

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	code, _ = do(t, r, req)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestViewHandler(t *testing.T) {
	r := newTestRouter(&fakeDocs{})
	auth := bearer(t, 2, model.RoleUser)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/42", nil)
	req.Header.Set("Authorization", auth)
	code, body := do(t, r, req)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Hello World", body["content"])
	assert.Equal(t, "Summary not available", body["summary"])
	assert.Equal(t, "txt", body["file_type"])

	req = httptest.NewRequest(http.MethodGet, "/api/v1/documents/7", nil)
	req.Header.Set("Authorization", auth)
	code, body = do(t, r, req)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Document not found", body["error"])

	req = httptest.NewRequest(http.MethodGet, "/api/v1/documents/abc", nil)
	req.Header.Set("Authorization", auth)
	code, _ = do(t, r, req)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDeleteAndRenameHandlers(t *testing.T) {
	docs := &fakeDocs{}
	r := newTestRouter(docs)
	auth := bearer(t, 1, model.RoleAdmin)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/42", nil)
	req.Header.Set("Authorization", auth)
	code, body := do(t, r, req)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	docs.deleteErr = apperror.New(apperror.NotFound, "Document not found")
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/documents/42", nil)
	req.Header.Set("Authorization", auth)
	code, body = do(t, r, req)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, false, body["success"])

	req = httptest.NewRequest(http.MethodPatch, "/api/v1/documents/42", strings.NewReader(`{"new_name":"q3/report.txt"}`))
	req.Header.Set("Authorization", auth)
	req.Header.Set("Content-Type", "application/json")
	code, body = do(t, r, req)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "q3/report.txt", docs.renamed)
}

func TestAskHandler(t *testing.T) {
	docs := &fakeDocs{}
	r := newTestRouter(docs)
	auth := bearer(t, 5, model.RoleUser)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{"question":"What?","document_id":42}`))
	req.Header.Set("Authorization", auth)
	req.Header.Set("Content-Type", "application/json")
	code, body := do(t, r, req)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"answer": "It says hello."}, body)
	assert.Equal(t, app.AskInput{UserID: 5, DocumentID: 42, Question: "What?"}, docs.asked)

	docs.askErr = apperror.Wrap(apperror.QuestionAnswering, errors.New("openai 500"))
	req = httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{"question":"What?","document_id":42}`))
	req.Header.Set("Authorization", auth)
	req.Header.Set("Content-Type", "application/json")
	code, body = do(t, r, req)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, map[string]any{"error": "Failed to process question"}, body)
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHealthHandler("docqa", "test", time.Now(), map[string]CheckFunc{
		"mysql":  func(context.Context) error { return nil },
		"milvus": func(context.Context) error { return errors.New("dial tcp 10.1.2.3:19530: connect: refused") },
	})
	r.GET("/healthz", h.Check)

	code, body := do(t, r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, true, deps["mysql"].(map[string]any)["ok"])
	milvus := deps["milvus"].(map[string]any)
	assert.Equal(t, false, milvus["ok"])
	assert.Equal(t, "unavailable", milvus["message"])
	assert.NotContains(t, milvus["message"], "10.1.2.3")
}
