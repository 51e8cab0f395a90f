package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gopherai-docqa/internal/app"
	"gopherai-docqa/internal/model"
	"gopherai-docqa/internal/transport/http/response"
)

type DocumentService interface {
	Upload(ctx context.Context, input app.UploadInput) (*model.Document, error)
	Delete(ctx context.Context, actor app.Actor, id uint) error
	Rename(ctx context.Context, actor app.Actor, id uint, newName string) error
	View(ctx context.Context, id uint) (*app.DocumentView, error)
	List(ctx context.Context) ([]model.Document, error)
	Reprocess(ctx context.Context, actor app.Actor, id uint) (*model.Document, error)
	Ask(ctx context.Context, input app.AskInput) (*app.AskResult, error)
	ChatHistory(ctx context.Context, userID, documentID uint, limit int) ([]model.ChatLog, error)
}

type DocumentHandler struct {
	docs           DocumentService
	maxUploadBytes int64
}

type RenameRequest struct {
	NewName string `json:"new_name"`
}

type AskRequest struct {
	Question   string `json:"question"`
	DocumentID uint   `json:"document_id"`
}

func NewDocumentHandler(docs DocumentService, maxUploadBytes int64) *DocumentHandler {
	return &DocumentHandler{docs: docs, maxUploadBytes: maxUploadBytes}
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.docs.List(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, gin.H{"documents": docs})
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "invalid token payload")
		return
	}

	file, err := c.FormFile("file")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || (err == nil && h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes) {
		response.Error(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File too large (max %dMB)", h.maxUploadBytes>>20))
		return
	}
	if err != nil {
		response.Error(c, http.StatusBadRequest, "No file provided")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to read file")
		return
	}
	defer f.Close()

	doc, err := h.docs.Upload(c.Request.Context(), app.UploadInput{
		Actor:    actor,
		Filename: file.Filename,
		Content:  f,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, gin.H{"document_id": doc.ID})
}

func (h *DocumentHandler) View(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid document id")
		return
	}
	view, err := h.docs.View(c.Request.Context(), id)
	if err != nil {
		response.FailPlain(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "invalid token payload")
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid document id")
		return
	}
	if err := h.docs.Delete(c.Request.Context(), actor, id); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *DocumentHandler) Rename(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "invalid token payload")
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid document id")
		return
	}
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := h.docs.Rename(c.Request.Context(), actor, id, req.NewName); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *DocumentHandler) Reprocess(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "invalid token payload")
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid document id")
		return
	}
	doc, err := h.docs.Reprocess(c.Request.Context(), actor, id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, gin.H{"document_id": doc.ID, "summary": doc.Summary})
}

func (h *DocumentHandler) Ask(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token payload"})
		return
	}
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data provided"})
		return
	}
	result, err := h.docs.Ask(c.Request.Context(), app.AskInput{
		UserID:     userID,
		DocumentID: req.DocumentID,
		Question:   req.Question,
	})
	if err != nil {
		response.FailPlain(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": result.Answer})
}

func (h *DocumentHandler) ChatHistory(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "invalid token payload")
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid document id")
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	logs, err := h.docs.ChatHistory(c.Request.Context(), userID, id, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, gin.H{"chats": logs})
}
