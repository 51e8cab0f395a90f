package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gopherai-docqa/internal/apperror"
)

const (
	msgInternal      = "Internal server error"
	msgAdminRequired = "Admin privileges required"
	msgAskFailed     = "Failed to process question"
)

// OK writes {"success": true, ...fields}.
func OK(c *gin.Context, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Error writes {"success": false, "error": message}.
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{
		"success": false,
		"error":   message,
	})
}

// Fail maps err to a status and a caller-safe message. Causes of server-side
// failures are logged and never written to the response.
func Fail(c *gin.Context, err error) {
	status, message := Status(err)
	logFailure(c, status, err)
	Error(c, status, message)
}

// FailPlain is Fail with a bare {"error": message} body.
func FailPlain(c *gin.Context, err error) {
	status, message := Status(err)
	logFailure(c, status, err)
	c.JSON(status, gin.H{"error": message})
}

func Status(err error) (int, string) {
	switch apperror.KindOf(err) {
	case apperror.Validation, apperror.DocumentProcessing:
		return http.StatusBadRequest, publicMessage(err)
	case apperror.Authorization:
		return http.StatusForbidden, msgAdminRequired
	case apperror.NotFound:
		return http.StatusNotFound, publicMessage(err)
	case apperror.QuestionAnswering:
		return http.StatusInternalServerError, msgAskFailed
	case apperror.EmbeddingGeneration, apperror.SummaryGeneration, apperror.EmbeddingStorage:
		return http.StatusInternalServerError, msgInternal
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// publicMessage prefers the error's own message over its cause chain.
func publicMessage(err error) string {
	var e *apperror.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

func logFailure(c *gin.Context, status int, err error) {
	entry := logrus.WithFields(logrus.Fields{
		"path":   c.FullPath(),
		"method": c.Request.Method,
		"status": status,
		"kind":   string(apperror.KindOf(err)),
	}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
		return
	}
	entry.Debug("request rejected")
}
