package response

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"gopherai-docqa/internal/apperror"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{apperror.New(apperror.Validation, "File type not allowed"), http.StatusBadRequest, "File type not allowed"},
		{apperror.Processing("pdf", errors.New("bad xref")), http.StatusBadRequest, "error processing pdf file: bad xref"},
		{apperror.New(apperror.Authorization, ""), http.StatusForbidden, msgAdminRequired},
		{apperror.New(apperror.NotFound, "Document not found"), http.StatusNotFound, "Document not found"},
		{apperror.Wrap(apperror.EmbeddingStorage, errors.New("dial tcp 10.0.0.3:19530")), http.StatusInternalServerError, msgInternal},
		{apperror.Wrap(apperror.QuestionAnswering, errors.New("429")), http.StatusInternalServerError, msgAskFailed},
		{errors.New("sql: connection refused"), http.StatusInternalServerError, msgInternal},
	}
	for _, tc := range cases {
		status, message := Status(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.message, message, tc.err.Error())
	}
}
