package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the document service reports.
type Kind string

const (
	DocumentProcessing  Kind = "document_processing"
	EmbeddingGeneration Kind = "embedding_generation"
	SummaryGeneration   Kind = "summary_generation"
	QuestionAnswering   Kind = "question_answering"
	EmbeddingStorage    Kind = "embedding_storage"
	NotFound            Kind = "not_found"
	Validation          Kind = "validation"
	Authorization       Kind = "authorization"
)

// Error is a typed failure with an optional cause chain.
type Error struct {
	Kind     Kind
	FileType string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = defaultMessage(e.Kind, e.FileType)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match any *Error of the same kind, e.g.
// errors.Is(err, &apperror.Error{Kind: apperror.NotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func Wrapf(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Processing wraps an extraction failure for the given file type.
func Processing(fileType string, err error) *Error {
	return &Error{Kind: DocumentProcessing, FileType: fileType, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func defaultMessage(kind Kind, fileType string) string {
	switch kind {
	case DocumentProcessing:
		if fileType != "" {
			return fmt.Sprintf("error processing %s file", fileType)
		}
		return "error processing document"
	case EmbeddingGeneration:
		return "error generating embedding"
	case SummaryGeneration:
		return "error generating summary"
	case QuestionAnswering:
		return "error processing question"
	case EmbeddingStorage:
		return "error storing embedding"
	case NotFound:
		return "not found"
	case Validation:
		return "invalid input"
	case Authorization:
		return "admin privileges required"
	default:
		return "internal error"
	}
}
