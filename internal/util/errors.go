package util

import "errors"

var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrProgressNotFound    = errors.New("course progress not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTransactionExists   = errors.New("transaction already exists")
	ErrProgressExists      = errors.New("course progress already exists")
	ErrChapterNotFound     = errors.New("chapter not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrPurchaseInProgress  = errors.New("a purchase with this transaction id is already being processed")
	ErrPresignUnsupported  = errors.New("storage provider does not support presigned uploads")
)

// ValidationError 请求参数不合法，映射为 400
type ValidationError struct {
	Message string
	Detail  string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Message
	}
	return e.Message + ": " + e.Detail
}

func NewValidationError(message, detail string) error {
	return &ValidationError{Message: message, Detail: detail}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
