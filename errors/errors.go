// Package errors holds the sentinel errors shared by every layer.
// Callers wrap them with fmt.Errorf("%w: ...") and match them with Is.
package errors

import (
	goerrors "errors"
	"fmt"
)

var (
	ErrValidation        = fmt.Errorf("validation error")
	ErrAuthorization     = fmt.Errorf("authorization error")
	ErrBlocked           = fmt.Errorf("recipient has blocked sender")
	ErrNotFound          = fmt.Errorf("not found")
	ErrStorage           = fmt.Errorf("storage error")
	ErrIllegalTransition = fmt.Errorf("illegal call transition")
	ErrUnauthenticated   = fmt.Errorf("unauthenticated")
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrUnsupportedFile   = fmt.Errorf("unsupported file type")
	ErrFileTooLarge      = fmt.Errorf("file too large")
	ErrSendBufferFull    = fmt.Errorf("send buffer full")
)

func Is(err, target error) bool {
	return goerrors.Is(err, target)
}

func As(err error, target any) bool {
	return goerrors.As(err, target)
}
