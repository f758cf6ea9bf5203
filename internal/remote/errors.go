package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code классифицирует ошибки удалённого хранилища
type Code string

const (
	// CodeInvalidArgument сервер отверг запрос как некорректный
	CodeInvalidArgument Code = "invalid-argument"
	// CodeUnauthenticated запрос без действующей identity
	CodeUnauthenticated Code = "unauthenticated"
	// CodePermissionDenied identity есть, но доступа к документу нет
	CodePermissionDenied Code = "permission-denied"
	// CodeNotFound документ или коллекция не существует
	CodeNotFound Code = "not-found"
	// CodeUnavailable временная ошибка сервера или сети
	CodeUnavailable Code = "unavailable"
	// CodeDeadlineExceeded попытка не уложилась в таймаут
	CodeDeadlineExceeded Code = "deadline-exceeded"
)

// Session errors
var (
	// ErrNotAuthenticated indicates that no remote identity is present
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrTokenExpired indicates that the access token has expired
	ErrTokenExpired = errors.New("access token expired")

	// ErrNotInitialized indicates that the remote connection was not established
	ErrNotInitialized = errors.New("remote connection not initialized")
)

// Error represents a typed remote store failure
type Error struct {
	Err     error
	Code    Code
	Message string
	Status  int
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote store error (%s, status %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("remote store error (%s): %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the failure class is worth retrying.
// Ошибки прав и валидации повторять бессмысленно.
func (e *Error) Retryable() bool {
	switch e.Code {
	case CodeUnavailable, CodeDeadlineExceeded:
		return true
	default:
		return false
	}
}

// IsRetryable reports whether err is a transient remote failure.
// Контекстные дедлайны считаются транзиентными: у попытки есть свой
// таймаут, а решение о повторе принимает вызывающий.
func IsRetryable(err error) bool {
	var remoteErr *Error
	if errors.As(err, &remoteErr) {
		return remoteErr.Retryable()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return false
}

// codeForStatus переводит HTTP статус в класс ошибки
func codeForStatus(status int) Code {
	switch {
	case status == http.StatusBadRequest:
		return CodeInvalidArgument
	case status == http.StatusUnauthorized:
		return CodeUnauthenticated
	case status == http.StatusForbidden:
		return CodePermissionDenied
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusRequestTimeout:
		return CodeDeadlineExceeded
	default:
		// 429 и все 5xx считаем временными
		return CodeUnavailable
	}
}
