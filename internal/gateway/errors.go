package gateway

import (
	"errors"
	"fmt"
)

// PreconditionError запрос отклонен до обращения к сети
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

func precondition(message string) error {
	return &PreconditionError{Message: message}
}

// RemoteError сервис ответил телом с ошибкой или не-2xx статусом
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

// TransportError сеть недоступна или истек таймаут
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// message сводит любую ошибку к строке конверта
func message(err error, fallback string) string {
	if err == nil {
		return fallback
	}

	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Error()
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
