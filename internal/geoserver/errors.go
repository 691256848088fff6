package geoserver

import (
	"errors"
	"fmt"
)

// ErrNetwork совпадает через errors.Is с любой *NetworkError
var ErrNetwork = errors.New("geoserver request failed")

// ErrMalformedResponse совпадает через errors.Is с любой *MalformedResponseError
var ErrMalformedResponse = errors.New("malformed geoserver response")

// NetworkError запрос не удалось отправить или получить ответ
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// MalformedResponseError тело ответа не удалось разобрать
type MalformedResponseError struct {
	URL string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %v", e.URL, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }
