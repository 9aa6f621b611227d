package rawg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

var (
	// ErrNetwork — ответ от каталога не получен (нет связи, таймаут, обрыв чтения).
	ErrNetwork = errors.New("catalog unreachable")
	// ErrUpstream — каталог ответил ошибкой или невалидным телом.
	ErrUpstream = errors.New("catalog error")
)

// NetworkError — транспортный сбой вызова Op.
// errors.Is(err, ErrNetwork) == true; исходная причина доступна через errors.Is/As.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("rawg %s: network: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNetwork}
	}
	return []error{ErrNetwork, e.Err}
}

// UpstreamError — каталог вернул не-2xx статус (или тело, которое не удалось разобрать).
// Message — сообщение из тела ошибки каталога, если оно было.
type UpstreamError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("rawg %s: status=%d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("rawg %s: status=%d", e.Op, e.StatusCode)
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Err}
}

// upstreamMessage достаёт человекочитаемое сообщение из тела ошибки каталога.
func upstreamMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(eb.Error); msg != "" {
		return msg
	}
	return strings.TrimSpace(eb.Detail)
}
