package pager

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/pribylovaa/game-catalog/internal/models"
	"github.com/pribylovaa/game-catalog/internal/query"
	"github.com/pribylovaa/game-catalog/internal/rawg"
)

// Status — фаза жизненного цикла выдачи.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result — то, что видит слой отображения.
//
// Особенности:
//   - ErrorMessage непуст тогда и только тогда, когда Status == StatusError;
//   - пустая выдача — это StatusSuccess с нулём элементов (см. Empty), а не ошибка;
//   - Err — типизированная причина ошибки для вызывающего кода (в UI не выводится).
type Result struct {
	Items        []models.GameSummary
	TotalCount   int
	HasNext      bool
	Status       Status
	ErrorMessage string
	Err          error

	// Page — последняя применённая страница, PageSize — её размер.
	Page     int
	PageSize int
}

// TotalPages — число страниц выборки при текущем размере страницы.
func (r Result) TotalPages() int {
	if r.PageSize <= 0 || r.TotalCount <= 0 {
		return 0
	}
	return (r.TotalCount + r.PageSize - 1) / r.PageSize
}

// Empty — успешная выдача без совпадений.
func (r Result) Empty() bool {
	return r.Status == StatusSuccess && len(r.Items) == 0
}

// clone отдаёт копию, которую вызывающий может менять без влияния на контроллер.
func (r Result) clone() Result {
	r.Items = slices.Clip(slices.Clone(r.Items))
	return r
}

// Message переводит ошибку загрузки в сообщение для пользователя.
func Message(err error) string {
	var (
		netErr *rawg.NetworkError
		upErr  *rawg.UpstreamError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "Request was canceled."
	case errors.Is(err, context.DeadlineExceeded):
		return "The catalog took too long to respond. Try again."
	case errors.As(err, &netErr):
		return "Could not reach the game catalog. Check your connection and try again."
	case errors.As(err, &upErr):
		switch {
		case upErr.StatusCode == http.StatusUnauthorized || upErr.StatusCode == http.StatusForbidden:
			return "The game catalog rejected the API key."
		case upErr.Message != "":
			return fmt.Sprintf("The game catalog returned an error (%d): %s", upErr.StatusCode, upErr.Message)
		case upErr.StatusCode == http.StatusOK:
			return "The game catalog sent a response that could not be read."
		default:
			return fmt.Sprintf("The game catalog returned an error (%d). Try again later.", upErr.StatusCode)
		}
	case errors.Is(err, query.ErrInvalidArgument):
		return "The current filters are not valid: " + err.Error()
	default:
		return "Something went wrong. Try again."
	}
}
