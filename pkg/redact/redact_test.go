package redact

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

// Пакет unit-тестов для pkg/redact.
//
// Покрытие:
//   - URL: ключ в разных позициях, отсутствие ключа, неразбираемая строка.
//   - Err: *url.Error (в том числе завёрнутый), прочие ошибки, сохранение цепочки Unwrap.

// TestURL_Table — табличные тесты на маскирование ключа в URL.
func TestURL_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "key_first",
			in:   "https://api.rawg.io/api/games?key=secret&page=2",
			want: "https://api.rawg.io/api/games?key=%5BREDACTED_TOKEN%5D&page=2",
		},
		{
			name: "key_last_params_sorted",
			in:   "https://api.rawg.io/api/games?page=2&genres=4&key=secret",
			want: "https://api.rawg.io/api/games?genres=4&key=%5BREDACTED_TOKEN%5D&page=2",
		},
		{
			name: "empty_key_value",
			in:   "http://127.0.0.1:8080/api/genres?key=",
			want: "http://127.0.0.1:8080/api/genres?key=%5BREDACTED_TOKEN%5D",
		},
		{
			name: "no_key_unchanged",
			in:   "https://api.rawg.io/api/games?search=a%20b&page=1",
			want: "https://api.rawg.io/api/games?search=a%20b&page=1",
		},
		{
			name: "no_query_unchanged",
			in:   "https://api.rawg.io/api/platforms",
			want: "https://api.rawg.io/api/platforms",
		},
		{
			name: "unparsable",
			in:   "http://[::1:bad",
			want: "***",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, URL(tt.in))
		})
	}
}

// TestErr_URLError — ключ исчезает из текста, причина остаётся доступной через errors.Is.
func TestErr_URLError(t *testing.T) {
	t.Parallel()

	raw := &url.Error{
		Op:  "Get",
		URL: "https://api.rawg.io/api/games?key=secret&page=1",
		Err: context.DeadlineExceeded,
	}

	for name, in := range map[string]error{
		"direct":  raw,
		"wrapped": fmt.Errorf("rawg.get: %w", raw),
	} {
		in := in
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := Err(in)
			require.NotContains(t, got.Error(), "secret")
			require.Contains(t, got.Error(), "page=1")
			require.ErrorIs(t, got, context.DeadlineExceeded)

			var ue *url.Error
			require.ErrorAs(t, got, &ue)
			require.Equal(t, "Get", ue.Op)
		})
	}

	// исходная ошибка не меняется.
	require.Contains(t, raw.URL, "key=secret")
}

// TestErr_Passthrough — ошибки без URL возвращаются как есть.
func TestErr_Passthrough(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")
	require.Same(t, base, Err(base))
	require.NoError(t, Err(nil))
}

// TestToken — литерал-заглушка.
func TestToken(t *testing.T) {
	t.Parallel()
	require.Equal(t, "[REDACTED_TOKEN]", Token())
}
