// redact убирает секреты каталога (ключ API в query string) из строк и ошибок,
// которые попадают в логи, сохраняя полезный для отладки контекст (хост, путь, фильтры).
package redact

import (
	"errors"
	"net/url"
)

// SecretParams — параметры запроса, значения которых маскируются.
var SecretParams = []string{"key"}

// Token возвращает литерал-заглушку для секрета в логах.
func Token() string { return "[REDACTED_TOKEN]" }

// URL маскирует значения SecretParams в строке запроса raw.
//
// Правила:
//   - Неразбираемая строка возвращается как "***";
//   - Остальные параметры, путь и хост не меняются;
//   - Пустые значения секретов тоже заменяются (чтобы не выдавать их отсутствие за наличие).
//
// Примеры:
//
//	"https://api.rawg.io/api/games?key=abc&page=2" -> "https://api.rawg.io/api/games?key=%5BREDACTED_TOKEN%5D&page=2"
//	"https://api.rawg.io/api/genres"               -> без изменений
func URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}

	q := u.Query()
	changed := false
	for _, p := range SecretParams {
		if q.Has(p) {
			q.Set(p, Token())
			changed = true
		}
	}
	if !changed {
		return raw
	}

	u.RawQuery = q.Encode()
	return u.String()
}

// Err возвращает транспортную ошибку (*url.Error) с URL, пропущенным через URL;
// прочие ошибки возвращаются без изменений. Внешние обёртки отбрасываются, так как
// их текст может повторять URL. errors.Is(err, context.DeadlineExceeded) продолжает работать.
func Err(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}

	clean := *ue
	clean.URL = URL(ue.URL)
	return &clean
}
