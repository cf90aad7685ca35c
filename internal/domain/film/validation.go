package film

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vl4ks/filmorate/internal/domain/shared"
)

// MaxDescriptionLength — предельная длина описания в символах.
const MaxDescriptionLength = 200

// EarliestReleaseDate — день первого публичного киносеанса.
var EarliestReleaseDate = shared.NewDate(1895, 12, 28)

// ValidateCreate проверяет новый фильм. Нарушения перечисляются в порядке полей.
func ValidateCreate(f *Film, today shared.Date) shared.Violations {
	return validateFields(f, today)
}

// ValidateUpdate проверяет результат наложения патча на существующий фильм.
// Сам existing не изменяется.
func ValidateUpdate(existing *Film, p Patch, today shared.Date) shared.Violations {
	merged := existing.Clone()
	p.ApplyTo(merged)
	return validateFields(merged, today)
}

func validateFields(f *Film, today shared.Date) shared.Violations {
	var v shared.Violations

	if strings.TrimSpace(f.Name) == "" {
		v.Add("name", "Название фильма не должно быть пустым.")
	}
	if utf8.RuneCountInString(f.Description) > MaxDescriptionLength {
		v.Add("description", fmt.Sprintf("Описание не должно превышать %d символов.", MaxDescriptionLength))
	}
	switch {
	case f.ReleaseDate.IsZero():
		v.Add("releaseDate", "Дата релиза должна быть указана.")
	case f.ReleaseDate.Before(EarliestReleaseDate):
		v.Add("releaseDate", "Дата релиза - не раньше 28 декабря 1895 года.")
	case f.ReleaseDate.After(today):
		v.Add("releaseDate", "Дата выхода фильма должна быть в прошлом или настоящем.")
	}
	if f.Duration <= 0 {
		v.Add("duration", "Продолжительность фильма должна быть положительной.")
	}
	if f.MpaID <= 0 {
		v.Add("mpa", "Рейтинг MPA должен быть указан.")
	}
	for _, id := range f.GenreIDs {
		if id <= 0 {
			v.Add("genres", fmt.Sprintf("Неверный id жанра: %d", id))
			break
		}
	}

	return v
}

// ValidateGenre проверяет запись справочника жанров.
func ValidateGenre(g *Genre) shared.Violations {
	var v shared.Violations
	if strings.TrimSpace(g.Name) == "" {
		v.Add("name", "Название жанра не может быть пустым")
	}
	return v
}

// ValidateRating проверяет запись справочника рейтингов.
func ValidateRating(r *MpaRating) shared.Violations {
	var v shared.Violations
	if strings.TrimSpace(r.Name) == "" {
		v.Add("name", "Название рейтинга не может быть пустым")
	}
	return v
}
