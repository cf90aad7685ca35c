// Package film содержит доменную модель каталога фильмов: фильмы,
// жанры и рейтинги MPA. Здесь нет внешних зависимостей.
package film

import (
	"fmt"
	"slices"

	"github.com/vl4ks/filmorate/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Film представляет фильм каталога.
// Связи с жанрами и рейтингом хранятся как идентификаторы, не как объекты.
type Film struct {
	ID          int64
	Name        string
	Description string
	ReleaseDate shared.Date
	Duration    int // минуты
	MpaID       int64
	GenreIDs    []int64 // отсортированы, без повторов
}

// Clone возвращает независимую копию фильма.
func (f *Film) Clone() *Film {
	c := *f
	c.GenreIDs = slices.Clone(f.GenreIDs)
	return &c
}

// Genre — тематический тег фильма (многие-ко-многим).
type Genre struct {
	ID   int64
	Name string
}

// MpaRating — возрастной рейтинг MPA (многие-к-одному).
type MpaRating struct {
	ID   int64
	Name string
}

// ══════════════════════════════════════════════════════════════════════════════
// PATCH
// ══════════════════════════════════════════════════════════════════════════════

// Patch описывает частичное обновление: nil означает «не менять».
// Жанры заменяются целиком, если поле задано.
type Patch struct {
	Name        *string
	Description *string
	ReleaseDate *shared.Date
	Duration    *int
	MpaID       *int64
	GenreIDs    *[]int64
}

// IsEmpty сообщает, что патч ничего не меняет.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.ReleaseDate == nil &&
		p.Duration == nil && p.MpaID == nil && p.GenreIDs == nil
}

// ApplyTo накладывает заданные поля патча на фильм.
func (p Patch) ApplyTo(f *Film) {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.ReleaseDate != nil {
		f.ReleaseDate = *p.ReleaseDate
	}
	if p.Duration != nil {
		f.Duration = *p.Duration
	}
	if p.MpaID != nil {
		f.MpaID = *p.MpaID
	}
	if p.GenreIDs != nil {
		f.GenreIDs = NormalizeGenreIDs(*p.GenreIDs)
	}
}

// NormalizeGenreIDs сортирует идентификаторы жанров и убирает повторы.
func NormalizeGenreIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// NotFound — фильм с указанным id отсутствует.
func NotFound(id int64) *shared.DomainError {
	return shared.NewDomainError("film", "Find", shared.ErrNotFound,
		fmt.Sprintf("Фильм с id = %d не найден", id))
}

// GenreNotFound — жанр с указанным id отсутствует.
func GenreNotFound(id int64) *shared.DomainError {
	return shared.NewDomainError("genre", "Find", shared.ErrNotFound,
		fmt.Sprintf("Жанр с id = %d не найден", id))
}

// RatingNotFound — рейтинг с указанным id отсутствует.
func RatingNotFound(id int64) *shared.DomainError {
	return shared.NewDomainError("mpa", "Find", shared.ErrNotFound,
		fmt.Sprintf("Рейтинг MPA с id = %d не найден", id))
}

// UnknownGenre — фильм ссылается на несуществующий жанр.
func UnknownGenre(id int64) *shared.DomainError {
	return shared.NewValidationError("film", "CheckReferences", "genres",
		fmt.Sprintf("В БД нет жанра фильма с id %d", id))
}

// UnknownRating — фильм ссылается на несуществующий рейтинг.
func UnknownRating(id int64) *shared.DomainError {
	return shared.NewValidationError("film", "CheckReferences", "mpa",
		fmt.Sprintf("В БД нет рейтинга MPA с id %d", id))
}

// RatingInUse — рейтинг нельзя удалить, пока на него ссылаются фильмы.
func RatingInUse(id int64) *shared.DomainError {
	return shared.NewDomainError("mpa", "Delete", shared.ErrInUse,
		fmt.Sprintf("Рейтинг MPA с id = %d используется фильмами", id))
}

// GenreExists — жанр с таким названием уже есть.
func GenreExists(name string) *shared.DomainError {
	return shared.NewDomainError("genre", "Create", shared.ErrAlreadyExists,
		fmt.Sprintf("Жанр %q уже существует", name))
}

// RatingExists — рейтинг с таким названием уже есть.
func RatingExists(name string) *shared.DomainError {
	return shared.NewDomainError("mpa", "Create", shared.ErrAlreadyExists,
		fmt.Sprintf("Рейтинг MPA %q уже существует", name))
}

// GenreNameNotFound — жанра с таким названием нет.
func GenreNameNotFound(name string) *shared.DomainError {
	return shared.NewDomainError("genre", "FindByName", shared.ErrNotFound,
		fmt.Sprintf("Жанр %q не найден", name))
}

// RatingNameNotFound — рейтинга с таким названием нет.
func RatingNameNotFound(name string) *shared.DomainError {
	return shared.NewDomainError("mpa", "FindByName", shared.ErrNotFound,
		fmt.Sprintf("Рейтинг MPA %q не найден", name))
}
