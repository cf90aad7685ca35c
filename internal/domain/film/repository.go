package film

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
//
// Каждый метод, меняющий данные, атомарен относительно хранилища:
// проверка ссылок и запись выполняются как одна операция.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateFunc получает копию текущего фильма и изменяет её.
// Ошибка из функции отменяет обновление и возвращается как есть.
type UpdateFunc func(f *Film) error

// Repository определяет операции над фильмами.
type Repository interface {
	// ─────────────────────────────────────────────────────────────────────────
	// Commands
	// ─────────────────────────────────────────────────────────────────────────

	// Create сохраняет фильм и присваивает ему ID.
	// Возвращает UnknownRating / UnknownGenre, если ссылки не существуют.
	Create(ctx context.Context, f *Film) error

	// Update выполняет read-modify-write одного фильма.
	// Возвращает NotFound, если фильма нет.
	Update(ctx context.Context, id int64, fn UpdateFunc) (*Film, error)

	// Delete удаляет фильм вместе с его лайками и связями с жанрами.
	Delete(ctx context.Context, id int64) error

	// SetGenres заменяет набор жанров фильма по принципу «всё или ничего».
	SetGenres(ctx context.Context, id int64, genreIDs []int64) (*Film, error)

	// SetRating меняет рейтинг MPA фильма.
	SetRating(ctx context.Context, id int64, ratingID int64) (*Film, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Queries
	// ─────────────────────────────────────────────────────────────────────────

	// FindByID возвращает фильм или NotFound.
	FindByID(ctx context.Context, id int64) (*Film, error)

	// FindByIDs возвращает найденные фильмы в порядке запрошенных ID.
	// Отсутствующие ID пропускаются.
	FindByIDs(ctx context.Context, ids []int64) ([]*Film, error)

	// FindAll возвращает все фильмы по возрастанию ID.
	FindAll(ctx context.Context) ([]*Film, error)
}

// GenreRepository — справочник жанров.
type GenreRepository interface {
	// Create присваивает ID. Возвращает GenreExists при повторе названия.
	Create(ctx context.Context, g *Genre) error

	// Delete удаляет жанр и его связи с фильмами.
	Delete(ctx context.Context, id int64) error

	FindByID(ctx context.Context, id int64) (*Genre, error)
	FindByIDs(ctx context.Context, ids []int64) ([]*Genre, error)
	FindByName(ctx context.Context, name string) (*Genre, error)
	FindAll(ctx context.Context) ([]*Genre, error)
}

// RatingRepository — справочник рейтингов MPA.
type RatingRepository interface {
	// Create присваивает ID. Возвращает RatingExists при повторе названия.
	Create(ctx context.Context, r *MpaRating) error

	// Delete удаляет рейтинг. Возвращает RatingInUse, если на него ссылаются фильмы.
	Delete(ctx context.Context, id int64) error

	FindByID(ctx context.Context, id int64) (*MpaRating, error)
	FindByName(ctx context.Context, name string) (*MpaRating, error)
	FindAll(ctx context.Context) ([]*MpaRating, error)
}
