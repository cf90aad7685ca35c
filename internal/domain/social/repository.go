package social

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с рёбрами графа.
// Реализации находятся в infrastructure/persistence.
//
// Принципы:
// - Проверка существования концов ребра и запись выполняются атомарно
// - Ошибки концов ребра: film.NotFound / user.NotFound
// - Повтор ребра — ErrAlreadyExists, удаление отсутствующего — ErrNotFound
// ══════════════════════════════════════════════════════════════════════════════

// LikeRepository определяет операции с лайками.
type LikeRepository interface {
	// ─────────────────────────────────────────────────────────────────────────
	// Commands
	// ─────────────────────────────────────────────────────────────────────────

	// Add добавляет лайк. Возвращает LikeExists при повторе.
	Add(ctx context.Context, filmID, userID int64) error

	// Remove удаляет лайк. Возвращает LikeNotFound, если его не было.
	Remove(ctx context.Context, filmID, userID int64) error

	// ─────────────────────────────────────────────────────────────────────────
	// Queries
	// ─────────────────────────────────────────────────────────────────────────

	// Count возвращает число лайков фильма. Для удалённого фильма — film.NotFound.
	Count(ctx context.Context, filmID int64) (int, error)

	// CountMany возвращает число лайков для каждого из фильмов (0 для отсутствующих).
	CountMany(ctx context.Context, filmIDs []int64) (map[int64]int, error)

	// Popular возвращает топ фильмов по лайкам (см. RankByLikes).
	// Фильмы без лайков тоже участвуют в рейтинге.
	Popular(ctx context.Context, limit int) ([]FilmLikes, error)
}

// FriendRepository определяет операции с дружбой.
type FriendRepository interface {
	// Add создаёт дружбу в обе стороны. Возвращает FriendshipExists при повторе.
	Add(ctx context.Context, userID, friendID int64) error

	// Remove удаляет оба ребра. Возвращает FriendshipNotFound, если дружбы не было.
	Remove(ctx context.Context, userID, friendID int64) error

	// FriendIDs возвращает друзей пользователя по возрастанию ID.
	FriendIDs(ctx context.Context, userID int64) ([]int64, error)

	// CommonFriendIDs возвращает общих друзей двух пользователей по возрастанию ID.
	CommonFriendIDs(ctx context.Context, userID, otherID int64) ([]int64, error)
}
