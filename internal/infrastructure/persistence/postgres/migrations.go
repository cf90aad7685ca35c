package postgres

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_reference_tables",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_films_and_users",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_relations",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
		{
			Version: 4,
			Name:    "unbounded_text_columns",
			UpSQL:   migration004Up,
			DownSQL: migration004Down,
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: REFERENCE TABLES
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS mpa_ratings (
    id   BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name VARCHAR(64) NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS genres (
    id   BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name VARCHAR(64) NOT NULL UNIQUE
);
`

const migration001Down = `
DROP TABLE IF EXISTS genres;
DROP TABLE IF EXISTS mpa_ratings;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: FILMS AND USERS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS films (
    id           BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name         VARCHAR(255) NOT NULL,
    description  VARCHAR(200) NOT NULL DEFAULT '',
    release_date DATE NOT NULL,
    duration     INTEGER NOT NULL CHECK (duration > 0),
    mpa_id       BIGINT NOT NULL REFERENCES mpa_ratings(id) ON DELETE RESTRICT
);

CREATE INDEX IF NOT EXISTS idx_films_mpa ON films(mpa_id);

CREATE TABLE IF NOT EXISTS film_genres (
    film_id  BIGINT NOT NULL REFERENCES films(id) ON DELETE CASCADE,
    genre_id BIGINT NOT NULL REFERENCES genres(id) ON DELETE CASCADE,
    PRIMARY KEY (film_id, genre_id)
);

CREATE INDEX IF NOT EXISTS idx_film_genres_genre ON film_genres(genre_id);

CREATE TABLE IF NOT EXISTS users (
    id       BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    email    VARCHAR(255) NOT NULL,
    login    VARCHAR(255) NOT NULL,
    name     VARCHAR(255) NOT NULL,
    birthday DATE
);
`

const migration002Down = `
DROP TABLE IF EXISTS users;
DROP TABLE IF EXISTS film_genres;
DROP TABLE IF EXISTS films;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: LIKES AND FRIENDS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
CREATE TABLE IF NOT EXISTS likes (
    film_id BIGINT NOT NULL REFERENCES films(id) ON DELETE CASCADE,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    PRIMARY KEY (film_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_likes_user ON likes(user_id);

-- Дружба симметрична: каждая пара хранится двумя строками.
CREATE TABLE IF NOT EXISTS friends (
    user_id   BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    friend_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    PRIMARY KEY (user_id, friend_id),
    CHECK (user_id <> friend_id)
);

CREATE INDEX IF NOT EXISTS idx_friends_friend ON friends(friend_id);
`

const migration003Down = `
DROP TABLE IF EXISTS friends;
DROP TABLE IF EXISTS likes;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: UNBOUNDED TEXT COLUMNS
// ══════════════════════════════════════════════════════════════════════════════

// Длина названий и логинов не ограничена валидацией, поэтому колонки TEXT.
// Ограничение есть только у описания фильма (200 символов).
const migration004Up = `
ALTER TABLE mpa_ratings ALTER COLUMN name TYPE TEXT;
ALTER TABLE genres      ALTER COLUMN name TYPE TEXT;
ALTER TABLE films       ALTER COLUMN name TYPE TEXT;
ALTER TABLE users       ALTER COLUMN email TYPE TEXT;
ALTER TABLE users       ALTER COLUMN login TYPE TEXT;
ALTER TABLE users       ALTER COLUMN name  TYPE TEXT;
`

const migration004Down = `
ALTER TABLE users       ALTER COLUMN name  TYPE VARCHAR(255) USING left(name, 255);
ALTER TABLE users       ALTER COLUMN login TYPE VARCHAR(255) USING left(login, 255);
ALTER TABLE users       ALTER COLUMN email TYPE VARCHAR(255) USING left(email, 255);
ALTER TABLE films       ALTER COLUMN name TYPE VARCHAR(255) USING left(name, 255);
ALTER TABLE genres      ALTER COLUMN name TYPE VARCHAR(64) USING left(name, 64);
ALTER TABLE mpa_ratings ALTER COLUMN name TYPE VARCHAR(64) USING left(name, 64);
`
