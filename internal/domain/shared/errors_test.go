package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_KindMatching(t *testing.T) {
	err := NewDomainError("film", "Find", ErrNotFound, "Фильм с id = 1 не найден")

	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.True(t, errors.Is(fmt.Errorf("handler: %w", err), ErrNotFound))
	assert.Equal(t, "film.Find: Фильм с id = 1 не найден", err.Error())
}

func TestWrapError_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapError("film", "Create", ErrInternal, "storage failure", cause)

	assert.True(t, IsInternal(err))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestInternal_PassesDomainErrorsThrough(t *testing.T) {
	notFound := NewDomainError("user", "Find", ErrNotFound, "missing")
	assert.Same(t, notFound, Internal("user", "Update", notFound))

	raw := Internal("user", "Update", errors.New("boom"))
	assert.True(t, IsInternal(raw))
	assert.Nil(t, Internal("user", "Update", nil))
}

func TestViolations_FailFast(t *testing.T) {
	var v Violations
	assert.True(t, v.Empty())
	assert.NoError(t, v.Err("film", "Validate"))

	v.Add("name", "Название фильма не должно быть пустым.")
	v.Add("duration", "Продолжительность должна быть положительной.")

	err := v.Err("film", "Validate")
	assert.True(t, IsValidation(err))
	assert.Equal(t, "name", FieldOf(err))
	assert.Equal(t, "Название фильма не должно быть пустым.", MessageOf(err))
}

func TestClassification(t *testing.T) {
	assert.True(t, IsAlreadyExists(NewDomainError("social", "AddLike", ErrAlreadyExists, "dup")))
	assert.True(t, IsInUse(NewDomainError("mpa", "Delete", ErrInUse, "used")))
	assert.True(t, IsInternal(WrapError("redis", "Tx", ErrInternal, "lost race", ErrConcurrentModification)))
	assert.Equal(t, "Внутренняя ошибка сервера", MessageOf(errors.New("plain")))
	assert.Empty(t, FieldOf(errors.New("plain")))
}
