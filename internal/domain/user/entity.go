// Package user содержит доменную модель пользователя сервиса.
// Связи пользователя (лайки, друзья) живут в пакете social.
package user

import (
	"fmt"
	"strings"

	"github.com/vl4ks/filmorate/internal/domain/shared"
)

// User представляет зарегистрированного пользователя.
type User struct {
	ID       int64
	Email    string
	Login    string
	Name     string
	Birthday shared.Date // нулевое значение — дата не указана
}

// Clone возвращает копию пользователя.
func (u *User) Clone() *User {
	c := *u
	return &c
}

// ApplyDefaultName подставляет логин вместо пустого имени.
func (u *User) ApplyDefaultName() {
	if strings.TrimSpace(u.Name) == "" {
		u.Name = u.Login
	}
}

// Patch описывает частичное обновление: nil означает «не менять».
type Patch struct {
	Email    *string
	Login    *string
	Name     *string
	Birthday *shared.Date
}

// ApplyTo накладывает заданные поля на пользователя и
// восстанавливает имя по логину, если оно оказалось пустым.
func (p Patch) ApplyTo(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Login != nil {
		u.Login = *p.Login
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Birthday != nil {
		u.Birthday = *p.Birthday
	}
	u.ApplyDefaultName()
}

// NotFound — пользователь с указанным id отсутствует.
func NotFound(id int64) *shared.DomainError {
	return shared.NewDomainError("user", "Find", shared.ErrNotFound,
		fmt.Sprintf("Пользователь с id = %d не найден", id))
}
