package user

import (
	"strings"
	"unicode"

	"github.com/vl4ks/filmorate/internal/domain/shared"
)

// ValidateCreate проверяет нового пользователя до подстановки имени.
func ValidateCreate(u *User, today shared.Date) shared.Violations {
	return validateFields(u, today)
}

// ValidateUpdate проверяет патч и результат его наложения.
// Явно переданный пустой email отклоняется отдельным сообщением.
func ValidateUpdate(existing *User, p Patch, today shared.Date) shared.Violations {
	var v shared.Violations
	if p.Email != nil && strings.TrimSpace(*p.Email) == "" {
		v.Add("email", "Ошибка при обновлении email: не указан")
		return v
	}

	merged := existing.Clone()
	p.ApplyTo(merged)
	return validateFields(merged, today)
}

func validateFields(u *User, today shared.Date) shared.Violations {
	var v shared.Violations

	switch {
	case strings.TrimSpace(u.Email) == "":
		v.Add("email", "Имейл должен быть указан")
	case !strings.Contains(u.Email, "@"):
		v.Add("email", "Имейл должен содержать символ @")
	}
	switch {
	case u.Login == "":
		v.Add("login", "Логин не может быть пустым.")
	case strings.IndexFunc(u.Login, unicode.IsSpace) >= 0:
		v.Add("login", "Логин не может содержать пробелов.")
	}
	if !u.Birthday.IsZero() && u.Birthday.After(today) {
		v.Add("birthday", "Дата рождения не может быть в будущем.")
	}

	return v
}
