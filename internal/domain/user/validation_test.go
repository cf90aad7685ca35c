package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vl4ks/filmorate/internal/domain/shared"
)

var today = shared.MustParseDate("2024-06-01")

func validUser() *User {
	return &User{
		Email:    "neo@zion.org",
		Login:    "neo",
		Birthday: shared.MustParseDate("1964-09-02"),
	}
}

func TestValidateCreate(t *testing.T) {
	assert.True(t, ValidateCreate(validUser(), today).Empty())

	noBirthday := validUser()
	noBirthday.Birthday = shared.Date{}
	assert.True(t, ValidateCreate(noBirthday, today).Empty())

	tests := []struct {
		name   string
		mutate func(u *User)
		field  string
	}{
		{"blank email", func(u *User) { u.Email = " " }, "email"},
		{"email without at", func(u *User) { u.Email = "neo.zion.org" }, "email"},
		{"empty login", func(u *User) { u.Login = "" }, "login"},
		{"login with space", func(u *User) { u.Login = "mr anderson" }, "login"},
		{"login with tab", func(u *User) { u.Login = "mr\tanderson" }, "login"},
		{"birthday tomorrow", func(u *User) { u.Birthday = shared.MustParseDate("2024-06-02") }, "birthday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := validUser()
			tt.mutate(u)
			v := ValidateCreate(u, today)
			require.Len(t, v, 1)
			assert.Equal(t, tt.field, v[0].Field)
		})
	}
}

func TestApplyDefaultName(t *testing.T) {
	u := validUser()
	u.ApplyDefaultName()
	assert.Equal(t, "neo", u.Name)

	u.Name = "Thomas"
	u.ApplyDefaultName()
	assert.Equal(t, "Thomas", u.Name)
}

func TestValidateUpdate(t *testing.T) {
	existing := validUser()
	existing.ID = 1
	existing.Name = "Thomas"

	blank := ""
	v := ValidateUpdate(existing, Patch{Email: &blank}, today)
	require.Len(t, v, 1)
	assert.Equal(t, "Ошибка при обновлении email: не указан", v[0].Reason)

	login := "trinity"
	assert.True(t, ValidateUpdate(existing, Patch{Login: &login}, today).Empty())

	spaced := "the one"
	v = ValidateUpdate(existing, Patch{Login: &spaced}, today)
	require.Len(t, v, 1)
	assert.Equal(t, "login", v[0].Field)
	assert.Equal(t, "neo", existing.Login)
}

func TestPatch_ApplyTo_RestoresName(t *testing.T) {
	u := validUser()
	u.Name = "Thomas"

	empty := ""
	Patch{Name: &empty}.ApplyTo(u)
	assert.Equal(t, "neo", u.Name)

	login := "anderson"
	Patch{Login: &login}.ApplyTo(u)
	assert.Equal(t, "neo", u.Name, "existing non-blank name is kept")
}

func TestNotFound(t *testing.T) {
	err := NotFound(999)
	assert.True(t, shared.IsNotFound(err))
	assert.Equal(t, "Пользователь с id = 999 не найден", err.Message)
}
