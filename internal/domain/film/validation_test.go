package film

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vl4ks/filmorate/internal/domain/shared"
)

var today = shared.MustParseDate("2024-06-01")

func validFilm() *Film {
	return &Film{
		Name:        "Matrix",
		Description: "A hacker learns the truth.",
		ReleaseDate: shared.MustParseDate("1999-03-31"),
		Duration:    136,
		MpaID:       4,
		GenreIDs:    []int64{6},
	}
}

func TestValidateCreate_Valid(t *testing.T) {
	assert.True(t, ValidateCreate(validFilm(), today).Empty())

	f := validFilm()
	f.ReleaseDate = EarliestReleaseDate
	f.Description = strings.Repeat("я", MaxDescriptionLength)
	assert.True(t, ValidateCreate(f, today).Empty())

	f.ReleaseDate = today
	assert.True(t, ValidateCreate(f, today).Empty())
}

func TestValidateCreate_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *Film)
		field  string
	}{
		{"empty name", func(f *Film) { f.Name = "" }, "name"},
		{"blank name", func(f *Film) { f.Name = "   " }, "name"},
		{"description of 201 chars", func(f *Film) { f.Description = strings.Repeat("a", 201) }, "description"},
		{"release before cinema", func(f *Film) { f.ReleaseDate = shared.MustParseDate("1895-12-27") }, "releaseDate"},
		{"release in future", func(f *Film) { f.ReleaseDate = shared.MustParseDate("2024-06-02") }, "releaseDate"},
		{"release missing", func(f *Film) { f.ReleaseDate = shared.Date{} }, "releaseDate"},
		{"zero duration", func(f *Film) { f.Duration = 0 }, "duration"},
		{"negative duration", func(f *Film) { f.Duration = -1 }, "duration"},
		{"missing mpa", func(f *Film) { f.MpaID = 0 }, "mpa"},
		{"bad genre id", func(f *Film) { f.GenreIDs = []int64{1, -2} }, "genres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFilm()
			tt.mutate(f)

			v := ValidateCreate(f, today)
			require.Len(t, v, 1)
			assert.Equal(t, tt.field, v[0].Field)

			err := v.Err("film", "Create")
			assert.True(t, shared.IsValidation(err))
		})
	}
}

func TestValidateCreate_FirstViolationWins(t *testing.T) {
	f := validFilm()
	f.Name = ""
	f.Duration = 0

	v := ValidateCreate(f, today)
	assert.Len(t, v, 2)
	assert.Equal(t, "name", shared.FieldOf(v.Err("film", "Create")))
}

func TestValidateUpdate_MergesBeforeChecking(t *testing.T) {
	existing := validFilm()
	existing.ID = 1

	duration := -1
	v := ValidateUpdate(existing, Patch{Duration: &duration}, today)
	require.Len(t, v, 1)
	assert.Equal(t, "duration", v[0].Field)
	assert.Equal(t, 136, existing.Duration, "existing film must stay untouched")

	name := "Matrix Reloaded"
	assert.True(t, ValidateUpdate(existing, Patch{Name: &name}, today).Empty())
}

func TestPatch_ApplyTo(t *testing.T) {
	f := validFilm()
	name := "Alien"
	genres := []int64{4, 2, 4}

	Patch{Name: &name, GenreIDs: &genres}.ApplyTo(f)

	assert.Equal(t, "Alien", f.Name)
	assert.Equal(t, []int64{2, 4}, f.GenreIDs)
	assert.Equal(t, 136, f.Duration)
	assert.True(t, Patch{}.IsEmpty())
}

func TestClone_IsIndependent(t *testing.T) {
	f := validFilm()
	c := f.Clone()
	c.GenreIDs[0] = 99

	assert.Equal(t, int64(6), f.GenreIDs[0])
}

func TestValidateReferenceNames(t *testing.T) {
	assert.False(t, ValidateGenre(&Genre{Name: " "}).Empty())
	assert.True(t, ValidateGenre(&Genre{Name: "Драма"}).Empty())
	assert.False(t, ValidateRating(&MpaRating{}).Empty())
	assert.True(t, ValidateRating(&MpaRating{Name: "PG-13"}).Empty())
}

func TestErrorKinds(t *testing.T) {
	assert.True(t, shared.IsNotFound(NotFound(1)))
	assert.True(t, shared.IsNotFound(GenreNotFound(1)))
	assert.True(t, shared.IsNotFound(RatingNotFound(1)))
	assert.True(t, shared.IsValidation(UnknownGenre(1)))
	assert.Equal(t, "mpa", UnknownRating(7).Field)
	assert.True(t, shared.IsInUse(RatingInUse(1)))
	assert.True(t, shared.IsAlreadyExists(GenreExists("Драма")))
	assert.Equal(t, "Фильм с id = 7 не найден", NotFound(7).Message)
}
