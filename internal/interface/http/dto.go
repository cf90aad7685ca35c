package http

import (
	"github.com/vl4ks/filmorate/internal/application/query"
	"github.com/vl4ks/filmorate/internal/domain/film"
	"github.com/vl4ks/filmorate/internal/domain/shared"
	"github.com/vl4ks/filmorate/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFERENCES
// ══════════════════════════════════════════════════════════════════════════════

// RefDTO is a genre or MPA rating. Requests only read the id.
type RefDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// ReferenceRequest is the body of POST /genres and POST /mpa.
type ReferenceRequest struct {
	Name string `json:"name"`
}

func genreDTO(g film.Genre) RefDTO      { return RefDTO{ID: g.ID, Name: g.Name} }
func ratingDTO(r film.MpaRating) RefDTO { return RefDTO{ID: r.ID, Name: r.Name} }

func genreList(gs []*film.Genre) []RefDTO {
	out := make([]RefDTO, len(gs))
	for i, g := range gs {
		out[i] = genreDTO(*g)
	}
	return out
}

func ratingList(rs []*film.MpaRating) []RefDTO {
	out := make([]RefDTO, len(rs))
	for i, r := range rs {
		out[i] = ratingDTO(*r)
	}
	return out
}

func refIDs(refs []RefDTO) []int64 {
	ids := make([]int64, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	return ids
}

// ══════════════════════════════════════════════════════════════════════════════
// FILMS
// ══════════════════════════════════════════════════════════════════════════════

// FilmRequest is the body of POST /films and PUT /films. Pointer fields
// distinguish "absent" from "zero" for the partial merge on update.
type FilmRequest struct {
	ID          *int64       `json:"id"`
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	ReleaseDate *shared.Date `json:"releaseDate"`
	Duration    *int         `json:"duration"`
	Mpa         *RefDTO      `json:"mpa"`
	Genres      *[]RefDTO    `json:"genres"`
}

// FilmResponse is a film with resolved references and its like count.
type FilmResponse struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ReleaseDate shared.Date `json:"releaseDate"`
	Duration    int         `json:"duration"`
	Mpa         RefDTO      `json:"mpa"`
	Genres      []RefDTO    `json:"genres"`
	LikesCount  int         `json:"likesCount"`
}

// LikesResponse is the body of GET /films/{id}/likes.
type LikesResponse struct {
	FilmID int64 `json:"filmId"`
	Likes  int   `json:"likes"`
}

func filmResponse(v query.FilmView) FilmResponse {
	genres := make([]RefDTO, len(v.Genres))
	for i, g := range v.Genres {
		genres[i] = genreDTO(g)
	}
	return FilmResponse{
		ID:          v.Film.ID,
		Name:        v.Film.Name,
		Description: v.Film.Description,
		ReleaseDate: v.Film.ReleaseDate,
		Duration:    v.Film.Duration,
		Mpa:         ratingDTO(v.Mpa),
		Genres:      genres,
		LikesCount:  v.Likes,
	}
}

func filmList(views []query.FilmView) []FilmResponse {
	out := make([]FilmResponse, len(views))
	for i, v := range views {
		out[i] = filmResponse(v)
	}
	return out
}

// patch converts the request into a merge patch. The id is not part of it.
func (r FilmRequest) patch() film.Patch {
	p := film.Patch{
		Name:        r.Name,
		Description: r.Description,
		ReleaseDate: r.ReleaseDate,
		Duration:    r.Duration,
	}
	if r.Mpa != nil {
		p.MpaID = &r.Mpa.ID
	}
	if r.Genres != nil {
		ids := refIDs(*r.Genres)
		p.GenreIDs = &ids
	}
	return p
}

// ══════════════════════════════════════════════════════════════════════════════
// USERS
// ══════════════════════════════════════════════════════════════════════════════

// UserRequest is the body of POST /users and PUT /users.
type UserRequest struct {
	ID       *int64       `json:"id"`
	Email    *string      `json:"email"`
	Login    *string      `json:"login"`
	Name     *string      `json:"name"`
	Birthday *shared.Date `json:"birthday"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       int64       `json:"id"`
	Email    string      `json:"email"`
	Login    string      `json:"login"`
	Name     string      `json:"name"`
	Birthday shared.Date `json:"birthday"`
}

func userResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		Login:    u.Login,
		Name:     u.Name,
		Birthday: u.Birthday,
	}
}

func userList(us []*user.User) []UserResponse {
	out := make([]UserResponse, len(us))
	for i, u := range us {
		out[i] = userResponse(u)
	}
	return out
}

func (r UserRequest) patch() user.Patch {
	return user.Patch{
		Email:    r.Email,
		Login:    r.Login,
		Name:     r.Name,
		Birthday: r.Birthday,
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
