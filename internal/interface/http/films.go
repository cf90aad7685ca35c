package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vl4ks/filmorate/internal/application/command"
	"github.com/vl4ks/filmorate/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// FILMS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleListFilms(c *gin.Context) {
	views, err := s.deps.Queries.ListFilms.Handle(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, filmList(views))
}

func (s *Server) handleGetFilm(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s.respondFilm(c, http.StatusOK, id)
}

func (s *Server) handleCreateFilm(c *gin.Context) {
	var req FilmRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := command.CreateFilmCommand{
		Name:        deref(req.Name),
		Description: deref(req.Description),
		ReleaseDate: deref(req.ReleaseDate),
		Duration:    deref(req.Duration),
	}
	if req.Mpa != nil {
		cmd.MpaID = req.Mpa.ID
	}
	if req.Genres != nil {
		cmd.GenreIDs = refIDs(*req.Genres)
	}

	created, err := s.deps.Commands.CreateFilm.Handle(c.Request.Context(), cmd)
	if err != nil {
		fail(c, err)
		return
	}
	s.respondFilm(c, http.StatusCreated, created.ID)
}

func (s *Server) handleUpdateFilm(c *gin.Context) {
	var req FilmRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := s.deps.Commands.UpdateFilm.Handle(c.Request.Context(), command.UpdateFilmCommand{
		ID:    deref(req.ID),
		Patch: req.patch(),
	})
	if err != nil {
		fail(c, err)
		return
	}
	s.respondFilm(c, http.StatusOK, updated.ID)
}

func (s *Server) handleDeleteFilm(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.deps.Commands.DeleteFilm.Handle(c.Request.Context(), command.DeleteFilmCommand{ID: id}); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleSetFilmGenres replaces the genre set; the body is a list of {"id": n}.
func (s *Server) handleSetFilmGenres(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var refs []RefDTO
	if !bindJSON(c, &refs) {
		return
	}

	_, err := s.deps.Commands.SetFilmGenres.Handle(c.Request.Context(), command.SetFilmGenresCommand{
		FilmID:   id,
		GenreIDs: refIDs(refs),
	})
	if err != nil {
		fail(c, err)
		return
	}
	s.respondFilm(c, http.StatusOK, id)
}

func (s *Server) handleSetFilmRating(c *gin.Context) {
	ids, ok := pathIDs(c, "id", "mpaId")
	if !ok {
		return
	}
	_, err := s.deps.Commands.SetFilmRating.Handle(c.Request.Context(), command.SetFilmRatingCommand{
		FilmID: ids[0],
		MpaID:  ids[1],
	})
	if err != nil {
		fail(c, err)
		return
	}
	s.respondFilm(c, http.StatusOK, ids[0])
}

// respondFilm renders the current view of a film.
func (s *Server) respondFilm(c *gin.Context, status int, id int64) {
	view, err := s.deps.Queries.GetFilm.Handle(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(status, filmResponse(*view))
}

// ══════════════════════════════════════════════════════════════════════════════
// LIKES & POPULARITY
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleLikeFilm(c *gin.Context) {
	ids, ok := pathIDs(c, "id", "userId")
	if !ok {
		return
	}
	err := s.deps.Commands.LikeFilm.Handle(c.Request.Context(), command.LikeCommand{FilmID: ids[0], UserID: ids[1]})
	if err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUnlikeFilm(c *gin.Context) {
	ids, ok := pathIDs(c, "id", "userId")
	if !ok {
		return
	}
	err := s.deps.Commands.UnlikeFilm.Handle(c.Request.Context(), command.LikeCommand{FilmID: ids[0], UserID: ids[1]})
	if err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleLikeCount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := s.deps.Queries.LikeCount.Handle(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, LikesResponse{FilmID: res.FilmID, Likes: res.Likes})
}

// handlePopularFilms serves GET /films/popular?count=N. A missing count means
// the default; zero or negative yields an empty list.
func (s *Server) handlePopularFilms(c *gin.Context) {
	count, ok := queryInt(c, "count")
	if !ok {
		return
	}
	views, err := s.deps.Queries.PopularFilms.Handle(c.Request.Context(), query.PopularFilmsQuery{Count: count})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, filmList(views))
}
