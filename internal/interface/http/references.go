package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vl4ks/filmorate/internal/application/command"
)

// ── жанры ───────────────────────────────────────────────────────────────────

func (s *Server) handleListGenres(c *gin.Context) {
	genres, err := s.deps.Queries.ListGenres.Handle(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, genreList(genres))
}

func (s *Server) handleGetGenre(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	g, err := s.deps.Queries.GetGenre.Handle(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, genreDTO(*g))
}

func (s *Server) handleCreateGenre(c *gin.Context) {
	var req ReferenceRequest
	if !bindJSON(c, &req) {
		return
	}
	g, err := s.deps.Commands.CreateGenre.Handle(c.Request.Context(), command.CreateGenreCommand{Name: req.Name})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, genreDTO(*g))
}

func (s *Server) handleDeleteGenre(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.deps.Commands.DeleteGenre.Handle(c.Request.Context(), command.DeleteGenreCommand{ID: id}); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── рейтинги MPA ────────────────────────────────────────────────────────────

func (s *Server) handleListRatings(c *gin.Context) {
	ratings, err := s.deps.Queries.ListRatings.Handle(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ratingList(ratings))
}

func (s *Server) handleGetRating(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := s.deps.Queries.GetRating.Handle(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ratingDTO(*r))
}

func (s *Server) handleCreateRating(c *gin.Context) {
	var req ReferenceRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := s.deps.Commands.CreateRating.Handle(c.Request.Context(), command.CreateRatingCommand{Name: req.Name})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ratingDTO(*r))
}

// handleDeleteRating answers 409 while any film still carries the rating.
func (s *Server) handleDeleteRating(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.deps.Commands.DeleteRating.Handle(c.Request.Context(), command.DeleteRatingCommand{ID: id}); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
