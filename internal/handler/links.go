package handler

import (
	"errors"
	"net/http"

	"github.com/abdusco/shortly/internal"
	"github.com/abdusco/shortly/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

type LinkHandler struct {
	store *store.Store
}

func NewLinkHandler(store *store.Store) *LinkHandler {
	return &LinkHandler{store: store}
}

type CreateLinkRequest struct {
	URL   string `json:"url"`
	Alias string `json:"alias"`
}

type LinkResponse struct {
	ID          string        `json:"id"`
	OriginalURL string        `json:"originalUrl"`
	ShortURL    string        `json:"shortUrl"`
	CreatedAt   internal.Date `json:"createdAt"`
	Clicks      int64         `json:"clicks"`
	Alias       string        `json:"alias,omitempty"`
}

// API Response wrappers
type CreateLinkResponse struct {
	Link LinkResponse `json:"link"`
}

type ListLinksResponse struct {
	Links []LinkResponse `json:"links"`
}

func (h *LinkHandler) CreateLink(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateLinkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	link, err := h.store.Create(ctx, req.URL, req.Alias)
	if err != nil {
		switch {
		case errors.Is(err, internal.ErrInvalidURL):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, internal.ErrAliasTaken):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			log.Error().Err(err).Str("alias", req.Alias).Msg("failed to create link")
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, CreateLinkResponse{Link: toResponse(*link)})
}

func (h *LinkHandler) ListLinks(c echo.Context) error {
	ctx := c.Request().Context()

	links, err := h.store.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to list links")
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	responses := lo.Map(links, func(link internal.ShortLink, _ int) LinkResponse {
		return toResponse(link)
	})

	return c.JSON(http.StatusOK, ListLinksResponse{Links: responses})
}

func (h *LinkHandler) DeleteLink(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	if err := h.store.Delete(ctx, id); err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to delete link")
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *LinkHandler) Redirect(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	log.Debug().Str("id", id).Msg("redirect request")

	link, err := h.store.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrLinkNotFound) {
			log.Warn().Str("id", id).Msg("link not found")
			return echo.NewHTTPError(http.StatusNotFound, "link not found")
		}
		log.Error().Err(err).Str("id", id).Msg("failed to resolve link")
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	log.Info().Str("id", id).Int64("clicks", link.Clicks).Msg("redirecting link")

	// 302 so repeat visits reach the server and get counted
	return c.Redirect(http.StatusFound, link.OriginalURL)
}

func toResponse(link internal.ShortLink) LinkResponse {
	return LinkResponse{
		ID:          link.ID,
		OriginalURL: link.OriginalURL,
		ShortURL:    link.ShortURL,
		CreatedAt:   link.CreatedAt,
		Clicks:      link.Clicks,
		Alias:       link.Alias,
	}
}
