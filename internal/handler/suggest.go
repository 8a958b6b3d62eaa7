package handler

import (
	"errors"
	"net/http"

	"github.com/abdusco/shortly/internal"
	"github.com/abdusco/shortly/internal/suggest"
	"github.com/abdusco/shortly/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type SuggestHandler struct {
	client *suggest.Client
}

func NewSuggestHandler(client *suggest.Client) *SuggestHandler {
	return &SuggestHandler{client: client}
}

type SuggestRequest struct {
	URL string `json:"url"`
}

type SuggestResponse struct {
	Aliases []string `json:"aliases"`
}

func (h *SuggestHandler) SuggestAliases(c echo.Context) error {
	ctx := c.Request().Context()

	var req SuggestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	if err := validation.ValidateURL(req.URL); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	aliases, err := h.client.SuggestAliases(ctx, req.URL)
	if err != nil {
		if errors.Is(err, internal.ErrSuggestFailed) {
			return echo.NewHTTPError(http.StatusBadGateway, "alias suggestion failed")
		}
		log.Error().Err(err).Msg("failed to suggest aliases")
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, SuggestResponse{Aliases: aliases})
}
