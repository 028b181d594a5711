package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-search-app/internal/config"
	"github.com/vzahanych/weather-search-app/internal/pipeline"
	"github.com/vzahanych/weather-search-app/internal/presenter"
	"github.com/vzahanych/weather-search-app/internal/server/utils"
	"github.com/vzahanych/weather-search-app/internal/weather"
	"go.uber.org/zap"
)

type WeatherHandler struct {
	pipeline *pipeline.Pipeline
	display  *config.DisplayConfig
	logger   *zap.Logger
}

func NewWeatherHandler(p *pipeline.Pipeline, display *config.DisplayConfig, logger *zap.Logger) *WeatherHandler {
	return &WeatherHandler{
		pipeline: p,
		display:  display,
		logger:   logger,
	}
}

// GetWeather renders the current view without starting a search.
func (h *WeatherHandler) GetWeather(c *gin.Context) {
	unit, ok := h.bindUnit(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.render(h.pipeline.State(), unit))
}

// Search runs the pipeline for the posted query and renders the resulting view.
func (h *WeatherHandler) Search(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := h.logger.With(zap.String("request_id", utils.GetRequestIDFromGinContext(c)))

	unit, ok := h.bindUnit(c)
	if !ok {
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reqLogger.Warn("Invalid search body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Code:    "INVALID_BODY",
			Details: err.Error(),
		})
		return
	}

	if errs := utils.ValidateStruct(req); errs != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid search query",
			Code:    "INVALID_QUERY",
			Details: errs,
		})
		return
	}

	reqLogger.Info("Processing search request", zap.String("query", req.Query))

	state := h.pipeline.Run(ctx, req.Query)

	status := http.StatusOK
	switch state.Error {
	case weather.ErrorPlaceNotFound:
		status = http.StatusNotFound
	case weather.ErrorFetchFailed:
		status = http.StatusBadGateway
	}

	c.JSON(status, h.render(state, unit))
}

func (h *WeatherHandler) bindUnit(c *gin.Context) (weather.DisplayUnit, bool) {
	var req WeatherRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request parameters",
			Code:    "INVALID_PARAMS",
			Details: err.Error(),
		})
		return "", false
	}

	if errs := utils.ValidateStruct(req); errs != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request parameters",
			Code:    "INVALID_PARAMS",
			Details: errs,
		})
		return "", false
	}

	if req.Unit == "" {
		req.Unit = h.display.Unit
	}
	unit, _ := weather.ParseDisplayUnit(req.Unit)
	return unit, true
}

func (h *WeatherHandler) render(state weather.ViewState, unit weather.DisplayUnit) WeatherResponse {
	return WeatherResponse{
		Presentation: presenter.Present(state, unit, h.display.IconURL),
		Theme:        string(h.display.ThemePreference()),
	}
}
