package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"wardrobeapi/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type WeatherController struct {
	Weather services.WeatherProvider
}

func (controller *WeatherController) WeatherRoutes(g *echo.Group) {
	g.GET("", controller.CurrentWeather)
}

// CurrentWeather serves ?city= or ?lat=&lon=.
func (controller *WeatherController) CurrentWeather(c echo.Context) error {
	if controller.Weather == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Weather is not available"})
	}
	ctx := c.Request().Context()

	var (
		data *services.WeatherData
		err  error
	)
	city := strings.TrimSpace(c.QueryParam("city"))
	switch {
	case city != "":
		data, err = controller.Weather.ByCity(ctx, city)
	case c.QueryParam("lat") != "" && c.QueryParam("lon") != "":
		lat, latErr := strconv.ParseFloat(c.QueryParam("lat"), 64)
		lon, lonErr := strconv.ParseFloat(c.QueryParam("lon"), 64)
		if latErr != nil || lonErr != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid coordinates"})
		}
		data, err = controller.Weather.ByCoords(ctx, lat, lon)
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Provide city or lat and lon"})
	}

	if errors.Is(err, services.ErrCityNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "City not found"})
	}
	if err != nil {
		zap.S().Warnf("[Weather] %v", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Weather service is unavailable, please try again later"})
	}
	return c.JSON(http.StatusOK, data)
}
