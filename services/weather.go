package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"wardrobeapi/metrics"
	"wardrobeapi/outfits"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	"go.uber.org/zap"
)

const weatherCacheTTL = 10 * time.Minute

var ErrCityNotFound = errors.New("weather: city not found")

type WeatherData struct {
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Icon        string  `json:"icon"`
	City        string  `json:"city"`
}

func (w *WeatherData) Snapshot() *outfits.WeatherSnapshot {
	if w == nil {
		return nil
	}
	return &outfits.WeatherSnapshot{
		Temperature: w.Temperature,
		Condition:   w.Condition,
		Description: w.Description,
		Humidity:    w.Humidity,
		WindSpeed:   w.WindSpeed,
		City:        w.City,
	}
}

type WeatherProvider interface {
	ByCity(ctx context.Context, city string) (*WeatherData, error)
	ByCoords(ctx context.Context, lat, lon float64) (*WeatherData, error)
}

type weatherCode struct {
	upTo        int
	condition   string
	description string
	icon        string
}

// Open-Meteo WMO weather codes, matched by the first upper bound reached.
var weatherCodes = []weatherCode{
	{0, "Clear", "clear sky", "01d"},
	{3, "Clouds", "partly cloudy", "02d"},
	{48, "Fog", "fog", "50d"},
	{57, "Drizzle", "light drizzle", "09d"},
	{67, "Rain", "rain", "10d"},
	{77, "Snow", "snow", "13d"},
	{82, "Rain", "rain showers", "09d"},
	{86, "Snow", "snow showers", "13d"},
	{99, "Thunderstorm", "thunderstorm", "11d"},
}

// DescribeWeatherCode maps a WMO code to condition, description and icon.
func DescribeWeatherCode(code int) (string, string, string) {
	for _, c := range weatherCodes {
		if code <= c.upTo {
			return c.condition, c.description, c.icon
		}
	}
	return "Unknown", "unknown", "01d"
}

// OpenMeteoService looks weather up on Open-Meteo and keeps answers for ten minutes.
type OpenMeteoService struct {
	baseURL      string
	geocodingURL string
	httpClient   *http.Client

	byCity   *cache.LoadableCache[*WeatherData]
	byCoords *cache.LoadableCache[*WeatherData]
}

func NewOpenMeteoService() (*OpenMeteoService, error) {
	ristrettoStore, err := newRistrettoStore(1e5, 1<<20)
	if err != nil {
		return nil, err
	}

	s := &OpenMeteoService{
		baseURL:      strings.TrimRight(GetEnv("WEATHER_BASE_URL", "https://api.open-meteo.com/v1"), "/"),
		geocodingURL: strings.TrimRight(GetEnv("GEOCODING_BASE_URL", "https://geocoding-api.open-meteo.com/v1"), "/"),
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}

	expiry := []store.Option{store.WithExpiration(weatherCacheTTL), store.WithCost(1)}

	s.byCity = cache.NewLoadable[*WeatherData](func(ctx context.Context, key any) (*WeatherData, []store.Option, error) {
		city := strings.TrimPrefix(key.(string), "city:")
		data, err := s.fetchByCity(ctx, city)
		return data, expiry, err
	}, cache.New[*WeatherData](ristrettoStore))

	s.byCoords = cache.NewLoadable[*WeatherData](func(ctx context.Context, key any) (*WeatherData, []store.Option, error) {
		var lat, lon float64
		if _, err := fmt.Sscanf(key.(string), "coords:%f,%f", &lat, &lon); err != nil {
			return nil, nil, fmt.Errorf("weather: bad cache key %v: %w", key, err)
		}
		data, err := s.fetchByCoords(ctx, lat, lon, "")
		return data, expiry, err
	}, cache.New[*WeatherData](ristrettoStore))

	return s, nil
}

func (s *OpenMeteoService) ByCity(ctx context.Context, city string) (*WeatherData, error) {
	city = strings.Join(strings.Fields(strings.ToLower(city)), " ")
	if city == "" {
		return nil, ErrCityNotFound
	}
	data, err := s.byCity.Get(ctx, "city:"+city)
	recordWeatherLookup(err)
	return data, err
}

func (s *OpenMeteoService) ByCoords(ctx context.Context, lat, lon float64) (*WeatherData, error) {
	data, err := s.byCoords.Get(ctx, fmt.Sprintf("coords:%.3f,%.3f", lat, lon))
	recordWeatherLookup(err)
	return data, err
}

func recordWeatherLookup(err error) {
	switch {
	case err == nil:
		metrics.WeatherLookups.WithLabelValues("ok").Inc()
	case errors.Is(err, ErrCityNotFound):
		metrics.WeatherLookups.WithLabelValues("not_found").Inc()
	default:
		zap.S().Warnf("[Weather] lookup failed: %v", err)
		metrics.WeatherLookups.WithLabelValues("error").Inc()
	}
}

func (s *OpenMeteoService) getJSON(ctx context.Context, endpoint string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

func (s *OpenMeteoService) fetchByCity(ctx context.Context, city string) (*WeatherData, error) {
	query := url.Values{}
	query.Set("name", city)
	query.Set("count", "1")
	query.Set("language", "en")
	query.Set("format", "json")

	var geo geocodingResponse
	if err := s.getJSON(ctx, s.geocodingURL+"/search?"+query.Encode(), &geo); err != nil {
		return nil, fmt.Errorf("weather: failed to geocode %q: %w", city, err)
	}
	if len(geo.Results) == 0 {
		return nil, ErrCityNotFound
	}

	place := geo.Results[0]
	label := place.Name
	if place.Country != "" {
		label += ", " + place.Country
	}
	return s.fetchByCoords(ctx, place.Latitude, place.Longitude, label)
}

type forecastResponse struct {
	Current *struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		WeatherCode int     `json:"weather_code"`
		WindSpeed   float64 `json:"wind_speed_10m"`
	} `json:"current"`
}

func (s *OpenMeteoService) fetchByCoords(ctx context.Context, lat, lon float64, label string) (*WeatherData, error) {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("current", "temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m")
	query.Set("timezone", "auto")

	var forecast forecastResponse
	if err := s.getJSON(ctx, s.baseURL+"/forecast?"+query.Encode(), &forecast); err != nil {
		return nil, fmt.Errorf("weather: failed to fetch forecast: %w", err)
	}
	if forecast.Current == nil {
		return nil, errors.New("weather: failed to fetch forecast: no current conditions")
	}

	if label == "" {
		label = "Current Location"
	}
	condition, description, icon := DescribeWeatherCode(forecast.Current.WeatherCode)
	return &WeatherData{
		Temperature: math.Round(forecast.Current.Temperature),
		Condition:   condition,
		Description: description,
		Humidity:    forecast.Current.Humidity,
		WindSpeed:   math.Round(forecast.Current.WindSpeed*10) / 10,
		Icon:        icon,
		City:        label,
	}, nil
}
