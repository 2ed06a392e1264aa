package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/voice-assistant/internal/upstream"
)

func TestOpenWeatherFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Paris", r.URL.Query().Get("q"))
		assert.Equal(t, "secret", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		_, _ = w.Write([]byte(`{
			"name": "Paris",
			"main": {"temp": 18.5, "humidity": 72, "pressure": 1012},
			"weather": [{"main": "Clouds", "description": "broken clouds"}]
		}`))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "secret")
	p.baseURL = srv.URL

	reading, err := p.Fetch(context.Background(), "Paris")
	require.NoError(t, err)

	report := reading.Report()
	assert.Equal(t, "Paris", report.City)
	assert.Equal(t, "18.5°C", report.Temp)
	assert.Equal(t, "broken clouds", report.Desc)
	assert.Equal(t, "72%", report.Humidity)
}

func TestOpenWeatherFailures(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
		want   error
	}{
		"invalid key":   {http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key"}`, upstream.ErrUnauthorized},
		"unknown city":  {http.StatusNotFound, `{"cod":"404","message":"city not found"}`, upstream.ErrUnexpectedStatus},
		"no conditions": {http.StatusOK, `{"name":"Paris","main":{"temp":1,"humidity":2},"weather":[]}`, upstream.ErrMalformed},
		"no name":       {http.StatusOK, `{"main":{"temp":1,"humidity":2},"weather":[{"description":"x"}]}`, upstream.ErrMalformed},
		"not json":      {http.StatusOK, `oops`, upstream.ErrMalformed},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			p := NewOpenWeatherProvider(srv.Client(), "secret")
			p.baseURL = srv.URL

			_, err := p.Fetch(context.Background(), "Paris")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestOpenWeatherRequiresKey(t *testing.T) {
	_, err := NewOpenWeatherProvider(http.DefaultClient, "").Fetch(context.Background(), "Paris")
	assert.Error(t, err)
}

func TestWeatherAPIFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Oslo", r.URL.Query().Get("q"))
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{
			"location": {"name": "Oslo"},
			"current": {"temp_c": -3.0, "humidity": 80, "condition": {"text": "Light snow"}}
		}`))
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(srv.Client(), "k")
	p.baseURL = srv.URL

	reading, err := p.Fetch(context.Background(), "Oslo")
	require.NoError(t, err)
	assert.Equal(t, "weatherapi", reading.ProviderName)
	assert.Equal(t, "-3.0°C", reading.Report().Temp)
	assert.Equal(t, "light snow", reading.Report().Desc)
	assert.Equal(t, "80%", reading.Report().Humidity)
}

func newOpenMeteoServer(t *testing.T, geo, forecast string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/geo":
			assert.Equal(t, "1", r.URL.Query().Get("count"))
			_, _ = w.Write([]byte(geo))
		case "/forecast":
			assert.Equal(t, "59.91273", r.URL.Query().Get("latitude"))
			assert.Equal(t, "10.74609", r.URL.Query().Get("longitude"))
			_, _ = w.Write([]byte(forecast))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenMeteoFetch(t *testing.T) {
	srv := newOpenMeteoServer(t,
		`{"results":[{"name":"Oslo","latitude":59.91273,"longitude":10.74609}]}`,
		`{"current":{"temperature_2m":-1.4,"relative_humidity_2m":93,"weather_code":71}}`,
	)

	p := NewOpenMeteoProvider(srv.Client())
	p.baseURL = srv.URL + "/forecast"
	p.geocodeURL = srv.URL + "/geo"

	reading, err := p.Fetch(context.Background(), "oslo")
	require.NoError(t, err)

	report := reading.Report()
	assert.Equal(t, "Oslo", report.City)
	assert.Equal(t, "-1.4°C", report.Temp)
	assert.Equal(t, "snow", report.Desc)
	assert.Equal(t, "93%", report.Humidity)
}

func TestOpenMeteoFailures(t *testing.T) {
	cases := map[string]struct {
		geo, forecast string
		want          error
	}{
		"unknown city":    {`{"generationtime_ms":0.5}`, `{}`, upstream.ErrUnexpectedStatus},
		"missing current": {`{"results":[{"name":"Oslo","latitude":59.91273,"longitude":10.74609}]}`, `{}`, upstream.ErrMalformed},
		"missing code": {
			`{"results":[{"name":"Oslo","latitude":59.91273,"longitude":10.74609}]}`,
			`{"current":{"temperature_2m":1,"relative_humidity_2m":2}}`,
			upstream.ErrMalformed,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := newOpenMeteoServer(t, tc.geo, tc.forecast)

			p := NewOpenMeteoProvider(srv.Client())
			p.baseURL = srv.URL + "/forecast"
			p.geocodeURL = srv.URL + "/geo"

			_, err := p.Fetch(context.Background(), "Oslo")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDescribeWeatherCode(t *testing.T) {
	assert.Equal(t, "clear sky", describeWeatherCode(0))
	assert.Equal(t, "overcast clouds", describeWeatherCode(3))
	assert.Equal(t, "rain", describeWeatherCode(81))
	assert.Equal(t, "thunderstorm", describeWeatherCode(99))
	assert.Equal(t, "unknown", describeWeatherCode(42))
}
