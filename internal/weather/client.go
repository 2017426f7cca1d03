// Package weather is a small OpenWeatherMap client backing the
// gardening weather screen.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

type Client struct {
	baseURL string
	key     string
	http    *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		key:     apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type Current struct {
	City      string
	Temp      float64
	FeelsLike float64
	Humidity  int
	Wind      float64
	Condition string
}

type ForecastDay struct {
	Date      string
	Temp      float64
	Condition string
}

type currentWire struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	q.Set("units", "metric")
	q.Set("appid", c.key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("weather call: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read weather response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather API: HTTP %d", resp.StatusCode)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode weather response: %w", err)
	}
	return nil
}

func (c *Client) Current(ctx context.Context, city string) (Current, error) {
	var wire currentWire
	if err := c.get(ctx, "/weather", url.Values{"q": {city}}, &wire); err != nil {
		return Current{}, err
	}

	cur := Current{
		City:      wire.Name,
		Temp:      wire.Main.Temp,
		FeelsLike: wire.Main.FeelsLike,
		Humidity:  wire.Main.Humidity,
		Wind:      wire.Wind.Speed,
	}
	if len(wire.Weather) > 0 {
		cur.Condition = wire.Weather[0].Description
	}
	return cur, nil
}

type forecastWire struct {
	List []struct {
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"list"`
}

// Forecast condenses the 3-hourly feed to one midday sample per day.
func (c *Client) Forecast(ctx context.Context, city string) ([]ForecastDay, error) {
	var wire forecastWire
	if err := c.get(ctx, "/forecast", url.Values{"q": {city}}, &wire); err != nil {
		return nil, err
	}

	var days []ForecastDay
	for _, e := range wire.List {
		if !strings.Contains(e.DtTxt, "12:00:00") {
			continue
		}
		day := ForecastDay{
			Date: strings.SplitN(e.DtTxt, " ", 2)[0],
			Temp: e.Main.Temp,
		}
		if len(e.Weather) > 0 {
			day.Condition = e.Weather[0].Description
		}
		days = append(days, day)
	}
	return days, nil
}
