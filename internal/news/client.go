package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/i474232898/voice-assistant/internal/upstream"
)

// Source fetches top headlines for a country.
type Source interface {
	TopHeadlines(ctx context.Context, country string) ([]Article, error)
}

// NewsAPIClient talks to newsapi.org.
type NewsAPIClient struct {
	apiKey  string
	baseURL string
	client  *upstream.Client
}

func NewNewsAPIClient(client *http.Client, apiKey string) *NewsAPIClient {
	return &NewsAPIClient{
		apiKey:  apiKey,
		baseURL: "https://newsapi.org/v2/top-headlines",
		client:  upstream.New("newsapi", client),
	}
}

// TopHeadlines returns the articles NewsAPI lists for country, in its order.
func (c *NewsAPIClient) TopHeadlines(ctx context.Context, country string) ([]Article, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("news api key is not configured")
	}

	values := url.Values{}
	values.Set("country", country)
	values.Set("apiKey", c.apiKey)

	var payload struct {
		Status   string    `json:"status"`
		Code     string    `json:"code"`
		Message  string    `json:"message"`
		Articles []Article `json:"articles"`
	}

	if err := c.client.GetJSON(ctx, c.baseURL+"?"+values.Encode(), &payload); err != nil {
		return nil, err
	}

	if payload.Status != "ok" {
		return nil, fmt.Errorf("%w: newsapi status %q: %s", upstream.ErrMalformed, payload.Status, payload.Message)
	}
	if payload.Articles == nil {
		return []Article{}, nil
	}
	return payload.Articles, nil
}
