package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/serenoa/backend/internal/cache/redis"
	"github.com/serenoa/backend/internal/metrics"
	"github.com/serenoa/backend/pkg/circuitbreaker"
	"github.com/serenoa/backend/pkg/logger"
	"github.com/serenoa/backend/pkg/retry"
	"github.com/serenoa/backend/pkg/utils"
)

// Psychologist is a single entry from the professional directory.
type Psychologist struct {
	Name      string `json:"name"`
	Title     string `json:"title,omitempty"`
	Region    string `json:"region,omitempty"`
	City      string `json:"city,omitempty"`
	Specialty string `json:"specialty,omitempty"`
	Contact   string `json:"contact,omitempty"`
}

type Page struct {
	Entries    []Psychologist `json:"entries"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *redis.Client
	cacheTTL   time.Duration
	breaker    *circuitbreaker.CircuitBreaker
	retryCfg   retry.Config
}

func NewClient(baseURL string, cache *redis.Client, cacheTTL time.Duration) *Client {
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:    cache,
		cacheTTL: cacheTTL,
		breaker: circuitbreaker.NewCircuitBreaker("directory", circuitbreaker.Config{
			FailureThreshold: 5,
			Timeout:          30 * time.Second,
		}),
		retryCfg: retry.Config{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
		},
	}
}

// Search returns a page of the professional directory, optionally filtered by
// region. Pages are served from the cache when available; the upstream JSON
// API is tried first with the HTML listing as fallback.
func (c *Client) Search(ctx context.Context, region string, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}

	cacheKey := utils.HashString(fmt.Sprintf("%s:%d", strings.ToLower(region), page))
	if c.cache != nil {
		var cached Page
		if found, err := c.cache.GetDirectoryPage(ctx, cacheKey, &cached); err == nil && found {
			metrics.DirectorySearches.WithLabelValues("cache").Inc()
			return &cached, nil
		}
	}

	var result *Page
	err := c.breaker.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryCfg, func() error {
			p, err := c.fetchJSON(ctx, region, page)
			if err != nil {
				logger.Warn("Directory JSON API failed, trying HTML listing",
					zap.String("region", region),
					zap.Error(err))
				p, err = c.fetchHTML(ctx, region, page)
				if err != nil {
					return err
				}
				metrics.DirectorySearches.WithLabelValues("html").Inc()
				result = p
				return nil
			}
			metrics.DirectorySearches.WithLabelValues("api").Inc()
			result = p
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search directory: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.SetDirectoryPage(ctx, cacheKey, result, c.cacheTTL); err != nil {
			logger.Warn("Failed to cache directory page", zap.Error(err))
		}
	}

	return result, nil
}

func (c *Client) fetchJSON(ctx context.Context, region string, page int) (*Page, error) {
	params := url.Values{}
	params.Add("page", fmt.Sprintf("%d", page))
	if region != "" {
		params.Add("region", region)
	}

	req, err := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/api/psychologists?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("directory API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp struct {
		Data []struct {
			Name      string `json:"name"`
			Title     string `json:"title"`
			Region    string `json:"region"`
			City      string `json:"city"`
			Specialty string `json:"specialty"`
			Contact   string `json:"contact"`
		} `json:"data"`
		Meta struct {
			CurrentPage int `json:"current_page"`
			LastPage    int `json:"last_page"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	entries := make([]Psychologist, 0, len(apiResp.Data))
	for _, d := range apiResp.Data {
		entries = append(entries, Psychologist{
			Name:      d.Name,
			Title:     d.Title,
			Region:    d.Region,
			City:      d.City,
			Specialty: d.Specialty,
			Contact:   d.Contact,
		})
	}

	logger.Info("Directory search completed",
		zap.String("source", "api"),
		zap.Int("entries", len(entries)))

	return &Page{
		Entries:    entries,
		Page:       apiResp.Meta.CurrentPage,
		TotalPages: apiResp.Meta.LastPage,
	}, nil
}

func (c *Client) fetchHTML(ctx context.Context, region string, page int) (*Page, error) {
	params := url.Values{}
	params.Add("page", fmt.Sprintf("%d", page))
	if region != "" {
		params.Add("wilayah", region)
	}

	req, err := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/psikolog?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("directory listing returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return parseListing(doc, page), nil
}

// parseListing extracts directory entries from the member listing markup.
func parseListing(doc *goquery.Document, page int) *Page {
	entries := make([]Psychologist, 0)
	doc.Find("div.member-card, tr.member-row").Each(func(i int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Find(".member-name, td.name").First().Text())
		if name == "" {
			return
		}
		entries = append(entries, Psychologist{
			Name:      name,
			Title:     strings.TrimSpace(s.Find(".member-title, td.title").First().Text()),
			Region:    strings.TrimSpace(s.Find(".member-region, td.region").First().Text()),
			City:      strings.TrimSpace(s.Find(".member-city, td.city").First().Text()),
			Specialty: strings.TrimSpace(s.Find(".member-specialty, td.specialty").First().Text()),
		})
	})

	totalPages := page
	doc.Find("ul.pagination li a").Each(func(i int, s *goquery.Selection) {
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(s.Text()), "%d", &n); err == nil && n > totalPages {
			totalPages = n
		}
	})

	logger.Info("Directory search completed",
		zap.String("source", "html"),
		zap.Int("entries", len(entries)))

	return &Page{Entries: entries, Page: page, TotalPages: totalPages}
}
