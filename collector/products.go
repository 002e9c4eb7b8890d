package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aluiziolira/go-food-value/config"
	"github.com/aluiziolira/go-food-value/models"
	"github.com/gocolly/colly/v2"
)

const (
	endpointSearch = "search"

	ctxStatus = "status"
	ctxBody   = "body"
)

// PageResult is one page of the product search.
type PageResult struct {
	Products []models.SearchProduct
	Outcome  Outcome
	Err      error
}

// ProductClient pages through the product search endpoint with a colly
// collector.
type ProductClient struct {
	searchURL string
	pageSize  int
	userAgent string
	collector *colly.Collector
	metrics   *Metrics
}

// NewProductClient builds a search client configured from cfg.
func NewProductClient(cfg *config.Config, metrics *Metrics) (*ProductClient, error) {
	parsed, err := url.Parse(cfg.ProductSearchURL)
	if err != nil {
		return nil, fmt.Errorf("parse product search url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("product search url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Hostname()),
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = true
	// Error statuses are classified by the caller rather than by colly.
	collector.ParseHTTPErrorResponse = true
	// colly truncates bodies past MaxBodySize without reporting it; 0 lifts the limit.
	collector.MaxBodySize = cfg.MaxBodySize
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})
	collector.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(ctxStatus, r.StatusCode)
		r.Ctx.Put(ctxBody, r.Body)
	})

	return &ProductClient{
		searchURL: cfg.ProductSearchURL,
		pageSize:  cfg.PageSize,
		userAgent: cfg.UserAgent,
		collector: collector,
		metrics:   metrics,
	}, nil
}

// PageURL returns the search URL for one page of a category.
func (c *ProductClient) PageURL(category string, page int) string {
	params := url.Values{}
	params.Set("action", "process")
	params.Set("tagtype_0", "categories")
	params.Set("tag_contains_0", "contains")
	params.Set("tag_0", category)
	params.Set("json", "1")
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(c.pageSize))
	return c.searchURL + "?" + params.Encode()
}

// FetchPage requests one page of products for category.
func (c *ProductClient) FetchPage(ctx context.Context, category string, page int) PageResult {
	if err := ctx.Err(); err != nil {
		return PageResult{Outcome: OutcomePermanent, Err: err}
	}

	reqCtx := colly.NewContext()
	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("User-Agent", c.userAgent)

	start := time.Now()
	err := c.collector.Request(http.MethodGet, c.PageURL(category, page), nil, reqCtx, header)
	c.metrics.ObserveRequest(endpointSearch, time.Since(start))
	if err != nil {
		classified := classifyError(err, 0)
		return PageResult{Outcome: outcomeOf(classified), Err: classified}
	}

	status, _ := reqCtx.GetAny(ctxStatus).(int)
	if classified := classifyError(nil, status); classified != nil {
		return PageResult{Outcome: outcomeOf(classified), Err: classified}
	}

	body, _ := reqCtx.GetAny(ctxBody).([]byte)
	var decoded models.SearchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		classified := ErrDecode{Err: err}
		return PageResult{Outcome: OutcomePermanent, Err: classified}
	}

	slog.Debug("product page fetched",
		slog.String("category", category),
		slog.Int("page", page),
		slog.String("count", decoded.Count.String()),
		slog.Int("bytes", len(body)),
	)
	return PageResult{Products: decoded.Products, Outcome: OutcomeSuccess}
}
