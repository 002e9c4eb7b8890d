package collector

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aluiziolira/go-food-value/config"
	"github.com/aluiziolira/go-food-value/models"
	"github.com/go-resty/resty/v2"
)

const endpointPrice = "price"

// PriceResult is the outcome of one latest-price lookup. Price is nil when
// upstream has no price for the barcode.
type PriceResult struct {
	Price   *float64
	Outcome Outcome
	Err     error
}

// PriceClient looks up observed prices by barcode.
type PriceClient struct {
	priceURL string
	client   *resty.Client
	metrics  *Metrics
}

// NewPriceClient builds a price client configured from cfg.
func NewPriceClient(cfg *config.Config, metrics *Metrics) *PriceClient {
	client := resty.New()
	client.SetHeader("User-Agent", cfg.UserAgent)
	client.SetHeader("Accept", "application/json")
	client.SetTimeout(cfg.Timeout)

	return &PriceClient{
		priceURL: cfg.PriceURL,
		client:   client,
		metrics:  metrics,
	}
}

// Latest returns the price of the last entry the endpoint lists for barcode,
// which upstream orders oldest first.
func (c *PriceClient) Latest(ctx context.Context, barcode string) PriceResult {
	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("product_code", barcode).
		Get(c.priceURL)
	c.metrics.ObserveRequest(endpointPrice, time.Since(start))
	if err != nil {
		classified := classifyError(err, 0)
		return PriceResult{Outcome: outcomeOf(classified), Err: classified}
	}
	if classified := classifyError(nil, resp.StatusCode()); classified != nil {
		return PriceResult{Outcome: outcomeOf(classified), Err: classified}
	}

	var decoded models.PriceResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return PriceResult{Outcome: OutcomePermanent, Err: ErrDecode{Err: err}}
	}
	if len(decoded.Items) == 0 {
		return PriceResult{Outcome: OutcomeSuccess}
	}

	last := decoded.Items[len(decoded.Items)-1]
	return PriceResult{Price: last.Price, Outcome: OutcomeSuccess}
}
