package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"fintrack-server/src/logger"

	"github.com/dgraph-io/ristretto"
	"github.com/shopspring/decimal"
)

const (
	fetchTimeout = 8 * time.Second
	// failureBackoff is how long a failed fetch serves the previous table
	// before the source is tried again.
	failureBackoff = time.Minute
)

type ratesResponse struct {
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Converter turns foreign-currency amounts into the base currency using a
// rate table quoted against that base.
type Converter struct {
	base   string
	url    string
	ttl    time.Duration
	retry  time.Duration
	client *http.Client
	cache  *ristretto.Cache

	mu   sync.Mutex
	last map[string]decimal.Decimal
}

func NewConverter(base, endpoint string, ttl time.Duration, client *http.Client) (*Converter, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        100,
		MaxCost:            10,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	retry := failureBackoff
	if ttl > 0 && ttl < retry {
		retry = ttl
	}
	base = strings.ToUpper(strings.TrimSpace(base))
	return &Converter{
		base:   base,
		url:    endpoint,
		ttl:    ttl,
		retry:  retry,
		client: client,
		cache:  cache,
		last:   map[string]decimal.Decimal{base: decimal.NewFromInt(1)},
	}, nil
}

func (c *Converter) Base() string {
	return c.base
}

func (c *Converter) Close() {
	c.cache.Close()
}

func (c *Converter) cacheKey() string {
	return "rates:" + c.base
}

// Rates returns the current table, refetching once the cached copy expires.
// A failed fetch falls back to the last table that was loaded and keeps
// serving it for a short backoff before the next attempt.
func (c *Converter) Rates(ctx context.Context) map[string]decimal.Decimal {
	if v, ok := c.cache.Get(c.cacheKey()); ok {
		return v.(map[string]decimal.Decimal)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.cache.Get(c.cacheKey()); ok {
		return v.(map[string]decimal.Decimal)
	}

	rates, err := c.fetch(ctx)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("base", c.base).Dur("retry_in", c.retry).Msg("fx rate fetch failed, using previous rates")
		c.cache.SetWithTTL(c.cacheKey(), c.last, 1, c.retry)
		c.cache.Wait()
		return c.last
	}
	c.last = rates
	c.cache.SetWithTTL(c.cacheKey(), rates, 1, c.ttl)
	c.cache.Wait()
	return rates
}

func (c *Converter) fetch(ctx context.Context) (map[string]decimal.Decimal, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return nil, fmt.Errorf("invalid fx url: %w", err)
	}
	q := u.Query()
	q.Set("base", c.base)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fx api returned status %d", resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode fx rates: %w", err)
	}
	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("fx api returned no rates")
	}

	rates := make(map[string]decimal.Decimal, len(body.Rates)+1)
	for code, rate := range body.Rates {
		rates[strings.ToUpper(code)] = rate
	}
	rates[c.base] = decimal.NewFromInt(1)
	return rates, nil
}

// Convert returns amount expressed in the base currency. Unknown codes and
// non-positive rates convert 1:1.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from string) decimal.Decimal {
	from = strings.ToUpper(strings.TrimSpace(from))
	if from == "" || from == c.base {
		return amount
	}
	rate, ok := c.Rates(ctx)[from]
	if !ok || !rate.IsPositive() {
		return amount
	}
	return amount.Div(rate).Round(2)
}
