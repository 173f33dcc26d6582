// Package clients contains HTTP clients for external data providers.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/taobook/internal/domain"
	"github.com/vadiminshakov/taobook/pkg/retrier"
)

const (
	defaultTaostatsBaseURL = "https://api.taostats.io"
	pageLimit              = 200
)

// TransferDirection selects which side of a transfer matches the wallet.
type TransferDirection string

const (
	TransferOutbound TransferDirection = "outbound"
	TransferInbound  TransferDirection = "inbound"
)

// TaostatsClient fetches paginated wallet history from the taostats API.
// Pagination, pacing between pages and retries live here; the accounting
// core never touches the network.
type TaostatsClient struct {
	baseURL   string
	apiKey    string
	httpc     *http.Client
	pageDelay time.Duration
	retrier   *retrier.Retrier
	logger    *zap.Logger
}

// NewTaostatsClient creates a taostats client. pageDelay is the pause
// before each page request, protecting against the API's rate limits.
func NewTaostatsClient(baseURL, apiKey string, pageDelay time.Duration, logger *zap.Logger) *TaostatsClient {
	if baseURL == "" {
		baseURL = defaultTaostatsBaseURL
	}
	return &TaostatsClient{
		baseURL:   baseURL,
		apiKey:    apiKey,
		httpc:     &http.Client{Timeout: 60 * time.Second},
		pageDelay: pageDelay,
		retrier:   retrier.New(),
		logger:    logger,
	}
}

// pageEnvelope is the taostats collection response wrapper.
type pageEnvelope struct {
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		TotalPages int `json:"total_pages"`
	} `json:"pagination"`
}

// BalanceHistory fetches all balance-history pages for a wallet.
func (c *TaostatsClient) BalanceHistory(ctx context.Context, wallet string) ([]domain.BalanceRecord, error) {
	c.logger.Info("fetching historical balances", zap.String("wallet", wallet))
	urlFor := func(page int) string {
		return fmt.Sprintf("%s/api/account/history/v1?address=%s&page=%d&limit=%d", c.baseURL, wallet, page, pageLimit)
	}
	return fetchAllPages[domain.BalanceRecord](ctx, c, urlFor)
}

// Transfers fetches all transfer pages for a wallet in the given direction.
func (c *TaostatsClient) Transfers(ctx context.Context, wallet string, direction TransferDirection) ([]domain.TransferRecord, error) {
	c.logger.Info("fetching transfers",
		zap.String("wallet", wallet),
		zap.String("direction", string(direction)))

	urlFor := func(page int) string {
		side := "from"
		if direction == TransferInbound {
			side = "to"
		}
		return fmt.Sprintf("%s/api/transfer/v1?address=%s&%s=%s&page=%d&limit=%d",
			c.baseURL, wallet, side, wallet, page, pageLimit)
	}
	return fetchAllPages[domain.TransferRecord](ctx, c, urlFor)
}

// fetchAllPages walks the paginated collection at urlFor until the last
// page reported by the first response. total_pages == 0 means an empty
// collection.
func fetchAllPages[T any](ctx context.Context, c *TaostatsClient, urlFor func(page int) string) ([]T, error) {
	var all []T
	page := 1
	maxPages := 0

	for {
		if err := c.pause(ctx, page); err != nil {
			return nil, err
		}

		env, err := retrier.DoWithData(c.retrier, ctx, func(ctx context.Context) (pageEnvelope, error) {
			return c.getPage(ctx, urlFor(page))
		})
		if err != nil {
			return nil, err
		}

		if env.Pagination == nil || env.Data == nil {
			return nil, fmt.Errorf("unexpected response structure on page %d", page)
		}

		if maxPages == 0 {
			maxPages = env.Pagination.TotalPages
			c.logger.Debug("collection page count", zap.Int("total_pages", maxPages))
			if maxPages == 0 {
				return nil, nil
			}
		}

		var batch []T
		if err := json.Unmarshal(env.Data, &batch); err != nil {
			return nil, errors.Wrapf(err, "decode page %d", page)
		}
		all = append(all, batch...)

		if page == maxPages {
			return all, nil
		}
		page++
	}
}

func (c *TaostatsClient) pause(ctx context.Context, page int) error {
	if c.pageDelay <= 0 {
		return nil
	}
	c.logger.Debug("pausing before page request",
		zap.Int("page", page),
		zap.Duration("delay", c.pageDelay))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.pageDelay):
		return nil
	}
}

func (c *TaostatsClient) getPage(ctx context.Context, url string) (pageEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return pageEnvelope{}, errors.Wrap(err, "build request")
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return pageEnvelope{}, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return pageEnvelope{}, errors.Wrap(err, "read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return pageEnvelope{}, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, body)
	}

	var env pageEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return pageEnvelope{}, errors.Wrap(err, "decode response")
	}
	return env, nil
}
