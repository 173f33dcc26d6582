package internal

import (
	"fmt"
	"net/http"
	"time"

	binance "github.com/adshao/go-binance/v2"
	bybit "github.com/hirokisan/bybit/v2"

	"github.com/vadiminshakov/taobook/internal/services/pricer"
)

// NewDailyCloser creates the price feed for the configured platform.
// All three feeds use public market endpoints, so no credentials are needed.
func NewDailyCloser(platform string) (pricer.DailyCloser, error) {
	switch platform {
	case "binance":
		return pricer.NewBinancePricer(binance.NewClient("", "")), nil
	case "bybit":
		return pricer.NewBybitPricer(bybit.NewClient()), nil
	case "mexc":
		return pricer.NewMexcPricer("", &http.Client{Timeout: 30 * time.Second}), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", platform)
	}
}
