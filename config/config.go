// Package config loads and validates the pipeline configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/taobook/internal/domain"
)

const (
	defaultPair         = "TAO_USDT"
	defaultPlatform     = "binance"
	defaultPriceStart   = "2023-11-01"
	defaultCacheDir     = "./cache"
	defaultCombinedCSV  = "data_total_final2.csv"
	defaultReportCSV    = "daily_report.csv"
	defaultWalDir       = "./wal/reports"
	defaultRequestPause = 30 * time.Second
)

// Config is the resolved pipeline configuration. There are no process-wide
// singletons; the pipeline receives this object explicitly.
type Config struct {
	// Wallets are the addresses to reconcile.
	Wallets []string
	// SecondaryWallets have large daily inflows suppressed before
	// combination.
	SecondaryWallets []string
	// SellAddresses are counterparties whose outbound transfers count as
	// sales.
	SellAddresses []string

	// Platform selects the price feed: binance, bybit or mexc.
	Platform string
	Pair     domain.Pair
	// PriceStart is the beginning of the price feed range.
	PriceStart time.Time

	CacheDir    string
	CombinedCSV string
	ReportCSV   string
	WalDir      string
	// WebAddr enables the dashboard when non-empty, e.g. ":8080".
	WebAddr string

	// RequestPause is the pause before each wallet-provider page request.
	RequestPause time.Duration
}

// configTmp is the on-disk YAML shape.
type configTmp struct {
	Wallets          []string      `yaml:"wallets"`
	SecondaryWallets []string      `yaml:"secondary_wallets,omitempty"`
	SellAddresses    []string      `yaml:"sell_addresses,omitempty"`
	Platform         string        `yaml:"platform,omitempty"`
	Pair             string        `yaml:"pair,omitempty"`
	PriceStart       string        `yaml:"price_start,omitempty"`
	CacheDir         string        `yaml:"cache_dir,omitempty"`
	CombinedCSV      string        `yaml:"combined_csv,omitempty"`
	ReportCSV        string        `yaml:"report_csv,omitempty"`
	WalDir           string        `yaml:"wal_dir,omitempty"`
	WebAddr          string        `yaml:"web_addr,omitempty"`
	RequestPause     time.Duration `yaml:"request_pause,omitempty"`
}

// Load reads and validates the YAML config at path.
func Load(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp configTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, fmt.Errorf("parse yaml config: %w", err)
	}

	return resolve(tmp)
}

func resolve(tmp configTmp) (Config, error) {
	if len(tmp.Wallets) == 0 {
		return Config{}, fmt.Errorf("'wallets' must list at least one address")
	}

	if tmp.Platform == "" {
		tmp.Platform = defaultPlatform
	}
	switch tmp.Platform {
	case "binance", "bybit", "mexc":
	default:
		return Config{}, fmt.Errorf("unsupported 'platform' %q (want binance, bybit or mexc)", tmp.Platform)
	}

	if tmp.Pair == "" {
		tmp.Pair = defaultPair
	}
	pair, err := pairFromString(tmp.Pair)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'pair' param in yaml config: %s, error: %w", tmp.Pair, err)
	}

	if tmp.PriceStart == "" {
		tmp.PriceStart = defaultPriceStart
	}
	priceStart, err := time.Parse("2006-01-02", tmp.PriceStart)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'price_start' param in yaml config (want YYYY-MM-DD): %w", err)
	}

	if tmp.CacheDir == "" {
		tmp.CacheDir = defaultCacheDir
	}
	if tmp.CombinedCSV == "" {
		tmp.CombinedCSV = defaultCombinedCSV
	}
	if tmp.ReportCSV == "" {
		tmp.ReportCSV = defaultReportCSV
	}
	if tmp.WalDir == "" {
		tmp.WalDir = defaultWalDir
	}
	if tmp.RequestPause == 0 {
		tmp.RequestPause = defaultRequestPause
	}

	return Config{
		Wallets:          tmp.Wallets,
		SecondaryWallets: tmp.SecondaryWallets,
		SellAddresses:    tmp.SellAddresses,
		Platform:         tmp.Platform,
		Pair:             pair,
		PriceStart:       priceStart,
		CacheDir:         tmp.CacheDir,
		CombinedCSV:      tmp.CombinedCSV,
		ReportCSV:        tmp.ReportCSV,
		WalDir:           tmp.WalDir,
		WebAddr:          tmp.WebAddr,
		RequestPause:     tmp.RequestPause,
	}, nil
}

func pairFromString(pairStr string) (domain.Pair, error) {
	pairElements := strings.Split(pairStr, "_")
	if len(pairElements) != 2 {
		return domain.Pair{}, fmt.Errorf("invalid pair param")
	}
	return domain.Pair{From: pairElements[0], To: pairElements[1]}, nil
}
