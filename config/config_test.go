package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "wallets:\n  - 5FWallet\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"5FWallet"}, cfg.Wallets)
	assert.Equal(t, "binance", cfg.Platform)
	assert.Equal(t, "TAO_USDT", cfg.Pair.String())
	assert.Equal(t, time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC), cfg.PriceStart)
	assert.Equal(t, "data_total_final2.csv", cfg.CombinedCSV)
	assert.Equal(t, "daily_report.csv", cfg.ReportCSV)
	assert.Equal(t, 30*time.Second, cfg.RequestPause)
	assert.Empty(t, cfg.WebAddr)
}

func TestLoad_Full(t *testing.T) {
	path := writeConfig(t, `
wallets:
  - 5FPrimary
  - 5FSecondary
secondary_wallets:
  - 5FSecondary
sell_addresses:
  - 5SellDest
platform: mexc
pair: TAO_USDT
price_start: 2024-02-01
request_pause: 5s
web_addr: ":8080"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Len(t, cfg.Wallets, 2)
	assert.Equal(t, []string{"5FSecondary"}, cfg.SecondaryWallets)
	assert.Equal(t, "mexc", cfg.Platform)
	assert.Equal(t, 5*time.Second, cfg.RequestPause)
	assert.Equal(t, ":8080", cfg.WebAddr)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), cfg.PriceStart)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no wallets", "platform: binance\n"},
		{"bad platform", "wallets: [w]\nplatform: kraken\n"},
		{"bad pair", "wallets: [w]\npair: TAOUSDT\n"},
		{"bad price start", "wallets: [w]\nprice_start: 01.02.2024\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
		})
	}
}
