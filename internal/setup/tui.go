// Package setup contains the interactive terminal wizard that generates a
// starter configuration file.
package setup

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// wizardConfig mirrors the YAML shape the config loader reads.
type wizardConfig struct {
	Wallets          []string `yaml:"wallets"`
	SecondaryWallets []string `yaml:"secondary_wallets,omitempty"`
	SellAddresses    []string `yaml:"sell_addresses,omitempty"`
	Platform         string   `yaml:"platform,omitempty"`
	Pair             string   `yaml:"pair,omitempty"`
	PriceStart       string   `yaml:"price_start,omitempty"`
	RequestPause     string   `yaml:"request_pause,omitempty"`
	WebAddr          string   `yaml:"web_addr,omitempty"`
}

// RunTUI launches the terminal configuration wizard.
func RunTUI() error {
	var (
		walletsStr   string
		secondaryStr string
		sellStr      string
		platform     string
		pair         string
		priceStart   string
		pauseStr     string
		webAddr      string
		confirm      bool
	)

	// defaults
	pair = "TAO_USDT"
	priceStart = "2023-11-01"
	pauseStr = "30s"

	// step 1: welcome + wallets
	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("TAOBOOK CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Let's set up your wallet reconciliation.\n"))

	fmt.Println(stepStyle.Render("STEP 1: WALLETS"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Wallet addresses").
				Description("Comma-separated SS58 addresses to reconcile").
				Value(&walletsStr).
				Validate(func(s string) error {
					if len(splitList(s)) == 0 {
						return fmt.Errorf("at least one wallet address is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Secondary wallets").
				Description("Subset whose large daily inflows are suppressed (optional)").
				Value(&secondaryStr),
			huh.NewInput().
				Title("Sell addresses").
				Description("Counterparties whose outbound transfers count as sales (optional)").
				Value(&sellStr),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 2: price feed
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TAOBOOK CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: PRICE FEED"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select Exchange Platform").
				Options(
					huh.NewOption("Binance", "binance"),
					huh.NewOption("Bybit", "bybit"),
					huh.NewOption("MEXC", "mexc"),
				).
				Value(&platform),
			huh.NewInput().
				Title("Pair").
				Description("Must contain underscore (e.g. TAO_USDT)").
				Value(&pair).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("pair cannot be empty")
					}
					if !strings.Contains(s, "_") {
						return fmt.Errorf("invalid format: must be BASE_QUOTE (e.g. TAO_USDT)")
					}
					return nil
				}),
			huh.NewInput().
				Title("Price history start").
				Description("YYYY-MM-DD").
				Value(&priceStart).
				Validate(func(s string) error {
					_, err := time.Parse("2006-01-02", s)
					return err
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 3: pacing + dashboard
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TAOBOOK CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: TIMING"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Request Pause").
				Description("Pause before each provider page request (e.g. 30s, 1m)").
				Value(&pauseStr).
				Validate(func(s string) error {
					_, err := time.ParseDuration(s)
					return err
				}),
			huh.NewInput().
				Title("Dashboard address").
				Description("Listen address for the web dashboard, empty to disable (e.g. :8080)").
				Value(&webAddr),
		),
	).Run()
	if err != nil {
		return err
	}

	// confirmation
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TAOBOOK CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Wallets: %d\nPlatform: %s\nPair: %s\nPrice start: %s\nRequest pause: %s\n",
		len(splitList(walletsStr)), platform, pair, priceStart, pauseStr,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	cfg := wizardConfig{
		Wallets:          splitList(walletsStr),
		SecondaryWallets: splitList(secondaryStr),
		SellAddresses:    splitList(sellStr),
		Platform:         platform,
		Pair:             pair,
		PriceStart:       priceStart,
		RequestPause:     pauseStr,
		WebAddr:          webAddr,
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	// write to config.gen.yaml
	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s", filename)))
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
