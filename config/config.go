package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config carries the marketd daemon settings and the initial season
// parameters applied on first boot.
type Config struct {
	ListenAddress string `toml:"ListenAddress"`
	DataDir       string `toml:"DataDir"`
	Environment   string `toml:"Environment"`
	AdminToken    string `toml:"AdminToken"`

	// Hex-encoded 20-byte addresses.
	AdminAddress    string `toml:"AdminAddress"`
	TreasuryAddress string `toml:"TreasuryAddress"`
	OracleSigner    string `toml:"OracleSigner"`

	// RequireRegistration gates purchases on the participant registry.
	RequireRegistration bool `toml:"RequireRegistration"`

	Season SeasonConfig `toml:"season"`
}

// SeasonConfig mirrors the ledger season parameters in TOML-friendly form.
// Tiers are keyed bronze/silver/gold and slots m1/m2/m3.
type SeasonConfig struct {
	StartTime int64 `toml:"StartTime"`
	EndTime   int64 `toml:"EndTime"`

	UnlockTimes map[string]int64 `toml:"UnlockTimes"`

	CratePrices        map[string]map[string]uint64 `toml:"CratePrices"`
	CrateTotals        map[string]uint64            `toml:"CrateTotals"`
	CrateDailyRates    map[string]uint64            `toml:"CrateDailyRates"`
	CrateUserDailyCaps map[string]uint32            `toml:"CrateUserDailyCaps"`

	RafflePrices       map[string]uint64 `toml:"RafflePrices"`
	RaffleUserDailyCap uint32            `toml:"RaffleUserDailyCap"`

	MaxCratePayout uint64 `toml:"MaxCratePayout"`

	// CreditDecimals is a pointer so an explicit zero survives decoding;
	// only an omitted field picks up the default.
	CreditDecimals *uint8 `toml:"CreditDecimals"`
}

// Load reads the configuration from path, creating a default file when none
// exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.ListenAddress) == "" {
		c.ListenAddress = ":8546"
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "./marketdata"
	}
	if c.Season.CreditDecimals == nil {
		decimals := uint8(6)
		c.Season.CreditDecimals = &decimals
	}
}

// Validate checks the address fields decode to 20-byte values.
func (c *Config) Validate() error {
	for name, value := range map[string]string{
		"AdminAddress":    c.AdminAddress,
		"TreasuryAddress": c.TreasuryAddress,
		"OracleSigner":    c.OracleSigner,
	} {
		if _, err := DecodeAddress(value); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}
	if c.Season.StartTime > c.Season.EndTime {
		return fmt.Errorf("config: season start must not be after end")
	}
	return nil
}

// DecodeAddress parses a hex-encoded 20-byte address, accepting an optional
// 0x prefix.
func DecodeAddress(value string) ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, fmt.Errorf("invalid hex address %q", value)
	}
	if len(raw) != 20 {
		return addr, fmt.Errorf("address must be 20 bytes, got %d", len(raw))
	}
	copy(addr[:], raw)
	return addr, nil
}

func createDefault(path string) (*Config, error) {
	defaultDecimals := uint8(6)
	cfg := &Config{
		ListenAddress:   ":8546",
		DataDir:         "./marketdata",
		Environment:     "local",
		AdminAddress:    "0x" + strings.Repeat("11", 20),
		TreasuryAddress: "0x" + strings.Repeat("22", 20),
		OracleSigner:    "0x" + strings.Repeat("33", 20),
		Season: SeasonConfig{
			StartTime:      0,
			EndTime:        1 << 33,
			CreditDecimals: &defaultDecimals,
			MaxCratePayout: 100_000,
			CratePrices: map[string]map[string]uint64{
				"bronze": {"m1": 10, "m2": 10, "m3": 10},
				"silver": {"m1": 40, "m2": 40, "m3": 40},
				"gold":   {"m1": 160, "m2": 160, "m3": 160},
			},
			CrateTotals:        map[string]uint64{"bronze": 100_000, "silver": 25_000, "gold": 6_000},
			CrateDailyRates:    map[string]uint64{"bronze": 1_200, "silver": 300, "gold": 80},
			CrateUserDailyCaps: map[string]uint32{"bronze": 20, "silver": 10, "gold": 5},
			RafflePrices:       map[string]uint64{"11": 5, "12": 10, "21": 25},
			RaffleUserDailyCap: 50,
		},
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
