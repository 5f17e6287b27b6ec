package config

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"launchpad/native/sale"
)

// Campaign is the on-disk TOML form of a sale campaign definition.
// Addresses and the allowlist root are hex strings; amounts are base units
// of the respective asset.
type Campaign struct {
	Admin              string `toml:"Admin"`
	SaleAsset          string `toml:"SaleAsset"`
	PayAsset           string `toml:"PayAsset"`
	PriceNumerator     uint64 `toml:"PriceNumerator"`
	PriceDenominator   uint64 `toml:"PriceDenominator"`
	SoftCap            uint64 `toml:"SoftCap"`
	HardCap            uint64 `toml:"HardCap"`
	WalletMin          uint64 `toml:"WalletMin"`
	WalletMax          uint64 `toml:"WalletMax"`
	StartTs            int64  `toml:"StartTs"`
	EndTs              int64  `toml:"EndTs"`
	TgeBps             uint16 `toml:"TgeBps"`
	CliffSeconds       int64  `toml:"CliffSeconds"`
	VestingSeconds     int64  `toml:"VestingSeconds"`
	BuyCooldownSeconds int64  `toml:"BuyCooldownSeconds"`
	WhitelistEnabled   bool   `toml:"WhitelistEnabled"`
	WhitelistRoot      string `toml:"WhitelistRoot"`
	GuardAuthority     string `toml:"GuardAuthority"`
}

// Load reads a campaign definition from the given path.
func Load(path string) (*Campaign, error) {
	campaign := &Campaign{}
	meta, err := toml.DecodeFile(path, campaign)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config: unknown field %s in %s", undecoded[0], path)
	}
	return campaign, nil
}

// SaleConfig converts the campaign definition into the engine configuration
// and re-validates it through the engine's own rules.
func (c *Campaign) SaleConfig() (sale.Config, error) {
	cfg := sale.Config{
		PriceNumerator:     c.PriceNumerator,
		PriceDenominator:   c.PriceDenominator,
		SoftCap:            c.SoftCap,
		HardCap:            c.HardCap,
		WalletMin:          c.WalletMin,
		WalletMax:          c.WalletMax,
		StartTs:            c.StartTs,
		EndTs:              c.EndTs,
		TgeBps:             c.TgeBps,
		CliffSeconds:       c.CliffSeconds,
		VestingSeconds:     c.VestingSeconds,
		BuyCooldownSeconds: c.BuyCooldownSeconds,
		WhitelistEnabled:   c.WhitelistEnabled,
	}
	if strings.TrimSpace(c.WhitelistRoot) != "" {
		root, err := parseDigest(c.WhitelistRoot)
		if err != nil {
			return sale.Config{}, fmt.Errorf("config: whitelist root: %w", err)
		}
		cfg.WhitelistRoot = root
	}
	if strings.TrimSpace(c.GuardAuthority) != "" {
		guard, err := parseAddress(c.GuardAuthority)
		if err != nil {
			return sale.Config{}, fmt.Errorf("config: guard authority: %w", err)
		}
		cfg.GuardAuthority = &guard
	}
	if err := sale.ValidateConfig(cfg); err != nil {
		return sale.Config{}, err
	}
	return cfg, nil
}

// AdminAddress parses the configured admin identity.
func (c *Campaign) AdminAddress() ([20]byte, error) {
	addr, err := parseAddress(c.Admin)
	if err != nil {
		return [20]byte{}, fmt.Errorf("config: admin: %w", err)
	}
	return addr, nil
}

func parseAddress(s string) ([20]byte, error) {
	var addr [20]byte
	raw, err := decodeHex(s)
	if err != nil {
		return addr, err
	}
	if len(raw) != len(addr) {
		return addr, fmt.Errorf("expected %d bytes, got %d", len(addr), len(raw))
	}
	copy(addr[:], raw)
	return addr, nil
}

func parseDigest(s string) ([32]byte, error) {
	var digest [32]byte
	raw, err := decodeHex(s)
	if err != nil {
		return digest, err
	}
	if len(raw) != len(digest) {
		return digest, fmt.Errorf("expected %d bytes, got %d", len(digest), len(raw))
	}
	copy(digest[:], raw)
	return digest, nil
}

func decodeHex(s string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	return hex.DecodeString(trimmed)
}
