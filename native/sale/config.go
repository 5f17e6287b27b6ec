package sale

// ValidateConfig checks a candidate campaign configuration. All rules must
// pass; the first violated rule determines the returned error. The function
// has no side effects.
func ValidateConfig(cfg Config) error {
	if cfg.PriceNumerator == 0 || cfg.PriceDenominator == 0 {
		return ErrInvalidPriceConfiguration
	}
	if cfg.HardCap < cfg.SoftCap {
		return ErrInvalidCapConfiguration
	}
	if cfg.WalletMax > 0 && cfg.WalletMax < cfg.WalletMin {
		return ErrInvalidCapConfiguration
	}
	if cfg.StartTs >= cfg.EndTs {
		return ErrInvalidSchedule
	}
	if uint64(cfg.TgeBps) > BpsDenominator {
		return ErrInvalidTgeBps
	}
	if cfg.CliffSeconds < 0 {
		return ErrInvalidSchedule
	}
	if cfg.VestingSeconds < 0 {
		return ErrInvalidSchedule
	}
	return nil
}
