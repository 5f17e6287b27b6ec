package sale

import (
	"fmt"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// BpsDenominator is the basis-point scale used for the TGE unlock fraction.
const BpsDenominator uint64 = 10_000

// SaleState is the singleton aggregate governing one campaign: pricing,
// caps, schedule, custody addresses and the running totals every buyer
// operation feeds into. The identifier is the keccak256 hash of the sale
// asset symbol, ensuring deterministic IDs per campaign.
type SaleState struct {
	ID                 [32]byte
	Admin              [20]byte
	SaleAsset          string
	PayAsset           string
	SaleVault          [20]byte
	PayVault           [20]byte
	PriceNumerator     uint64
	PriceDenominator   uint64
	SoftCap            uint64
	HardCap            uint64
	WalletMin          uint64
	WalletMax          uint64
	StartTs            int64
	EndTs              int64
	TgeBps             uint16
	CliffSeconds       int64
	VestingSeconds     int64
	BuyCooldownSeconds int64
	Collected          uint64
	TotalAllocated     uint64
	TotalClaimed       uint64
	TotalRefunded      uint64
	FundsWithdrawn     uint64
	WhitelistEnabled   bool
	GuardEnabled       bool
	GuardAuthority     [20]byte
	IsPaused           bool
}

// Clone returns a copy of the sale state so callers can safely mutate the
// copy without affecting the stored instance.
func (s *SaleState) Clone() *SaleState {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

// BuyerPosition is the per-participant ledger record for one campaign,
// created lazily on first purchase. A refunded position is terminal: all
// amounts are zeroed and no further purchase or claim is permitted.
type BuyerPosition struct {
	SaleID         [32]byte
	Buyer          [20]byte
	Contributed    uint64
	Purchased      uint64
	Claimed        uint64
	LastPurchaseTs int64
	Refunded       bool
}

// Clone returns a copy of the position.
func (p *BuyerPosition) Clone() *BuyerPosition {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

// Allowlist commits to the set of eligible participants via an accumulator
// root. An all-zero root is the designed escape hatch meaning "allow
// everyone".
type Allowlist struct {
	SaleID      [32]byte
	Root        [32]byte
	Enabled     bool
	Version     uint64
	LastUpdated int64
}

// Clone returns a copy of the allowlist record.
func (a *Allowlist) Clone() *Allowlist {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

// Config carries the mutable campaign parameters supplied at initialization
// and via SetConfig. GuardAuthority is optional: when present the campaign
// requires the designated co-signer on every purchase.
type Config struct {
	PriceNumerator     uint64
	PriceDenominator   uint64
	SoftCap            uint64
	HardCap            uint64
	WalletMin          uint64
	WalletMax          uint64
	StartTs            int64
	EndTs              int64
	TgeBps             uint16
	CliffSeconds       int64
	VestingSeconds     int64
	BuyCooldownSeconds int64
	WhitelistEnabled   bool
	WhitelistRoot      [32]byte
	GuardAuthority     *[20]byte
}

// BuyArgs bundles the participant-supplied purchase inputs. Guard is the
// identity of the co-signer accompanying the call; it is required if and
// only if the campaign has guarding enabled. PayAsset and PayAccount, when
// set, declare the funding source the caller intends to debit; the engine
// rejects the purchase if either disagrees with the campaign's payment
// asset or the buyer's own account.
type BuyArgs struct {
	PayAmount         uint64
	MinExpectedTokens uint64
	Proof             [][32]byte
	Guard             *[20]byte
	PayAsset          string
	PayAccount        *[20]byte
}

// NormalizeAsset canonicalises an asset symbol to its uppercase trimmed
// form. Symbols are opaque to the engine beyond non-emptiness.
func NormalizeAsset(symbol string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(symbol))
	if trimmed == "" {
		return "", fmt.Errorf("sale: empty asset symbol")
	}
	return trimmed, nil
}

// DeriveSaleID computes the deterministic campaign identifier for a sale
// asset symbol.
func DeriveSaleID(saleAsset string) [32]byte {
	return ethcrypto.Keccak256Hash([]byte("sale/state/"), []byte(saleAsset))
}
