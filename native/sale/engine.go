package sale

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"launchpad/core/events"
	"launchpad/core/types"
)

var (
	errNilState  = errors.New("sale engine: state not configured")
	errNilLedger = errors.New("sale engine: ledger not configured")
)

type engineState interface {
	SaleGet(id [32]byte) (*SaleState, bool)
	SalePut(*SaleState) error
	AllowlistGet(id [32]byte) (*Allowlist, bool)
	AllowlistPut(*Allowlist) error
	PositionGet(id [32]byte, buyer [20]byte) (*BuyerPosition, bool)
	PositionPut(*BuyerPosition) error
}

type saleEvent struct {
	evt *types.Event
}

func (e saleEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e saleEvent) Event() *types.Event { return e.evt }

// Engine wires the sale business logic with external state, the ledger and
// an event emitter. Every operation runs as one atomic step under the
// engine mutex: precondition reads and the subsequent writes share the same
// critical section, so concurrent buyers cannot race the aggregate
// counters.
type Engine struct {
	mu      sync.Mutex
	state   engineState
	ledger  Ledger
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine creates a sale engine with a no-op emitter. Callers can
// override the emitter via SetEmitter.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger configures the external asset ledger used for custody moves.
func (e *Engine) SetLedger(ledger Ledger) { e.ledger = ledger }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used by the engine. The engine
// treats the supplied clock as authoritative for every schedule window.
// Primarily intended for tests and hosts that inject block time.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(saleEvent{evt: event})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.ledger == nil {
		return errNilLedger
	}
	return nil
}

func (e *Engine) loadSale(id [32]byte) (*SaleState, error) {
	state, ok := e.state.SaleGet(id)
	if !ok {
		return nil, ErrSaleNotFound
	}
	return state, nil
}

func applyConfig(state *SaleState, cfg Config) {
	state.PriceNumerator = cfg.PriceNumerator
	state.PriceDenominator = cfg.PriceDenominator
	state.SoftCap = cfg.SoftCap
	state.HardCap = cfg.HardCap
	state.WalletMin = cfg.WalletMin
	state.WalletMax = cfg.WalletMax
	state.StartTs = cfg.StartTs
	state.EndTs = cfg.EndTs
	state.TgeBps = cfg.TgeBps
	state.CliffSeconds = cfg.CliffSeconds
	state.VestingSeconds = cfg.VestingSeconds
	state.BuyCooldownSeconds = cfg.BuyCooldownSeconds
	state.WhitelistEnabled = cfg.WhitelistEnabled
	state.GuardEnabled = cfg.GuardAuthority != nil
	if cfg.GuardAuthority != nil {
		state.GuardAuthority = *cfg.GuardAuthority
	} else {
		state.GuardAuthority = [20]byte{}
	}
}

// Initialize creates the SaleState and Allowlist records for a new campaign
// from a validated configuration, derives the custody vaults and zeroes all
// running totals. It fails if the campaign already exists.
func (e *Engine) Initialize(admin [20]byte, saleAsset, payAsset string, cfg Config) (*SaleState, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	normalizedSale, err := NormalizeAsset(saleAsset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	normalizedPay, err := NormalizeAsset(payAsset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	id := DeriveSaleID(normalizedSale)
	if _, ok := e.state.SaleGet(id); ok {
		return nil, ErrAlreadyInitialized
	}

	now := e.now()
	vault := DeriveVaultAuthority(id).Address()
	state := &SaleState{
		ID:        id,
		Admin:     admin,
		SaleAsset: normalizedSale,
		PayAsset:  normalizedPay,
		SaleVault: vault,
		PayVault:  vault,
	}
	applyConfig(state, cfg)

	allowlist := &Allowlist{
		SaleID:      id,
		Root:        cfg.WhitelistRoot,
		Enabled:     cfg.WhitelistEnabled,
		Version:     1,
		LastUpdated: now,
	}

	if err := e.state.SalePut(state); err != nil {
		return nil, err
	}
	if err := e.state.AllowlistPut(allowlist); err != nil {
		return nil, err
	}
	e.emit(NewInitializedEvent(state, now))
	return state.Clone(), nil
}

// SetConfig replaces the mutable campaign parameters. Allowed only before
// the sale starts or while it is paused, and only for the admin. The
// allowlist root is republished and its version bumped.
func (e *Engine) SetConfig(id [32]byte, caller [20]byte, cfg Config) error {
	if err := e.ready(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.loadSale(id)
	if err != nil {
		return err
	}
	if caller != state.Admin {
		return ErrUnauthorized
	}
	now := e.now()
	if now > state.StartTs && !state.IsPaused {
		return ErrSaleInProgress
	}
	if err := ValidateConfig(cfg); err != nil {
		return err
	}

	allowlist, ok := e.state.AllowlistGet(id)
	if !ok {
		allowlist = &Allowlist{SaleID: id}
	}
	version, err := checkedAdd(allowlist.Version, 1)
	if err != nil {
		return err
	}

	applyConfig(state, cfg)
	allowlist.Root = cfg.WhitelistRoot
	allowlist.Enabled = cfg.WhitelistEnabled
	allowlist.Version = version
	allowlist.LastUpdated = now

	if err := e.state.SalePut(state); err != nil {
		return err
	}
	if err := e.state.AllowlistPut(allowlist); err != nil {
		return err
	}
	e.emit(NewConfigUpdatedEvent(state, caller, now))
	return nil
}

// Pause halts buyer operations. Admin only.
func (e *Engine) Pause(id [32]byte, caller [20]byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.loadSale(id)
	if err != nil {
		return err
	}
	if caller != state.Admin {
		return ErrUnauthorized
	}
	if state.IsPaused {
		return ErrAlreadyPaused
	}
	state.IsPaused = true
	if err := e.state.SalePut(state); err != nil {
		return err
	}
	e.emit(NewPausedEvent(state, caller, e.now()))
	return nil
}

// Unpause resumes a paused campaign. Admin only.
func (e *Engine) Unpause(id [32]byte, caller [20]byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.loadSale(id)
	if err != nil {
		return err
	}
	if caller != state.Admin {
		return ErrUnauthorized
	}
	if !state.IsPaused {
		return ErrNotPaused
	}
	state.IsPaused = false
	if err := e.state.SalePut(state); err != nil {
		return err
	}
	e.emit(NewResumedEvent(state, caller, e.now()))
	return nil
}

// Buy exchanges a payment for a future allocation of the sale asset. All
// preconditions are evaluated, every arithmetic step checked and the vault
// coverage re-validated before any balance moves; a failure at any point
// leaves the campaign untouched.
func (e *Engine) Buy(id [32]byte, buyer [20]byte, args BuyArgs) (*BuyerPosition, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.loadSale(id)
	if err != nil {
		return nil, err
	}
	now := e.now()
	if state.IsPaused {
		return nil, ErrSalePaused
	}
	if now < state.StartTs {
		return nil, ErrSaleNotStarted
	}
	if now > state.EndTs {
		return nil, ErrSaleEnded
	}

	if state.GuardEnabled {
		if args.Guard == nil || *args.Guard != state.GuardAuthority {
			return nil, ErrMissingGuard
		}
	}

	if state.WhitelistEnabled {
		allowlist, ok := e.state.AllowlistGet(id)
		if !ok || !allowlist.Enabled {
			return nil, ErrWhitelistDisabled
		}
		leaf := AllowlistLeaf(buyer)
		if !VerifyAllowlistProof(allowlist.Root, leaf, args.Proof) {
			return nil, ErrNotWhitelisted
		}
	}

	position, ok := e.state.PositionGet(id, buyer)
	if !ok {
		position = &BuyerPosition{SaleID: id, Buyer: buyer}
	}
	if position.Refunded {
		return nil, ErrAlreadyRefunded
	}

	if state.BuyCooldownSeconds > 0 && position.LastPurchaseTs > 0 {
		cooldownDone, err := checkedAddInt64(position.LastPurchaseTs, state.BuyCooldownSeconds)
		if err != nil {
			return nil, err
		}
		if now < cooldownDone {
			return nil, ErrCooldownActive
		}
	}

	if args.PayAmount == 0 {
		return nil, ErrInvalidAmount
	}

	newContributed, err := checkedAdd(position.Contributed, args.PayAmount)
	if err != nil {
		return nil, err
	}
	if state.WalletMin > 0 && position.Contributed == 0 && args.PayAmount < state.WalletMin {
		return nil, ErrWalletMinNotReached
	}
	if state.WalletMax > 0 && newContributed > state.WalletMax {
		return nil, ErrWalletCapExceeded
	}

	newCollected, err := checkedAdd(state.Collected, args.PayAmount)
	if err != nil {
		return nil, err
	}
	if newCollected > state.HardCap {
		return nil, ErrHardCapExceeded
	}

	tokens, err := TokenAmount(args.PayAmount, state.PriceNumerator, state.PriceDenominator)
	if err != nil {
		return nil, err
	}
	if tokens == 0 {
		return nil, ErrInvalidPriceConfiguration
	}
	if tokens < args.MinExpectedTokens {
		return nil, ErrSlippageExceeded
	}

	if args.PayAccount != nil && *args.PayAccount != buyer {
		return nil, ErrInvalidOwner
	}
	if args.PayAsset != "" {
		declared, err := NormalizeAsset(args.PayAsset)
		if err != nil || declared != state.PayAsset {
			return nil, ErrIncorrectPayAsset
		}
	}

	newAllocated, err := checkedAdd(state.TotalAllocated, tokens)
	if err != nil {
		return nil, err
	}
	newPurchased, err := checkedAdd(position.Purchased, tokens)
	if err != nil {
		return nil, err
	}
	required, err := checkedSub(newAllocated, state.TotalClaimed)
	if err != nil {
		return nil, err
	}

	custodian := NewCustodian(e.ledger, id)
	saleVaultBalance, err := custodian.VaultBalance(state.SaleAsset)
	if err != nil {
		return nil, err
	}
	// The outstanding allocation must stay covered by vault holdings
	// before the payment moves.
	if saleVaultBalance < required {
		return nil, ErrInsufficientVaultBalance
	}

	if err := custodian.Collect(buyer, state.PayAsset, args.PayAmount); err != nil {
		return nil, err
	}

	state.Collected = newCollected
	state.TotalAllocated = newAllocated
	position.Contributed = newContributed
	position.Purchased = newPurchased
	position.LastPurchaseTs = now

	if err := e.state.PositionPut(position); err != nil {
		return nil, err
	}
	if err := e.state.SalePut(state); err != nil {
		return nil, err
	}
	e.emit(NewPurchasedEvent(state, buyer, args.PayAmount, tokens, now))
	return position.Clone(), nil
}

// Claim releases the vested portion of the buyer's allocation. Only legal
// after the sale ended with the soft cap met. Repeating the call before
// further vesting elapses yields ErrNothingToClaim rather than a duplicate
// transfer.
func (e *Engine) Claim(id [32]byte, buyer [20]byte) (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.loadSale(id)
	if err != nil {
		return 0, err
	}
	position, ok := e.state.PositionGet(id, buyer)
	if !ok || position.Purchased == 0 {
		return 0, ErrNothingToClaim
	}
	if position.Refunded {
		return 0, ErrAlreadyRefunded
	}
	if state.Collected < state.SoftCap {
		return 0, ErrSoftCapNotMet
	}
	now := e.now()
	if now < state.EndTs {
		return 0, ErrSaleNotEnded
	}

	claimable, err := Claimable(state, position, now)
	if err != nil {
		return 0, err
	}
	if claimable == 0 {
		return 0, ErrNothingToClaim
	}

	newClaimed, err := checkedAdd(position.Claimed, claimable)
	if err != nil {
		return 0, err
	}
	newTotalClaimed, err := checkedAdd(state.TotalClaimed, claimable)
	if err != nil {
		return 0, err
	}

	custodian := NewCustodian(e.ledger, id)
	if err := custodian.Release(buyer, state.SaleAsset, claimable); err != nil {
		return 0, err
	}

	position.Claimed = newClaimed
	state.TotalClaimed = newTotalClaimed

	if err := e.state.PositionPut(position); err != nil {
		return 0, err
	}
	if err := e.state.SalePut(state); err != nil {
		return 0, err
	}
	e.emit(NewClaimedEvent(state, buyer, claimable, now))
	return claimable, nil
}

// Refund returns the buyer's full contribution once the sale ended below
// the soft cap. The refund is a one-shot terminal transition: the position
// is zeroed and marked refunded, and the reserved allocation is released
// back to the campaign.
func (e *Engine) Refund(id [32]byte, buyer [20]byte) (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.loadSale(id)
	if err != nil {
		return 0, err
	}
	now := e.now()
	if now <= state.EndTs {
		return 0, ErrSaleNotEnded
	}
	if state.Collected >= state.SoftCap {
		return 0, ErrSoftCapMet
	}
	position, ok := e.state.PositionGet(id, buyer)
	if !ok {
		return 0, ErrNothingToRefund
	}
	if position.Refunded {
		return 0, ErrAlreadyRefunded
	}
	if position.Contributed == 0 {
		return 0, ErrNothingToRefund
	}

	amount := position.Contributed
	newAllocated, err := checkedSub(state.TotalAllocated, position.Purchased)
	if err != nil {
		return 0, err
	}
	newRefunded, err := checkedAdd(state.TotalRefunded, amount)
	if err != nil {
		return 0, err
	}

	custodian := NewCustodian(e.ledger, id)
	if err := custodian.Release(buyer, state.PayAsset, amount); err != nil {
		return 0, err
	}

	state.TotalAllocated = newAllocated
	state.TotalRefunded = newRefunded
	position.Refunded = true
	position.Contributed = 0
	position.Purchased = 0
	position.Claimed = 0

	if err := e.state.PositionPut(position); err != nil {
		return 0, err
	}
	if err := e.state.SalePut(state); err != nil {
		return 0, err
	}
	e.emit(NewRefundedEvent(state, buyer, amount, now))
	return amount, nil
}

// WithdrawFunds moves collected payments to an admin-designated
// destination after a successful sale. The withdrawable amount is what
// remains escrowed: collected minus refunds minus prior withdrawals.
func (e *Engine) WithdrawFunds(id [32]byte, caller, destination [20]byte, amount uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.loadSale(id)
	if err != nil {
		return err
	}
	if caller != state.Admin {
		return ErrUnauthorized
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	now := e.now()
	if now <= state.EndTs {
		return ErrSaleNotEnded
	}
	if state.Collected < state.SoftCap {
		return ErrSoftCapNotMet
	}

	remaining, err := checkedSub(state.Collected, state.TotalRefunded)
	if err != nil {
		return err
	}
	withdrawable, err := checkedSub(remaining, state.FundsWithdrawn)
	if err != nil {
		return err
	}
	if amount > withdrawable {
		return ErrInsufficientEscrowBalance
	}
	newWithdrawn, err := checkedAdd(state.FundsWithdrawn, amount)
	if err != nil {
		return err
	}

	custodian := NewCustodian(e.ledger, id)
	if err := custodian.Release(destination, state.PayAsset, amount); err != nil {
		return err
	}

	state.FundsWithdrawn = newWithdrawn
	if err := e.state.SalePut(state); err != nil {
		return err
	}
	e.emit(NewFundsWithdrawnEvent(state, caller, amount, now))
	return nil
}

// WithdrawUnallocatedAsset extracts sale-asset units not reserved for
// outstanding claims. The portion of the vault balance exceeding
// total_allocated - total_claimed is withdrawable.
func (e *Engine) WithdrawUnallocatedAsset(id [32]byte, caller, destination [20]byte, amount uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.loadSale(id)
	if err != nil {
		return err
	}
	if caller != state.Admin {
		return ErrUnauthorized
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	now := e.now()
	if now <= state.EndTs {
		return ErrSaleNotEnded
	}

	remainingToClaim, err := checkedSub(state.TotalAllocated, state.TotalClaimed)
	if err != nil {
		return err
	}
	custodian := NewCustodian(e.ledger, id)
	vaultBalance, err := custodian.VaultBalance(state.SaleAsset)
	if err != nil {
		return err
	}
	available, err := checkedSub(vaultBalance, remainingToClaim)
	if err != nil {
		return err
	}
	if amount > available {
		return ErrInsufficientVaultBalance
	}

	if err := custodian.Release(destination, state.SaleAsset, amount); err != nil {
		return err
	}
	e.emit(NewUnallocatedWithdrawnEvent(state, caller, amount, now))
	return nil
}
