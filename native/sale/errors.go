package sale

import "errors"

// The engine reports every failure as one of the sentinel errors below so
// hosts can map violations onto their own result codes with errors.Is. All
// failures are synchronous validation errors and leave state untouched.
var (
	// Authorization.
	ErrUnauthorized = errors.New("sale: unauthorized")
	ErrMissingGuard = errors.New("sale: missing guard co-signer")

	// Phase / timing.
	ErrSalePaused     = errors.New("sale: sale is paused")
	ErrAlreadyPaused  = errors.New("sale: sale already paused")
	ErrNotPaused      = errors.New("sale: sale is not paused")
	ErrSaleNotStarted = errors.New("sale: sale has not started")
	ErrSaleEnded      = errors.New("sale: sale has ended")
	ErrSaleNotEnded   = errors.New("sale: sale has not ended")
	ErrSaleInProgress = errors.New("sale: sale is in progress")
	ErrCooldownActive = errors.New("sale: purchase cooldown active")

	// Configuration.
	ErrInvalidConfiguration      = errors.New("sale: invalid configuration")
	ErrInvalidCapConfiguration   = errors.New("sale: invalid cap configuration")
	ErrInvalidSchedule           = errors.New("sale: invalid schedule")
	ErrInvalidPriceConfiguration = errors.New("sale: invalid price configuration")
	ErrInvalidTgeBps             = errors.New("sale: invalid tge basis points")

	// Accounting.
	ErrMathOverflow              = errors.New("sale: math overflow")
	ErrWalletMinNotReached       = errors.New("sale: wallet minimum not reached")
	ErrWalletCapExceeded         = errors.New("sale: wallet cap exceeded")
	ErrHardCapExceeded           = errors.New("sale: hard cap exceeded")
	ErrSlippageExceeded          = errors.New("sale: slippage exceeded")
	ErrInsufficientVaultBalance  = errors.New("sale: insufficient vault balance")
	ErrInsufficientEscrowBalance = errors.New("sale: insufficient escrow balance")

	// Eligibility.
	ErrNotWhitelisted    = errors.New("sale: participant not whitelisted")
	ErrWhitelistDisabled = errors.New("sale: whitelist disabled")

	// Campaign outcome.
	ErrSoftCapMet      = errors.New("sale: soft cap already met")
	ErrSoftCapNotMet   = errors.New("sale: soft cap not met")
	ErrNothingToRefund = errors.New("sale: nothing to refund")
	ErrAlreadyRefunded = errors.New("sale: position already refunded")
	ErrNothingToClaim  = errors.New("sale: nothing to claim")

	// Integrity.
	ErrIncorrectPayAsset = errors.New("sale: incorrect payment asset")
	ErrInvalidOwner      = errors.New("sale: invalid account owner")
	ErrInvalidAmount     = errors.New("sale: invalid amount")

	// Lifecycle.
	ErrAlreadyInitialized = errors.New("sale: campaign already initialized")
	ErrSaleNotFound       = errors.New("sale: campaign not found")
)
