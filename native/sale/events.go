package sale

import (
	"encoding/hex"
	"strconv"

	"launchpad/core/types"
)

const (
	EventTypeSaleInitialized      = "sale.initialized"
	EventTypeConfigUpdated        = "sale.config_updated"
	EventTypeSalePaused           = "sale.paused"
	EventTypeSaleResumed          = "sale.resumed"
	EventTypeTokensPurchased      = "sale.purchased"
	EventTypeTokensClaimed        = "sale.claimed"
	EventTypeRefundIssued         = "sale.refunded"
	EventTypeFundsWithdrawn       = "sale.funds_withdrawn"
	EventTypeUnallocatedWithdrawn = "sale.unallocated_withdrawn"
)

// NewInitializedEvent returns the canonical payload emitted when a campaign
// is created.
func NewInitializedEvent(s *SaleState, ts int64) *types.Event {
	attrs := baseAttributes(s, ts)
	if s != nil {
		attrs["saleAsset"] = s.SaleAsset
		attrs["payAsset"] = s.PayAsset
		attrs["admin"] = hex.EncodeToString(s.Admin[:])
	}
	return &types.Event{Type: EventTypeSaleInitialized, Attributes: attrs}
}

// NewConfigUpdatedEvent returns the payload emitted when the admin replaces
// the campaign parameters.
func NewConfigUpdatedEvent(s *SaleState, admin [20]byte, ts int64) *types.Event {
	attrs := baseAttributes(s, ts)
	attrs["admin"] = hex.EncodeToString(admin[:])
	return &types.Event{Type: EventTypeConfigUpdated, Attributes: attrs}
}

// NewPausedEvent returns the payload emitted when the campaign is paused.
func NewPausedEvent(s *SaleState, admin [20]byte, ts int64) *types.Event {
	attrs := baseAttributes(s, ts)
	attrs["admin"] = hex.EncodeToString(admin[:])
	return &types.Event{Type: EventTypeSalePaused, Attributes: attrs}
}

// NewResumedEvent returns the payload emitted when the campaign resumes.
func NewResumedEvent(s *SaleState, admin [20]byte, ts int64) *types.Event {
	attrs := baseAttributes(s, ts)
	attrs["admin"] = hex.EncodeToString(admin[:])
	return &types.Event{Type: EventTypeSaleResumed, Attributes: attrs}
}

// NewPurchasedEvent returns the payload emitted for a successful purchase.
func NewPurchasedEvent(s *SaleState, buyer [20]byte, payAmount, tokenAmount uint64, ts int64) *types.Event {
	attrs := baseAttributes(s, ts)
	attrs["buyer"] = hex.EncodeToString(buyer[:])
	attrs["payAmount"] = strconv.FormatUint(payAmount, 10)
	attrs["tokenAmount"] = strconv.FormatUint(tokenAmount, 10)
	return &types.Event{Type: EventTypeTokensPurchased, Attributes: attrs}
}

// NewClaimedEvent returns the payload emitted when vested tokens are
// released to a buyer.
func NewClaimedEvent(s *SaleState, buyer [20]byte, amount uint64, ts int64) *types.Event {
	attrs := baseAttributes(s, ts)
	attrs["buyer"] = hex.EncodeToString(buyer[:])
	attrs["amount"] = strconv.FormatUint(amount, 10)
	return &types.Event{Type: EventTypeTokensClaimed, Attributes: attrs}
}

// NewRefundedEvent returns the payload emitted when a contribution is
// returned to a buyer.
func NewRefundedEvent(s *SaleState, buyer [20]byte, amount uint64, ts int64) *types.Event {
	attrs := baseAttributes(s, ts)
	attrs["buyer"] = hex.EncodeToString(buyer[:])
	attrs["payAmount"] = strconv.FormatUint(amount, 10)
	return &types.Event{Type: EventTypeRefundIssued, Attributes: attrs}
}

// NewFundsWithdrawnEvent returns the payload emitted when the admin
// extracts collected payments.
func NewFundsWithdrawnEvent(s *SaleState, admin [20]byte, amount uint64, ts int64) *types.Event {
	attrs := baseAttributes(s, ts)
	attrs["admin"] = hex.EncodeToString(admin[:])
	attrs["amount"] = strconv.FormatUint(amount, 10)
	return &types.Event{Type: EventTypeFundsWithdrawn, Attributes: attrs}
}

// NewUnallocatedWithdrawnEvent returns the payload emitted when the admin
// extracts sale-asset units not reserved for claims.
func NewUnallocatedWithdrawnEvent(s *SaleState, admin [20]byte, amount uint64, ts int64) *types.Event {
	attrs := baseAttributes(s, ts)
	attrs["admin"] = hex.EncodeToString(admin[:])
	attrs["amount"] = strconv.FormatUint(amount, 10)
	return &types.Event{Type: EventTypeUnallocatedWithdrawn, Attributes: attrs}
}

func baseAttributes(s *SaleState, ts int64) map[string]string {
	attrs := make(map[string]string)
	if s != nil {
		attrs["sale"] = hex.EncodeToString(s.ID[:])
	}
	attrs["timestamp"] = strconv.FormatInt(ts, 10)
	return attrs
}
