package sale

// Claimable computes the portion of a position's allocation unlocked at the
// given time that has not yet been claimed. The function is pure: the result
// is derivable from (state, position, now) alone, and the unlocked amount is
// monotonic non-decreasing in now.
//
// The schedule releases TgeBps basis points of the allocation at end of
// sale, waits out the cliff, then releases the remainder linearly over
// VestingSeconds. A zero VestingSeconds unlocks the entire allocation
// immediately.
func Claimable(state *SaleState, position *BuyerPosition, now int64) (uint64, error) {
	total := position.Purchased
	if total == 0 {
		return 0, nil
	}

	unlocked, err := checkedMul(total, uint64(state.TgeBps))
	if err != nil {
		return 0, err
	}
	unlocked /= BpsDenominator

	cliffEnd, err := checkedAddInt64(state.EndTs, state.CliffSeconds)
	if err != nil {
		return 0, err
	}

	if state.VestingSeconds == 0 {
		unlocked = total
	} else if now > cliffEnd {
		elapsed := now - cliffEnd
		if elapsed > state.VestingSeconds {
			elapsed = state.VestingSeconds
		}
		if elapsed > 0 {
			remaining, err := checkedSub(total, unlocked)
			if err != nil {
				return 0, err
			}
			linear, err := checkedMul(remaining, uint64(elapsed))
			if err != nil {
				return 0, err
			}
			linear /= uint64(state.VestingSeconds)
			unlocked, err = checkedAdd(unlocked, linear)
			if err != nil {
				return 0, err
			}
		}
	}

	return checkedSub(unlocked, position.Claimed)
}
