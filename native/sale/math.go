package sale

import "math/bits"

// Amounts are u64 on the wire; every arithmetic step is checked and aborts
// the surrounding operation with ErrMathOverflow rather than wrapping.

func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrMathOverflow
	}
	return sum, nil
}

func checkedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrMathOverflow
	}
	return a - b, nil
}

func checkedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrMathOverflow
	}
	return lo, nil
}

func checkedAddInt64(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, ErrMathOverflow
	}
	return sum, nil
}

// TokenAmount converts a payment amount into sale-asset units under the
// campaign price ratio: floor(payAmount * denominator / numerator).
func TokenAmount(payAmount, numerator, denominator uint64) (uint64, error) {
	scaled, err := checkedMul(payAmount, denominator)
	if err != nil {
		return 0, err
	}
	if numerator == 0 {
		return 0, ErrInvalidPriceConfiguration
	}
	return scaled / numerator, nil
}
