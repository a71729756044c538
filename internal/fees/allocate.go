package fees

// Allocation is one order's share of a multi-order payment intent, in integer
// cents. CapturedCents == SellerPayoutCents + AppRevenueCents for every row.
type Allocation struct {
	CapturedCents     int64
	AppRevenueCents   int64
	SellerPayoutCents int64
}

// AllocateIntent distributes a payment intent's captured total and platform
// fee across the orders it covers, proportionally to each order's base amount.
// All arithmetic is integer cents; the rounding remainder of both totals goes
// to the last row so the column sums reconcile exactly with the intent.
func AllocateIntent(baseCents []int64, capturedCents, feeCents int64) ([]Allocation, error) {
	if len(baseCents) == 0 {
		return nil, &InvalidArgumentError{Field: "baseCents", Msg: "at least one order required"}
	}
	if capturedCents < 0 || feeCents < 0 || feeCents > capturedCents {
		return nil, &InvalidArgumentError{Field: "capturedCents", Msg: "totals must satisfy 0 <= fee <= captured"}
	}
	var sum int64
	for _, b := range baseCents {
		if b < 0 {
			return nil, &InvalidArgumentError{Field: "baseCents", Msg: "base amounts must be >= 0"}
		}
		sum += b
	}

	n := len(baseCents)
	captured := make([]int64, n)
	fee := make([]int64, n)
	var usedCap, usedFee int64
	for i, b := range baseCents {
		if i == n-1 {
			captured[i] = capturedCents - usedCap
			fee[i] = feeCents - usedFee
			break
		}
		if sum > 0 {
			captured[i] = capturedCents * b / sum
			fee[i] = feeCents * b / sum
		}
		usedCap += captured[i]
		usedFee += fee[i]
	}

	// The remainder row can end up owing more fee than it captured (a zero
	// base at the end, say). Push the excess onto earlier rows; fee <= captured
	// in total guarantees the walk terminates with every row non-negative.
	for i := n - 1; i > 0; i-- {
		if excess := fee[i] - captured[i]; excess > 0 {
			fee[i] = captured[i]
			fee[i-1] += excess
		}
	}

	out := make([]Allocation, n)
	for i := range out {
		out[i] = alloc(captured[i], fee[i])
	}
	return out, nil
}

func alloc(captured, fee int64) Allocation {
	return Allocation{
		CapturedCents:     captured,
		AppRevenueCents:   fee,
		SellerPayoutCents: captured - fee,
	}
}
