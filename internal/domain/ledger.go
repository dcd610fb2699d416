package domain

// Booked returns the number of units currently held by applications.
func (f FlatType) Booked() int {
	return f.TotalUnits - f.RemainingUnits
}

// Reserve takes one unit out of the remaining pool.
// Fails with NO_UNITS_AVAILABLE when nothing is left.
func (f *FlatType) Reserve() error {
	if f.RemainingUnits <= 0 {
		return NewError(CodeNoUnitsAvailable, "no %s units remaining", f.Label).With("flat_type", f.Label)
	}
	f.RemainingUnits--
	return nil
}

// Release returns one unit to the pool. Remaining never exceeds total, so a
// duplicate release is absorbed.
func (f *FlatType) Release() {
	if f.RemainingUnits < f.TotalUnits {
		f.RemainingUnits++
	}
}

// Resize changes the total and price, keeping the booked count:
// remaining = newTotal - booked. Shrinking below the booked count fails with
// NEGATIVE_REMAINING and leaves f unchanged.
func (f *FlatType) Resize(newTotal int, newPrice int64) error {
	if newTotal < 0 || newPrice < 0 {
		return NewError(CodeInvalidInput, "%s: units and price must be non-negative", f.Label)
	}
	remaining := newTotal - f.Booked()
	if remaining < 0 {
		return NewError(CodeNegativeRemaining,
			"%s: %d units already booked, cannot resize to %d", f.Label, f.Booked(), newTotal).
			With("flat_type", f.Label)
	}
	f.TotalUnits = newTotal
	f.RemainingUnits = remaining
	f.Price = newPrice
	return nil
}

// Consistent reports whether 0 ≤ remaining ≤ total.
func (f FlatType) Consistent() bool {
	return f.RemainingUnits >= 0 && f.RemainingUnits <= f.TotalUnits
}
