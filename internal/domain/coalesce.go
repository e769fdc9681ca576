package domain

// Coalesce returns the first non-zero value, or the zero value when every
// value is zero.
func Coalesce[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}

// ValueOr dereferences p, or returns fallback when p is nil. StateUpdate
// uses it so that a nil field leaves the stored flag alone.
func ValueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// Ptr returns a pointer to v. Handy for building StateUpdate literals.
func Ptr[T any](v T) *T {
	return &v
}
