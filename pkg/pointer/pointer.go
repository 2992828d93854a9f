// Package pointer converts between values and optional values.
package pointer

// Uint64 returns a pointer to a copy of value.
func Uint64(value uint64) *uint64 {
	return &value
}

// ValueOr returns *p, or fallback when p is nil.
func ValueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
