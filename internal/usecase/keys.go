package usecase

import "strconv"

// Variant selects which aggregate shape a cache entry holds. The two
// variants are cached independently.
type Variant string

const (
	VariantFull Variant = "full"
	VariantLite Variant = "lite"
)

// KeyScheme derives cache keys of the form "<prefix>:<variant>:<id>".
// The prefix scopes every key of one deployment, so a prefix-wide clear
// cannot touch another deployment sharing the same backend.
type KeyScheme struct {
	prefix string
}

func NewKeyScheme(prefix string) KeyScheme {
	return KeyScheme{prefix: prefix}
}

func (k KeyScheme) Key(orderID int64, v Variant) string {
	return k.prefix + ":" + string(v) + ":" + strconv.FormatInt(orderID, 10)
}

// Prefix returns the pattern prefix covering every key of this scheme,
// trailing separator included.
func (k KeyScheme) Prefix() string {
	return k.prefix + ":"
}
