// Package domain holds the identifier and value types shared by every layer.
// Keeping them here lets stores, services and transport agree on validation
// without importing each other.
package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// AccountName identifies a participant or an external contract account.
// Names follow the upstream chain convention: 1-12 characters from
// [a-z1-5.], not starting or ending with a dot.
type AccountName string

// ParseAccountName validates a raw string as an account name.
func ParseAccountName(raw string) (AccountName, error) {
	if raw == "" {
		return "", fmt.Errorf("account name is empty")
	}
	if len(raw) > 12 {
		return "", fmt.Errorf("account name %q is longer than 12 characters", raw)
	}
	for _, r := range raw {
		if (r < 'a' || r > 'z') && (r < '1' || r > '5') && r != '.' {
			return "", fmt.Errorf("account name %q contains invalid character %q", raw, r)
		}
	}
	if strings.HasPrefix(raw, ".") || strings.HasSuffix(raw, ".") {
		return "", fmt.Errorf("account name %q must not start or end with a dot", raw)
	}
	return AccountName(raw), nil
}

func (a AccountName) String() string { return string(a) }

// IsZero reports whether the name is unset.
func (a AccountName) IsZero() bool { return a == "" }

// CollectionName identifies an external catalog collection. Same character
// rules as account names.
type CollectionName = AccountName

// ParseCollectionName validates a raw string as a collection name.
func ParseCollectionName(raw string) (CollectionName, error) {
	return ParseAccountName(raw)
}

// AssetID is the immutable identifier of a single non-fungible asset.
type AssetID uint64

// ParseAssetID parses the decimal string form used on the wire.
func ParseAssetID(raw string) (AssetID, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid asset id %q: %w", raw, err)
	}
	return AssetID(v), nil
}

func (id AssetID) String() string { return strconv.FormatUint(uint64(id), 10) }

// TemplateID identifies a catalog template shared by many assets.
type TemplateID int32

func (id TemplateID) String() string { return strconv.FormatInt(int64(id), 10) }
