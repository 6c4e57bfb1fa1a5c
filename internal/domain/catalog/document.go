package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Placeholder tokens for optional fields. Every field that may be empty
// renders as a fixed non-empty token so two items with identical relevant
// fields always produce byte-identical documents.
const (
	NoneToken           = "none"
	UnspecifiedToken    = "unspecified"
	DefaultCategoryName = "general"
)

// Document renders the canonical semantic text for an item: the exact string
// sent to the embedding provider. Field order and separators are a
// compatibility surface — changing them invalidates every stored fingerprint
// and forces a full re-embed.
func Document(item Item) string {
	var b strings.Builder

	b.WriteString("Dish: ")
	b.WriteString(item.Name())

	b.WriteString(". Texture level: ")
	fmt.Fprintf(&b, "%d", item.TextureLevel())
	b.WriteString(" (")
	b.WriteString(orToken(item.TextureNotes(), NoneToken))
	b.WriteString(")")

	b.WriteString(". Nutrition: ")
	b.WriteString(orToken(item.NutritionSummary(), UnspecifiedToken))

	b.WriteString(". Allergens: ")
	b.WriteString(joinSet(item.AllergensContains()))

	b.WriteString(". May contain: ")
	b.WriteString(joinSet(item.AllergensMayContain()))

	b.WriteString(". Category: ")
	b.WriteString(orToken(item.Category(), DefaultCategoryName))

	b.WriteString(". Properties: ")
	b.WriteString(joinSet(item.Properties()))

	b.WriteString(".")
	return b.String()
}

// Fingerprint hashes a canonical document. Equal documents yield equal
// fingerprints; a stored vector is stale exactly when its fingerprint
// differs from the current document's.
func Fingerprint(document string) string {
	h := sha256.Sum256([]byte(document))
	return hex.EncodeToString(h[:])
}

// ItemFingerprint is shorthand for Fingerprint(Document(item)).
func ItemFingerprint(item Item) string {
	return Fingerprint(Document(item))
}

// joinSet renders a string set as a sorted, deduplicated, comma-joined list.
// The empty set renders as the "none" token, never the empty string.
func joinSet(values []string) string {
	kept := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		kept = append(kept, v)
	}
	if len(kept) == 0 {
		return NoneToken
	}
	sort.Strings(kept)
	return strings.Join(kept, ", ")
}

func orToken(v, token string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return token
	}
	return v
}
