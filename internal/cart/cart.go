// Package cart reads the cart for a checkout session and derives the
// per-store views and fingerprints the checkout steps depend on.
package cart

import (
	"encoding/binary"
	"math"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
)

// StoreGroup is the part of a cart sold by one store.
type StoreGroup struct {
	StoreID       string
	Lines         []checkout.Line
	SubtotalMinor int64
}

// GroupByStore groups lines by store in first-seen order. Subtotals are the sum
// of per-line minor totals.
func GroupByStore(lines []checkout.Line) []StoreGroup {
	idx := make(map[string]int)
	var groups []StoreGroup
	for _, l := range lines {
		i, ok := idx[l.StoreID]
		if !ok {
			i = len(groups)
			idx[l.StoreID] = i
			groups = append(groups, StoreGroup{StoreID: l.StoreID})
		}
		groups[i].Lines = append(groups[i].Lines, l)
		groups[i].SubtotalMinor += l.TotalMinor()
	}
	return groups
}

// Fingerprint identifies a (cart, address) pair. Line order does not matter.
func Fingerprint(lines []checkout.Line, addressID string) string {
	sorted := make([]checkout.Line, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		if a.VariantID != b.VariantID {
			return a.VariantID < b.VariantID
		}
		return a.StoreID < b.StoreID
	})

	d := xxhash.New()
	var buf [8]byte
	writeField := func(s string) {
		_, _ = d.WriteString(s)
		_, _ = d.Write([]byte{0})
	}
	writeField(addressID)
	for _, l := range sorted {
		writeField(l.ProductID)
		writeField(l.VariantID)
		writeField(l.StoreID)
		binary.LittleEndian.PutUint64(buf[:], uint64(l.Quantity))
		_, _ = d.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(l.UnitPrice))
		_, _ = d.Write(buf[:])
	}
	return strconv.FormatUint(d.Sum64(), 16)
}
