package portfolio

import (
	"github.com/davidhsu/binfolio/internal/domain"
)

// Normalize converts raw per-source holding records into canonical positions,
// one per (asset, source) pair, preserving first-seen order. include selects
// which sources participate; a nil map includes everything.
//
// Malformed records (missing asset, negative quantity) are skipped and
// reported as InvalidRecordError values in the second return; they never
// abort the rest of the normalization. Records whose total quantity is zero
// are dropped silently.
func Normalize(holdings []domain.RawHolding, include map[domain.Source]bool) ([]domain.Position, []error) {
	type key struct {
		asset  string
		source domain.Source
	}

	var (
		byKey = make(map[key]int)
		errs  []error
	)

	positions := make([]domain.Position, 0, len(holdings))

	for _, h := range holdings {
		if include != nil && !include[h.Source] {
			continue
		}
		if h.Asset == "" {
			errs = append(errs, &InvalidRecordError{Source: h.Source, Asset: h.Asset, Reason: "missing asset identifier"})
			continue
		}
		if h.Quantity.IsNegative() || h.Locked.IsNegative() {
			errs = append(errs, &InvalidRecordError{Source: h.Source, Asset: h.Asset, Reason: "negative quantity"})
			continue
		}

		qty := h.Quantity.Add(h.Locked)
		if qty.IsZero() {
			continue
		}

		k := key{asset: h.Asset, source: h.Source}
		if i, ok := byKey[k]; ok {
			positions[i].Quantity = positions[i].Quantity.Add(qty)
			continue
		}
		byKey[k] = len(positions)
		positions = append(positions, domain.Position{
			Asset:    h.Asset,
			Quantity: qty,
			Source:   h.Source,
		})
	}

	return positions, errs
}

// CombineHoldings sums normalized positions into one quantity per asset,
// keeping the order in which assets were first seen.
func CombineHoldings(positions []domain.Position) ([]string, map[string]domain.Position) {
	var assets []string
	combined := make(map[string]domain.Position, len(positions))

	for _, p := range positions {
		if existing, ok := combined[p.Asset]; ok {
			existing.Quantity = existing.Quantity.Add(p.Quantity)
			combined[p.Asset] = existing
			continue
		}
		assets = append(assets, p.Asset)
		combined[p.Asset] = domain.Position{Asset: p.Asset, Quantity: p.Quantity}
	}

	return assets, combined
}
