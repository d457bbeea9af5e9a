package diag

import (
	"cmp"
	"slices"
)

// Bag собирает диагностики одного юнита (или всего прогона) с лимитом.
// Всё, что не влезло, только подсчитывается.
type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
}

func NewBag(max int) *Bag {
	return &Bag{items: make([]Diagnostic, 0, min(max, 64)), max: max}
}

// Add returns false and counts d as dropped once the limit is reached.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// AddAlways appends d past the limit. Timing reports use it so a noisy
// unit cannot hide them.
func (b *Bag) AddAlways(d Diagnostic) {
	b.items = append(b.items, d)
	b.max = max(b.max, len(b.items))
}

// Dropped counts diagnostics refused by Add, including those of merged bags.
func (b *Bag) Dropped() int { return b.dropped }

func (b *Bag) Len() int { return len(b.items) }

// Items is the bag's own slice: read it, do not modify it.
func (b *Bag) Items() []Diagnostic { return b.items }

func (b *Bag) HasErrors() bool { return b.any(SevError) }

// HasWarnings is true for warnings and errors alike.
func (b *Bag) HasWarnings() bool { return b.any(SevWarning) }

func (b *Bag) any(atLeast Severity) bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity >= atLeast })
}

// Merge appends everything from other, raising the limit to fit: the
// limit applies to each producer, not to the merged view.
func (b *Bag) Merge(other *Bag) {
	b.max = max(b.max, len(b.items)+len(other.items))
	b.items = append(b.items, other.items...)
	b.dropped += other.dropped
}

// Sort orders by unit, start, end, then errors before warnings before
// infos, then code. Stable for anything still equal.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.Unit, y.Primary.Unit),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code.String(), y.Code.String()),
		)
	})
}
