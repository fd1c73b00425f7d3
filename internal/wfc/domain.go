package wfc

import (
	"math/bits"
	"strings"

	"github.com/lawnchairsociety/terraingen/internal/terrain"
)

// Domain is the set of terrain types still possible for a tile, one bit per
// type. It is a plain value, so copies never alias.
type Domain uint8

// FullDomain contains every terrain type.
const FullDomain Domain = 1<<terrain.Count - 1

// DomainOf builds a domain from the given types.
func DomainOf(types ...terrain.Type) Domain {
	var d Domain
	for _, t := range types {
		d = d.Add(t)
	}
	return d
}

func bit(t terrain.Type) Domain {
	if !t.Valid() {
		return 0
	}
	return 1 << uint(t)
}

// Has reports whether t is in the domain.
func (d Domain) Has(t terrain.Type) bool { return d&bit(t) != 0 }

// Add returns d with t included.
func (d Domain) Add(t terrain.Type) Domain { return d | bit(t) }

// Remove returns d without t.
func (d Domain) Remove(t terrain.Type) Domain { return d &^ bit(t) }

// Intersect returns the types present in both domains.
func (d Domain) Intersect(o Domain) Domain { return d & o }

// Len returns the number of candidate types.
func (d Domain) Len() int { return bits.OnesCount8(uint8(d & FullDomain)) }

// Empty reports whether no candidate remains.
func (d Domain) Empty() bool { return d&FullDomain == 0 }

// Types lists the members in canonical terrain order.
func (d Domain) Types() []terrain.Type {
	types := make([]terrain.Type, 0, d.Len())
	for _, t := range terrain.All() {
		if d.Has(t) {
			types = append(types, t)
		}
	}
	return types
}

func (d Domain) String() string {
	names := make([]string, 0, terrain.Count)
	for _, t := range d.Types() {
		names = append(names, t.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}
