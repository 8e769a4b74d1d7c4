// Package reference derives the idempotency key that ties an income entry back to
// the payment it was generated from. The key is a pure function of the payment,
// so replaying the same payment always resolves to the same entry.
package reference

import (
	"fmt"
	"time"
)

// Domain identifies the source system a reference belongs to.
type Domain string

const (
	// DomainConcession covers concession payments (market stalls, kiosks,
	// facility rentals).
	DomainConcession Domain = "CONC"
)

// Label returns the human prefix used on generated entry concepts.
func (d Domain) Label() string {
	switch d {
	case DomainConcession:
		return "Concesión"
	default:
		return string(d)
	}
}

// Generate builds the reference number for a source event. The event date, not
// the current time, is part of the key: same inputs, same reference.
func Generate(domain Domain, sourceID int64, eventDate time.Time) string {
	return fmt.Sprintf("%s-%d-%s", domain, sourceID, eventDate.Format("20060102"))
}
