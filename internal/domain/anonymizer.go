package domain

import (
	"math/rand"

	"github.com/google/uuid"
)

// Anonymizer maps real display names to opaque handles. The same name
// always yields the same handle within one room's lifetime, but handles are
// not guessable across rooms. Once frozen, the mapping never changes.
type Anonymizer struct {
	rng     *rand.Rand
	handles map[string]string
	frozen  bool
}

// NewAnonymizer constructs an empty mapping. A nil rng uses the default
// random source; supplying one makes handle assignment reproducible.
func NewAnonymizer(rng *rand.Rand) *Anonymizer {
	return &Anonymizer{
		rng:     rng,
		handles: make(map[string]string),
	}
}

// Anon returns the handle for name, assigning a fresh one on first sight.
// A frozen anonymizer returns the empty string for unknown names.
func (a *Anonymizer) Anon(name string) string {
	if handle, ok := a.handles[name]; ok {
		return handle
	}
	if a.frozen {
		return ""
	}

	var id uuid.UUID
	if a.rng != nil {
		id = uuid.Must(uuid.NewRandomFromReader(a.rng))
	} else {
		id = uuid.New()
	}
	handle := "anon-" + id.String()[:8]
	a.handles[name] = handle
	return handle
}

// Freeze stops new handles from being assigned. Called after the first full
// visibility pass so knowledge is fixed at reveal time.
func (a *Anonymizer) Freeze() {
	a.frozen = true
}

// Frozen reports whether the mapping has been fixed.
func (a *Anonymizer) Frozen() bool {
	return a.frozen
}
