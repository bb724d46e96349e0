package domain

import "sort"

// MoveStatus reports the outcome of a special-move check.
type MoveStatus int

const (
	// MoveGranted means the action was granted and is now consumed.
	MoveGranted MoveStatus = iota
	// MoveAlreadyUsed means the role already took its one-time action.
	MoveAlreadyUsed
	// MoveNone means the role has no special move at all.
	MoveNone
)

// SpecialMove describes a granted or pending one-time role action.
type SpecialMove struct {
	Seat     int
	Tag      RoleTag
	Phase    SpecialPhase
	Priority int
}

// Ledger tracks one-time role actions taken during a single match.
// It is scoped to one room and keyed by seat, so a role may take its
// special move at most once per room.
type Ledger struct {
	used map[int]bool
}

// NewLedger constructs an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{used: make(map[int]bool)}
}

// CheckSpecialMove grants the instance's special move exactly once.
// Repeat invocations return MoveAlreadyUsed with no side effect.
func (l *Ledger) CheckSpecialMove(inst *RoleInstance) (SpecialMove, MoveStatus) {
	if inst.SpecialPhase == SpecialPhaseNone {
		return SpecialMove{}, MoveNone
	}
	if l.used[inst.Seat] {
		return SpecialMove{}, MoveAlreadyUsed
	}
	l.used[inst.Seat] = true
	return SpecialMove{
		Seat:     inst.Seat,
		Tag:      inst.Tag,
		Phase:    inst.SpecialPhase,
		Priority: inst.OrderPriority,
	}, MoveGranted
}

// Pending lists unconsumed special moves in resolution order: ascending
// order priority, ties broken by seat. This makes replay deterministic
// given the same roster.
func (l *Ledger) Pending(roster []*RoleInstance) []SpecialMove {
	var moves []SpecialMove
	for _, inst := range roster {
		if inst.SpecialPhase == SpecialPhaseNone || l.used[inst.Seat] {
			continue
		}
		moves = append(moves, SpecialMove{
			Seat:     inst.Seat,
			Tag:      inst.Tag,
			Phase:    inst.SpecialPhase,
			Priority: inst.OrderPriority,
		})
	}
	sort.Slice(moves, func(i, j int) bool {
		if moves[i].Priority != moves[j].Priority {
			return moves[i].Priority < moves[j].Priority
		}
		return moves[i].Seat < moves[j].Seat
	})
	return moves
}
