package domain

import "errors"

// Alliance is a player's team affiliation, determining default visibility rules.
type Alliance string

const (
	// AllianceResistance is the loyal side.
	AllianceResistance Alliance = "Resistance"
	// AllianceSpy is the infiltrated side.
	AllianceSpy Alliance = "Spy"
)

// Faction names the sub-group a role belongs to within its alliance.
type Faction string

const (
	FactionServants  Faction = "Servants of Arthur"
	FactionDisciples Faction = "Disciples of Merlin"
	FactionMinions   Faction = "Minions of Mordred"
)

// RoleTag identifies a secret role in the catalog.
type RoleTag string

const (
	RoleResistance      RoleTag = "Resistance"
	RoleMerlin          RoleTag = "Merlin"
	RolePercival        RoleTag = "Percival"
	RoleMelron          RoleTag = "Melron"
	RoleTristan         RoleTag = "Tristan"
	RoleIsolde          RoleTag = "Isolde"
	RoleDisciple        RoleTag = "Disciple of Merlin"
	RoleSpy             RoleTag = "Spy"
	RoleAssassin        RoleTag = "Assassin"
	RoleMorgana         RoleTag = "Morgana"
	RoleMordred         RoleTag = "Mordred"
	RoleMordredAssassin RoleTag = "MordredAssassin"
	RoleOberon          RoleTag = "Oberon"
	RoleHitberon        RoleTag = "Hitberon"
)

// SpecialPhase marks roles whose one-time action happens outside the normal
// turn order. Empty means the role has no special move.
type SpecialPhase string

const (
	SpecialPhaseNone          SpecialPhase = ""
	SpecialPhaseAssassination SpecialPhase = "assassination"
)

// ErrUnknownRole is returned when an assigned tag has no catalog entry.
// This is an internal inconsistency fatal to the room it occurs in.
var ErrUnknownRole = errors.New("role tag not in catalog")

// RoleInfo is the fixed catalog record for one role tag.
type RoleInfo struct {
	Tag           RoleTag
	Alliance      Alliance
	Faction       Faction
	Description   string
	OrderPriority int // sequences special-move resolution, lowest first
	SpecialPhase  SpecialPhase
	Sight         SightRule
}

// merlinBlind holds the spy roles that successfully disguise themselves
// from Merlin-sighted seers.
var merlinBlind = []RoleTag{RoleMordred, RoleMordredAssassin}

// spyIsolates are spies who intentionally hide from their own teammates
// and see nothing themselves.
var spyIsolates = []RoleTag{RoleOberon, RoleHitberon}

var catalog = map[RoleTag]RoleInfo{
	RoleResistance: {
		Tag:           RoleResistance,
		Alliance:      AllianceResistance,
		Faction:       FactionServants,
		Description:   "A loyal servant of Arthur with no special sight.",
		OrderPriority: 200,
		Sight:         sightNone,
	},
	RoleMerlin: {
		Tag:           RoleMerlin,
		Alliance:      AllianceResistance,
		Faction:       FactionServants,
		Description:   "Knows the spies, except those hidden by Mordred.",
		OrderPriority: 100,
		Sight:         seesSpies(merlinBlind...),
	},
	RolePercival: {
		Tag:           RolePercival,
		Alliance:      AllianceResistance,
		Faction:       FactionServants,
		Description:   "Sees Merlin and Morgana, but not which is which.",
		OrderPriority: 110,
		Sight:         seesTagged(RoleMerlin, RoleMerlin, RoleMorgana),
	},
	RoleMelron: {
		Tag:           RoleMelron,
		Alliance:      AllianceResistance,
		Faction:       FactionServants,
		Description:   "Thinks they are Merlin.",
		OrderPriority: 101,
		Sight:         seesSpies(merlinBlind...),
	},
	RoleTristan: {
		Tag:           RoleTristan,
		Alliance:      AllianceResistance,
		Faction:       FactionServants,
		Description:   "Knows Isolde.",
		OrderPriority: 120,
		Sight:         seesPartner(RoleIsolde),
	},
	RoleIsolde: {
		Tag:           RoleIsolde,
		Alliance:      AllianceResistance,
		Faction:       FactionServants,
		Description:   "Knows Tristan.",
		OrderPriority: 121,
		Sight:         seesPartner(RoleTristan),
	},
	RoleDisciple: {
		Tag:           RoleDisciple,
		Alliance:      AllianceResistance,
		Faction:       FactionDisciples,
		Description:   "Knows who Merlin is.",
		OrderPriority: 130,
		Sight:         seesTagged(RoleMerlin, RoleMerlin),
	},
	RoleSpy: {
		Tag:           RoleSpy,
		Alliance:      AllianceSpy,
		Faction:       FactionMinions,
		Description:   "A minion of Mordred. Knows the other spies.",
		OrderPriority: 40,
		Sight:         seesFellowSpies(spyIsolates...),
	},
	RoleAssassin: {
		Tag:           RoleAssassin,
		Alliance:      AllianceSpy,
		Faction:       FactionMinions,
		Description:   "Knows the other spies. May attempt to assassinate Merlin.",
		OrderPriority: 10,
		SpecialPhase:  SpecialPhaseAssassination,
		Sight:         seesFellowSpies(spyIsolates...),
	},
	RoleMorgana: {
		Tag:           RoleMorgana,
		Alliance:      AllianceSpy,
		Faction:       FactionMinions,
		Description:   "Appears as Merlin to Percival. Knows the other spies.",
		OrderPriority: 20,
		Sight:         seesFellowSpies(spyIsolates...),
	},
	RoleMordred: {
		Tag:           RoleMordred,
		Alliance:      AllianceSpy,
		Faction:       FactionMinions,
		Description:   "Hidden from Merlin. Knows the other spies.",
		OrderPriority: 21,
		Sight:         seesFellowSpies(spyIsolates...),
	},
	RoleMordredAssassin: {
		Tag:           RoleMordredAssassin,
		Alliance:      AllianceSpy,
		Faction:       FactionMinions,
		Description:   "Hidden from Merlin. May attempt to assassinate Merlin.",
		OrderPriority: 11,
		SpecialPhase:  SpecialPhaseAssassination,
		Sight:         seesFellowSpies(spyIsolates...),
	},
	RoleOberon: {
		Tag:           RoleOberon,
		Alliance:      AllianceSpy,
		Faction:       FactionMinions,
		Description:   "A spy unknown to the other spies, who knows no one.",
		OrderPriority: 30,
		Sight:         sightNone,
	},
	RoleHitberon: {
		Tag:           RoleHitberon,
		Alliance:      AllianceSpy,
		Faction:       FactionMinions,
		Description:   "An isolated spy who may attempt to assassinate Merlin.",
		OrderPriority: 12,
		SpecialPhase:  SpecialPhaseAssassination,
		Sight:         sightNone,
	},
}

// LookupRole returns the catalog record for a tag.
func LookupRole(tag RoleTag) (RoleInfo, error) {
	info, ok := catalog[tag]
	if !ok {
		return RoleInfo{}, ErrUnknownRole
	}
	return info, nil
}

// AllRoles lists every tag in the catalog. Order is unspecified.
func AllRoles() []RoleTag {
	tags := make([]RoleTag, 0, len(catalog))
	for tag := range catalog {
		tags = append(tags, tag)
	}
	return tags
}

// RoleInstance is one player's secret assignment within a room.
// Tag and Alliance never change after assignment.
type RoleInstance struct {
	Tag           RoleTag
	Alliance      Alliance
	Description   string
	OrderPriority int
	SpecialPhase  SpecialPhase

	UserID      string
	DisplayName string
	Seat        int // index into the room's seating order

	// Sight is cached at game start so a player's knowledge is fixed at
	// reveal time. Nil until the first visibility pass.
	Sight *Sight
}

// NewRoleInstance builds an instance for a seated player from the catalog.
func NewRoleInstance(tag RoleTag, userID, displayName string, seat int) (*RoleInstance, error) {
	info, err := LookupRole(tag)
	if err != nil {
		return nil, err
	}
	return &RoleInstance{
		Tag:           info.Tag,
		Alliance:      info.Alliance,
		Description:   info.Description,
		OrderPriority: info.OrderPriority,
		SpecialPhase:  info.SpecialPhase,
		UserID:        userID,
		DisplayName:   displayName,
		Seat:          seat,
	}, nil
}
