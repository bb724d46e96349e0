package domain

// Sight is what one role may legitimately observe about the rest of the
// table. Peers appear only as anonymized handles, never raw display names,
// so a leaked client log cannot be correlated back to identities.
type Sight struct {
	// Spies is the primary list of anonymized handles the role perceives
	// as the enemy team (truthfully or not, depending on the role).
	Spies []string
	// RoleTags maps an anonymized handle to a role tag this role is
	// additionally allowed to learn.
	RoleTags map[string]RoleTag
}

// SightRule computes a role's partial view of the full roster. Rules are
// pure: the same roster and anonymizer always produce the same Sight.
type SightRule func(roster []*RoleInstance, self *RoleInstance, anon *Anonymizer) Sight

// ComputeSight evaluates the requesting instance's visibility rule.
func ComputeSight(roster []*RoleInstance, self *RoleInstance, anon *Anonymizer) (Sight, error) {
	info, err := LookupRole(self.Tag)
	if err != nil {
		return Sight{}, err
	}
	return info.Sight(roster, self, anon), nil
}

func emptySight() Sight {
	return Sight{RoleTags: map[string]RoleTag{}}
}

func tagSet(tags []RoleTag) map[RoleTag]bool {
	set := make(map[RoleTag]bool, len(tags))
	for _, tag := range tags {
		set[tag] = true
	}
	return set
}

// sightNone is the rule for roles with no special sight.
func sightNone(roster []*RoleInstance, self *RoleInstance, anon *Anonymizer) Sight {
	return emptySight()
}

// seesSpies enumerates every spy-aligned roster entry, excluding roles that
// disguise themselves from this seer.
func seesSpies(excluded ...RoleTag) SightRule {
	hidden := tagSet(excluded)
	return func(roster []*RoleInstance, self *RoleInstance, anon *Anonymizer) Sight {
		sight := emptySight()
		for _, peer := range roster {
			if peer.Seat == self.Seat || peer.Alliance != AllianceSpy || hidden[peer.Tag] {
				continue
			}
			sight.Spies = append(sight.Spies, anon.Anon(peer.DisplayName))
		}
		return sight
	}
}

// seesFellowSpies is the spy default: every other spy is visible except
// roles that hide from their own teammates.
func seesFellowSpies(hiddenFromTeam ...RoleTag) SightRule {
	return seesSpies(hiddenFromTeam...)
}

// seesTagged reveals each roster entry holding one of the target tags,
// labelled with the shown tag. Percival sees Merlin and Morgana both
// labelled as Merlin.
func seesTagged(shown RoleTag, targets ...RoleTag) SightRule {
	wanted := tagSet(targets)
	return func(roster []*RoleInstance, self *RoleInstance, anon *Anonymizer) Sight {
		sight := emptySight()
		for _, peer := range roster {
			if peer.Seat == self.Seat || !wanted[peer.Tag] {
				continue
			}
			sight.RoleTags[anon.Anon(peer.DisplayName)] = shown
		}
		return sight
	}
}

// seesPartner reveals the other member(s) of a mutual-recognition pair,
// labelled with their true tag.
func seesPartner(partners ...RoleTag) SightRule {
	wanted := tagSet(partners)
	return func(roster []*RoleInstance, self *RoleInstance, anon *Anonymizer) Sight {
		sight := emptySight()
		for _, peer := range roster {
			if peer.Seat == self.Seat || !wanted[peer.Tag] {
				continue
			}
			sight.RoleTags[anon.Anon(peer.DisplayName)] = peer.Tag
		}
		return sight
	}
}
