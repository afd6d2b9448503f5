package scoring

// TeamSide places the acting player on one side of the net.
type TeamSide int

const (
	// SideUnknown means the acting player could not be resolved to either
	// team of the match. The event is still logged but no score changes.
	SideUnknown TeamSide = iota
	SideA
	SideB
)

// Derive computes the point delta each side gains from one recorded
// action. Earned actions score for the acting player's team, faults score
// for the opponent, neutral actions never score. Pure function; both the
// record and the undo path go through it (undo negates the result).
func Derive(category Category, side TeamSide) (deltaA, deltaB int) {
	if side == SideUnknown {
		return 0, 0
	}
	switch category {
	case CategoryEarned:
		if side == SideA {
			return 1, 0
		}
		return 0, 1
	case CategoryFault:
		if side == SideA {
			return 0, 1
		}
		return 1, 0
	default:
		return 0, 0
	}
}

// SideOf resolves a team id against the two teams of a match. Identifiers
// are typed ints end to end; there is deliberately no fuzzy fallback.
func SideOf(teamID, teamAID, teamBID int) TeamSide {
	switch teamID {
	case teamAID:
		return SideA
	case teamBID:
		return SideB
	default:
		return SideUnknown
	}
}
