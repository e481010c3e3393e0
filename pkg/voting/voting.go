package voting

import (
	"time"

	"github.com/agoralive/debate-engine/pkg/apperr"
)

// Argument vote choices. Match votes use the participant id as the choice.
const (
	ChoiceUp   = "up"
	ChoiceDown = "down"
)

// Ballot is one recorded vote on a target. A target keeps one ballot per voter
// for its whole lifetime; there is no withdrawal or change.
type Ballot struct {
	VoterID string    `firestore:"voterId" json:"voterId"`
	Choice  string    `firestore:"choice" json:"choice"`
	CastAt  time.Time `firestore:"castAt" json:"castAt"`
}

// Cast appends a ballot for voterID iff the voter has no ballot on this target
// yet and choice is one of allowed. Returns the updated ballot list; on
// failure the input list is returned unchanged.
func Cast(ballots []Ballot, voterID, choice string, allowed []string, now time.Time) ([]Ballot, error) {
	ok := false
	for _, a := range allowed {
		if choice == a {
			ok = true
			break
		}
	}
	if !ok {
		return ballots, apperr.Newf(apperr.KindValidation, "%q is not a valid choice for this target", choice)
	}

	for _, b := range ballots {
		if b.VoterID == voterID {
			return ballots, apperr.New(apperr.KindConflict, "already voted on this target")
		}
	}

	return append(ballots, Ballot{VoterID: voterID, Choice: choice, CastAt: now}), nil
}

// Tally folds up/down ballots into a signed total.
func Tally(ballots []Ballot) int {
	total := 0
	for _, b := range ballots {
		switch b.Choice {
		case ChoiceUp:
			total++
		case ChoiceDown:
			total--
		}
	}
	return total
}

// CountFor counts the ballots cast for one choice.
func CountFor(ballots []Ballot, choice string) int {
	count := 0
	for _, b := range ballots {
		if b.Choice == choice {
			count++
		}
	}
	return count
}
