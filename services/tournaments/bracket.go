package tournaments

import (
	"sort"
	"time"

	"github.com/samborkent/uuidv7"

	"github.com/agoralive/debate-engine/pkg/apperr"
)

// Advance resolves every pending match of the current round by vote tally and
// either generates the next round or completes the tournament. Ties break to
// the better-seeded side.
func (t *Tournament) Advance(callerID string, now time.Time) error {
	if callerID != t.OrganizerID {
		return apperr.New(apperr.KindPermission, "only the organizer can advance the bracket")
	}
	if t.Status != StatusActive {
		return apperr.New(apperr.KindState, "tournament is not active")
	}
	round := t.currentRound()
	if round == nil {
		return apperr.New(apperr.KindState, "no bracket round to advance")
	}

	t.resolveRound(round, now)

	switch t.Settings.Format {
	case FormatSingleElimination:
		return t.advanceSingleElimination(round, now)
	case FormatDoubleElimination:
		return t.advanceDoubleElimination(round, now)
	case FormatRoundRobin:
		return t.advanceRoundRobin(now)
	default:
		return apperr.Newf(apperr.KindValidation, "unknown format %q", t.Settings.Format)
	}
}

func (t *Tournament) generateFirstRound(now time.Time) error {
	order := t.seededOrder()

	switch t.Settings.Format {
	case FormatSingleElimination:
		t.appendRound(seededPairs(order), "", now)
	case FormatDoubleElimination:
		t.appendRound(seededPairs(order), BracketWinners, now)
	case FormatRoundRobin:
		t.appendRound(roundRobinPairs(order, 1), "", now)
	default:
		return apperr.Newf(apperr.KindValidation, "unknown format %q", t.Settings.Format)
	}
	return nil
}

// resolveRound settles every open match of the round: the side with more
// votes wins, ties go to the better seed. Byes were already settled at
// generation time.
func (t *Tournament) resolveRound(round *BracketRound, now time.Time) {
	for i := range round.Matches {
		match := &round.Matches[i]
		if match.resolved() {
			continue
		}
		if match.Score1 > match.Score2 {
			match.WinnerID = match.Participant1
		} else if match.Score2 > match.Score1 {
			match.WinnerID = match.Participant2
		} else if t.seedRank(match.Participant1) <= t.seedRank(match.Participant2) {
			match.WinnerID = match.Participant1
		} else {
			match.WinnerID = match.Participant2
		}
		completed := now
		match.CompletedAt = &completed
	}

	if t.Settings.Format == FormatRoundRobin {
		return
	}
	// Knockout formats: a loss eliminates, except the first loss in double
	// elimination which only drops you to the losers bracket.
	for _, match := range round.Matches {
		loser := match.loser()
		if loser == "" {
			continue
		}
		if t.Settings.Format == FormatDoubleElimination && t.losses(loser) < 2 && match.Bracket == BracketWinners {
			continue
		}
		if p := t.participant(loser); p != nil {
			p.Status = ParticipantEliminated
		}
	}
}

func (t *Tournament) advanceSingleElimination(round *BracketRound, now time.Time) error {
	winners := make([]string, 0, len(round.Matches))
	for _, match := range round.Matches {
		winners = append(winners, match.WinnerID)
	}
	if len(winners) == 1 {
		t.complete(winners[0], now)
		return nil
	}
	t.appendRound(sequentialPairs(winners), "", now)
	return nil
}

func (t *Tournament) advanceDoubleElimination(round *BracketRound, now time.Time) error {
	if round.Matches[len(round.Matches)-1].Bracket == BracketGrandFinal {
		final := round.Matches[len(round.Matches)-1]
		if p := t.participant(final.loser()); p != nil {
			p.Status = ParticipantEliminated
		}
		t.complete(final.WinnerID, now)
		return nil
	}

	var zeroLoss, oneLoss []string
	for _, userID := range t.seededIDs() {
		p := t.participant(userID)
		if p.Status == ParticipantEliminated {
			continue
		}
		switch t.losses(userID) {
		case 0:
			zeroLoss = append(zeroLoss, userID)
		case 1:
			oneLoss = append(oneLoss, userID)
		}
	}

	if len(zeroLoss) == 1 && len(oneLoss) == 0 {
		t.complete(zeroLoss[0], now)
		return nil
	}
	if len(zeroLoss) == 1 && len(oneLoss) == 1 {
		t.appendRound([][2]string{{zeroLoss[0], oneLoss[0]}}, BracketGrandFinal, now)
		return nil
	}

	var matches []Match
	for _, pair := range sequentialPairs(zeroLoss) {
		matches = append(matches, newMatch(pair, BracketWinners, now))
	}
	for _, pair := range sequentialPairs(oneLoss) {
		matches = append(matches, newMatch(pair, BracketLosers, now))
	}
	t.appendMatches(matches, now)
	return nil
}

func (t *Tournament) advanceRoundRobin(now time.Time) error {
	order := t.seededOrder()
	total := len(order) - 1
	if len(order)%2 != 0 {
		total = len(order)
	}
	next := len(t.Brackets) + 1
	if next > total {
		standings := ComputeLeaderboard(t)
		t.complete(standings[0].UserID, now)
		return nil
	}
	t.appendRound(roundRobinPairs(order, next), "", now)
	return nil
}

func (t *Tournament) complete(winnerID string, now time.Time) {
	t.Status = StatusCompleted
	t.WinnerID = winnerID
	for i := range t.Participants {
		if t.Participants[i].UserID == winnerID {
			t.Participants[i].Status = ParticipantWinner
		} else if t.Participants[i].Status != ParticipantEliminated {
			t.Participants[i].Status = ParticipantEliminated
		}
	}
	t.Leaderboard = ComputeLeaderboard(t)
	t.Rewards = computeRewards(t.Leaderboard, t.Settings.PrizePool)
}

// appendRound adds one bracket round from pairs; byes resolve on the spot.
func (t *Tournament) appendRound(pairs [][2]string, bracket string, now time.Time) {
	matches := make([]Match, 0, len(pairs))
	for _, pair := range pairs {
		matches = append(matches, newMatch(pair, bracket, now))
	}
	t.appendMatches(matches, now)
}

func (t *Tournament) appendMatches(matches []Match, now time.Time) {
	t.Brackets = append(t.Brackets, BracketRound{
		Round:   len(t.Brackets) + 1,
		Matches: matches,
	})
}

func newMatch(pair [2]string, bracket string, now time.Time) Match {
	match := Match{
		MatchID:      uuidv7.New().String(),
		Participant1: pair[0],
		Participant2: pair[1],
		Bracket:      bracket,
		ScheduledAt:  now,
	}
	if match.isBye() {
		match.WinnerID = match.Participant1
		completed := now
		match.CompletedAt = &completed
	}
	return match
}

func (m Match) loser() string {
	if m.WinnerID == "" || m.isBye() {
		return ""
	}
	if m.WinnerID == m.Participant1 {
		return m.Participant2
	}
	return m.Participant1
}

// losses counts resolved non-bye matches lost by userID across the bracket.
func (t *Tournament) losses(userID string) int {
	count := 0
	for _, round := range t.Brackets {
		for _, match := range round.Matches {
			if match.resolved() && match.loser() == userID {
				count++
			}
		}
	}
	return count
}

// seededOrder sorts participants best seed first: explicit seeds ascending,
// unseeded after them in registration order.
func (t *Tournament) seededOrder() []Participant {
	order := make([]Participant, len(t.Participants))
	copy(order, t.Participants)
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if (a.Seed > 0) != (b.Seed > 0) {
			return a.Seed > 0
		}
		if a.Seed > 0 && b.Seed > 0 && a.Seed != b.Seed {
			return a.Seed < b.Seed
		}
		return a.RegisteredAt.Before(b.RegisteredAt)
	})
	return order
}

func (t *Tournament) seededIDs() []string {
	order := t.seededOrder()
	ids := make([]string, len(order))
	for i, p := range order {
		ids[i] = p.UserID
	}
	return ids
}

// seedRank is the position in the seeded order; lower is better. Unknown ids
// rank last so byes never win a tie against a real participant.
func (t *Tournament) seedRank(userID string) int {
	for i, p := range t.seededOrder() {
		if p.UserID == userID {
			return i
		}
	}
	return len(t.Participants)
}

// seededPairs pads the field to a power of two with byes and pairs the best
// remaining seed against the worst, 1vN, 2v(N-1) and so on.
func seededPairs(order []Participant) [][2]string {
	size := nextPowerOfTwo(len(order))
	pairs := make([][2]string, 0, size/2)
	for i := 0; i < size/2; i++ {
		pair := [2]string{order[i].UserID, ""}
		if j := size - 1 - i; j < len(order) {
			pair[1] = order[j].UserID
		}
		pairs = append(pairs, pair)
	}
	return pairs
}

// sequentialPairs pairs survivors in order; an odd one out gets a bye.
func sequentialPairs(ids []string) [][2]string {
	var pairs [][2]string
	for i := 0; i+1 < len(ids); i += 2 {
		pairs = append(pairs, [2]string{ids[i], ids[i+1]})
	}
	if len(ids)%2 != 0 {
		pairs = append(pairs, [2]string{ids[len(ids)-1], ""})
	}
	return pairs
}

// roundRobinPairs is the circle method: one fixed participant, the rest
// rotating each round. Odd fields get a phantom slot whose pairing is simply
// skipped, so everyone sits out exactly once per cycle.
func roundRobinPairs(order []Participant, round int) [][2]string {
	ids := make([]string, len(order))
	for i, p := range order {
		ids[i] = p.UserID
	}
	if len(ids)%2 != 0 {
		ids = append(ids, "")
	}

	n := len(ids)
	rest := n - 1
	line := make([]string, 0, n)
	line = append(line, ids[0])
	for i := 0; i < rest; i++ {
		line = append(line, ids[1+((i+round-1)%rest)])
	}

	var pairs [][2]string
	for i := 0; i < n/2; i++ {
		p1, p2 := line[i], line[n-1-i]
		if p1 == "" || p2 == "" {
			continue
		}
		pairs = append(pairs, [2]string{p1, p2})
	}
	return pairs
}

func nextPowerOfTwo(n int) int {
	size := 1
	for size < n {
		size *= 2
	}
	return size
}
