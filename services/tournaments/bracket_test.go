package tournaments

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// voteFor casts `count` spectator votes for one side of a match.
func voteFor(t *testing.T, tournament *Tournament, matchID, votedFor string, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		voter := fmt.Sprintf("viewer-%s-%s-%d", matchID, votedFor, i)
		require.NoError(t, tournament.CastMatchVote(voter, matchID, votedFor, testNow))
	}
}

func TestSingleEliminationFullRun(t *testing.T) {
	tournament := startedTournament(t, FormatSingleElimination, 4)

	// Seeding by registration order: (p0 v p3), (p1 v p2).
	round1 := tournament.Brackets[0].Matches
	require.Len(t, round1, 2)
	assert.Equal(t, "p0", round1[0].Participant1)
	assert.Equal(t, "p3", round1[0].Participant2)
	assert.Equal(t, "p1", round1[1].Participant1)
	assert.Equal(t, "p2", round1[1].Participant2)

	voteFor(t, tournament, round1[0].MatchID, "p0", 3)
	voteFor(t, tournament, round1[0].MatchID, "p3", 1)
	voteFor(t, tournament, round1[1].MatchID, "p2", 2)

	require.NoError(t, tournament.Advance("org", testNow))
	assert.Equal(t, StatusActive, tournament.Status)
	require.Len(t, tournament.Brackets, 2)

	assert.Equal(t, ParticipantEliminated, tournament.participant("p3").Status)
	assert.Equal(t, ParticipantEliminated, tournament.participant("p1").Status)

	final := tournament.Brackets[1].Matches
	require.Len(t, final, 1)
	assert.Equal(t, "p0", final[0].Participant1)
	assert.Equal(t, "p2", final[0].Participant2)

	voteFor(t, tournament, final[0].MatchID, "p2", 5)
	require.NoError(t, tournament.Advance("org", testNow))

	assert.Equal(t, StatusCompleted, tournament.Status)
	assert.Equal(t, "p2", tournament.WinnerID)
	assert.Equal(t, ParticipantWinner, tournament.participant("p2").Status)
	assert.Equal(t, ParticipantEliminated, tournament.participant("p0").Status)

	require.NotEmpty(t, tournament.Leaderboard)
	assert.Equal(t, "p2", tournament.Leaderboard[0].UserID)
	assert.Equal(t, 2, tournament.Leaderboard[0].Wins)
	assert.Equal(t, 1, tournament.Leaderboard[0].Rank)

	require.Len(t, tournament.Rewards, 3)
	assert.Equal(t, Reward{UserID: "p2", Type: RewardNFT, Amount: 100}, tournament.Rewards[0])
	assert.Equal(t, RewardToken, tournament.Rewards[1].Type)
	assert.Equal(t, RewardBadge, tournament.Rewards[2].Type)
	for _, reward := range tournament.Rewards {
		assert.False(t, reward.Claimed)
	}
}

func TestSingleEliminationWithByes(t *testing.T) {
	tournament := startedTournament(t, FormatSingleElimination, 5)

	// Field padded to 8: three byes plus p3 v p4.
	round1 := tournament.Brackets[0].Matches
	require.Len(t, round1, 4)

	byes := 0
	for _, match := range round1 {
		if match.isBye() {
			byes++
			assert.True(t, match.resolved(), "byes resolve at generation")
			assert.Equal(t, match.Participant1, match.WinnerID)
		}
	}
	assert.Equal(t, 3, byes)

	contested := round1[3]
	assert.Equal(t, "p3", contested.Participant1)
	assert.Equal(t, "p4", contested.Participant2)

	voteFor(t, tournament, contested.MatchID, "p4", 2)
	require.NoError(t, tournament.Advance("org", testNow))

	round2 := tournament.Brackets[1].Matches
	require.Len(t, round2, 2)
	assert.Equal(t, "p0", round2[0].Participant1)
	assert.Equal(t, "p1", round2[0].Participant2)
	assert.Equal(t, "p2", round2[1].Participant1)
	assert.Equal(t, "p4", round2[1].Participant2)
}

func TestTieBreaksToBetterSeed(t *testing.T) {
	tournament := startedTournament(t, FormatSingleElimination, 2)
	match := tournament.Brackets[0].Matches[0]

	// One vote each: dead heat, earlier registrant holds the better seed.
	voteFor(t, tournament, match.MatchID, match.Participant1, 1)
	voteFor(t, tournament, match.MatchID, match.Participant2, 1)

	require.NoError(t, tournament.Advance("org", testNow))
	assert.Equal(t, StatusCompleted, tournament.Status)
	assert.Equal(t, "p0", tournament.WinnerID)
}

func TestExplicitSeedsOverrideRegistrationOrder(t *testing.T) {
	tournament := testTournament(FormatSingleElimination, 8)
	for i := 0; i < 4; i++ {
		require.NoError(t, tournament.Register(registrant(fmt.Sprintf("p%d", i), time.Duration(i)*time.Minute), false, testNow))
	}
	// Late registrant carries the top seed.
	tournament.participant("p3").Seed = 1
	tournament.participant("p0").Seed = 2

	require.NoError(t, tournament.Start("org", testNow))

	round1 := tournament.Brackets[0].Matches
	require.Len(t, round1, 2)
	// Seeded order is p3, p0, then p1, p2 by registration: 1v4 is p3 v p2.
	assert.Equal(t, "p3", round1[0].Participant1)
	assert.Equal(t, "p2", round1[0].Participant2)
	assert.Equal(t, "p0", round1[1].Participant1)
	assert.Equal(t, "p1", round1[1].Participant2)
}

func TestRoundRobinPlaysEveryPairOnce(t *testing.T) {
	tournament := startedTournament(t, FormatRoundRobin, 3)

	played := map[string]int{}
	for tournament.Status == StatusActive {
		round := tournament.Brackets[len(tournament.Brackets)-1]
		for _, match := range round.Matches {
			a, b := match.Participant1, match.Participant2
			if a > b {
				a, b = b, a
			}
			played[a+"/"+b]++
		}
		require.NoError(t, tournament.Advance("org", testNow))
	}

	assert.Equal(t, StatusCompleted, tournament.Status)
	assert.Len(t, tournament.Brackets, 3, "three participants sit out one round each")
	assert.Equal(t, map[string]int{
		"p0/p1": 1,
		"p0/p2": 1,
		"p1/p2": 1,
	}, played)
	assert.NotEmpty(t, tournament.WinnerID)
}

func TestRoundRobinWinnerByStandings(t *testing.T) {
	tournament := startedTournament(t, FormatRoundRobin, 4)

	// p2 takes every match it plays by a landslide.
	for tournament.Status == StatusActive {
		round := tournament.Brackets[len(tournament.Brackets)-1]
		for _, match := range round.Matches {
			if match.Participant1 == "p2" || match.Participant2 == "p2" {
				voteFor(t, tournament, match.MatchID, "p2", 3)
			}
		}
		require.NoError(t, tournament.Advance("org", testNow))
	}

	assert.Equal(t, "p2", tournament.WinnerID)
	assert.Equal(t, 3, tournament.Leaderboard[0].Wins)
}

func TestDoubleEliminationFullRun(t *testing.T) {
	tournament := startedTournament(t, FormatDoubleElimination, 4)

	// Round 1, winners bracket: (p0 v p3), (p1 v p2).
	round1 := tournament.Brackets[0].Matches
	require.Len(t, round1, 2)
	for _, match := range round1 {
		assert.Equal(t, BracketWinners, match.Bracket)
	}

	voteFor(t, tournament, round1[0].MatchID, "p0", 2)
	voteFor(t, tournament, round1[1].MatchID, "p1", 2)
	require.NoError(t, tournament.Advance("org", testNow))

	// One loss drops you to the losers bracket, it does not eliminate.
	assert.Equal(t, ParticipantActive, tournament.participant("p3").Status)
	assert.Equal(t, ParticipantActive, tournament.participant("p2").Status)

	round2 := tournament.Brackets[1].Matches
	require.Len(t, round2, 2)
	assert.Equal(t, BracketWinners, round2[0].Bracket)
	assert.Equal(t, "p0", round2[0].Participant1)
	assert.Equal(t, "p1", round2[0].Participant2)
	assert.Equal(t, BracketLosers, round2[1].Bracket)
	assert.Equal(t, "p2", round2[1].Participant1)
	assert.Equal(t, "p3", round2[1].Participant2)

	voteFor(t, tournament, round2[0].MatchID, "p0", 2)
	voteFor(t, tournament, round2[1].MatchID, "p3", 2)
	require.NoError(t, tournament.Advance("org", testNow))

	// Second loss is fatal.
	assert.Equal(t, ParticipantEliminated, tournament.participant("p2").Status)

	// p0 idles on a bye while the losers bracket settles p1 v p3.
	round3 := tournament.Brackets[2].Matches
	require.Len(t, round3, 2)
	assert.True(t, round3[0].isBye())
	assert.Equal(t, "p0", round3[0].WinnerID)
	assert.Equal(t, BracketLosers, round3[1].Bracket)
	assert.Equal(t, "p1", round3[1].Participant1)
	assert.Equal(t, "p3", round3[1].Participant2)

	voteFor(t, tournament, round3[1].MatchID, "p3", 2)
	require.NoError(t, tournament.Advance("org", testNow))

	assert.Equal(t, ParticipantEliminated, tournament.participant("p1").Status)

	// Grand final: the unbeaten p0 against the losers bracket survivor p3.
	round4 := tournament.Brackets[3].Matches
	require.Len(t, round4, 1)
	assert.Equal(t, BracketGrandFinal, round4[0].Bracket)
	assert.Equal(t, "p0", round4[0].Participant1)
	assert.Equal(t, "p3", round4[0].Participant2)

	voteFor(t, tournament, round4[0].MatchID, "p3", 3)
	require.NoError(t, tournament.Advance("org", testNow))

	assert.Equal(t, StatusCompleted, tournament.Status)
	assert.Equal(t, "p3", tournament.WinnerID)
	assert.Equal(t, ParticipantWinner, tournament.participant("p3").Status)
	assert.Equal(t, ParticipantEliminated, tournament.participant("p0").Status)
}

func TestAdvanceGuards(t *testing.T) {
	tournament := startedTournament(t, FormatSingleElimination, 4)

	err := tournament.Advance("p0", testNow)
	require.Error(t, err)

	require.NoError(t, tournament.Cancel("org"))
	err = tournament.Advance("org", testNow)
	require.Error(t, err)
}
