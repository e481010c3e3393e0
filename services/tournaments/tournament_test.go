package tournaments

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agoralive/debate-engine/pkg/apperr"
)

var (
	testNow      = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	testDeadline = testNow.Add(24 * time.Hour)
	testStart    = testNow.Add(48 * time.Hour)
	testEnd      = testNow.Add(72 * time.Hour)
)

func testTournament(format Format, maxParticipants int) *Tournament {
	return New("t1", "Spring Open", "", "AI rights", "org",
		Settings{MaxParticipants: maxParticipants, Format: format, PrizePool: PrizePool{First: 100, Second: 50, Third: 25}},
		testDeadline, testStart, testEnd, testNow)
}

func registrant(id string, offset time.Duration) Participant {
	return Participant{UserID: id, DisplayName: id, RegisteredAt: testNow.Add(offset)}
}

func TestValidateSettings(t *testing.T) {
	cases := []struct {
		name     string
		settings Settings
		wantErr  bool
	}{
		{"valid", Settings{MaxParticipants: 16, Format: FormatSingleElimination}, false},
		{"too small", Settings{MaxParticipants: 3, Format: FormatSingleElimination}, true},
		{"too large", Settings{MaxParticipants: 129, Format: FormatSingleElimination}, true},
		{"negative fee", Settings{MaxParticipants: 8, EntryFee: -1, Format: FormatRoundRobin}, true},
		{"unknown format", Settings{MaxParticipants: 8, Format: "swiss"}, true},
		{"round robin", Settings{MaxParticipants: 8, Format: FormatRoundRobin}, false},
		{"double elim", Settings{MaxParticipants: 8, Format: FormatDoubleElimination}, false},
	}

	for _, c := range cases {
		err := ValidateSettings(c.settings)
		if c.wantErr && err == nil {
			t.Errorf("%s: expected settings to be rejected", c.name)
		}
		if !c.wantErr && err != nil {
			t.Errorf("%s: expected settings to be accepted, got %v", c.name, err)
		}
	}
}

func TestValidateDates(t *testing.T) {
	assert.NoError(t, ValidateDates(testDeadline, testStart, testEnd))
	assert.NoError(t, ValidateDates(testStart, testStart, testStart), "equal bounds are allowed")

	err := ValidateDates(testStart.Add(time.Hour), testStart, testEnd)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "deadline after start")

	err = ValidateDates(testDeadline, testEnd.Add(time.Hour), testEnd)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "start after end")
}

func TestRegisterFlipsUpcomingToRegistration(t *testing.T) {
	tournament := testTournament(FormatSingleElimination, 4)
	assert.Equal(t, StatusUpcoming, tournament.Status)

	require.NoError(t, tournament.Register(registrant("alice", 0), false, testNow))
	assert.Equal(t, StatusRegistration, tournament.Status)
	require.Len(t, tournament.Participants, 1)
	assert.Equal(t, ParticipantRegistered, tournament.Participants[0].Status)
}

func TestRegisterAfterDeadlineRejected(t *testing.T) {
	tournament := testTournament(FormatSingleElimination, 4)

	err := tournament.Register(registrant("late", 0), false, testDeadline.Add(time.Second))
	assert.Equal(t, apperr.KindState, apperr.KindOf(err))
	assert.Empty(t, tournament.Participants, "roster must have room yet still reject")
}

func TestRegisterDuplicateRejected(t *testing.T) {
	tournament := testTournament(FormatSingleElimination, 4)
	require.NoError(t, tournament.Register(registrant("alice", 0), false, testNow))

	err := tournament.Register(registrant("alice", time.Minute), false, testNow)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Len(t, tournament.Participants, 1)
}

func TestRegisterFullRejected(t *testing.T) {
	tournament := testTournament(FormatSingleElimination, 4)
	for i := 0; i < 4; i++ {
		require.NoError(t, tournament.Register(registrant(fmt.Sprintf("p%d", i), time.Duration(i)*time.Minute), false, testNow))
	}

	err := tournament.Register(registrant("extra", time.Hour), false, testNow)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Len(t, tournament.Participants, 4)
}

func TestRegisterPremiumOnly(t *testing.T) {
	tournament := testTournament(FormatSingleElimination, 4)
	tournament.Settings.PremiumOnly = true

	err := tournament.Register(registrant("freeloader", 0), false, testNow)
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))

	require.NoError(t, tournament.Register(registrant("member", 0), true, testNow))
}

func TestRegisterAIGate(t *testing.T) {
	tournament := testTournament(FormatSingleElimination, 4)
	bot := registrant("bot-1", 0)
	bot.IsAI = true

	err := tournament.Register(bot, false, testNow)
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))

	tournament.Settings.AllowAI = true
	require.NoError(t, tournament.Register(bot, false, testNow))
}

func TestRegisterAfterStartRejected(t *testing.T) {
	tournament := startedTournament(t, FormatSingleElimination, 4)

	err := tournament.Register(registrant("late", time.Hour), false, testNow)
	assert.Equal(t, apperr.KindState, apperr.KindOf(err))
}

func TestStartGuards(t *testing.T) {
	tournament := testTournament(FormatSingleElimination, 4)

	err := tournament.Start("org", testNow)
	assert.Equal(t, apperr.KindState, apperr.KindOf(err), "cannot start with an empty roster")

	require.NoError(t, tournament.Register(registrant("alice", 0), false, testNow))

	err = tournament.Start("org", testNow)
	assert.Equal(t, apperr.KindState, apperr.KindOf(err), "one participant is not a bracket")

	require.NoError(t, tournament.Register(registrant("bob", time.Minute), false, testNow))

	err = tournament.Start("alice", testNow)
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err), "only the organizer starts")

	require.NoError(t, tournament.Start("org", testNow))
	assert.Equal(t, StatusActive, tournament.Status)
	require.Len(t, tournament.Brackets, 1)
	for _, p := range tournament.Participants {
		assert.Equal(t, ParticipantActive, p.Status)
	}
}

func TestVoteRequiresActiveTournament(t *testing.T) {
	tournament := testTournament(FormatSingleElimination, 4)
	require.NoError(t, tournament.Register(registrant("alice", 0), false, testNow))

	err := tournament.CastMatchVote("viewer", "m1", "alice", testNow)
	assert.Equal(t, apperr.KindState, apperr.KindOf(err))
}

func TestVoteUnknownMatch(t *testing.T) {
	tournament := startedTournament(t, FormatSingleElimination, 4)

	err := tournament.CastMatchVote("viewer", "no-such-match", "p0", testNow)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestVoteForNonParticipantRejected(t *testing.T) {
	tournament := startedTournament(t, FormatSingleElimination, 4)
	match := tournament.Brackets[0].Matches[0]

	err := tournament.CastMatchVote("viewer", match.MatchID, "zelda", testNow)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Empty(t, tournament.findMatch(match.MatchID).Votes)
}

func TestVoteDuplicateRejected(t *testing.T) {
	tournament := startedTournament(t, FormatSingleElimination, 4)
	match := tournament.Brackets[0].Matches[0]

	require.NoError(t, tournament.CastMatchVote("viewer", match.MatchID, match.Participant1, testNow))

	err := tournament.CastMatchVote("viewer", match.MatchID, match.Participant2, testNow)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	updated := tournament.findMatch(match.MatchID)
	assert.Equal(t, 1, updated.Score1)
	assert.Equal(t, 0, updated.Score2)
}

func TestCancel(t *testing.T) {
	tournament := startedTournament(t, FormatSingleElimination, 4)

	err := tournament.Cancel("alice")
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))

	require.NoError(t, tournament.Cancel("org"))
	assert.Equal(t, StatusCancelled, tournament.Status)

	err = tournament.Cancel("org")
	assert.Equal(t, apperr.KindState, apperr.KindOf(err))
}

// startedTournament returns an active tournament with participants p0..pN-1
// registered in order and round 1 generated.
func startedTournament(t *testing.T, format Format, participants int) *Tournament {
	t.Helper()
	tournament := testTournament(format, 128)
	for i := 0; i < participants; i++ {
		id := fmt.Sprintf("p%d", i)
		require.NoError(t, tournament.Register(registrant(id, time.Duration(i)*time.Minute), false, testNow))
	}
	require.NoError(t, tournament.Start("org", testNow))
	return tournament
}
