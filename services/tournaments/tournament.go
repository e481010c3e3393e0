package tournaments

import (
	"time"

	"github.com/agoralive/debate-engine/pkg/apperr"
	"github.com/agoralive/debate-engine/pkg/voting"
)

type Status string

const (
	StatusUpcoming     Status = "upcoming"
	StatusRegistration Status = "registration"
	StatusActive       Status = "active"
	StatusCompleted    Status = "completed"
	StatusCancelled    Status = "cancelled"
)

type Format string

const (
	FormatSingleElimination Format = "single_elimination"
	FormatDoubleElimination Format = "double_elimination"
	FormatRoundRobin        Format = "round_robin"
)

type ParticipantStatus string

const (
	ParticipantRegistered ParticipantStatus = "registered"
	ParticipantActive     ParticipantStatus = "active"
	ParticipantEliminated ParticipantStatus = "eliminated"
	ParticipantWinner     ParticipantStatus = "winner"
)

const (
	minCapacity = 4
	maxCapacity = 128
)

type PrizePool struct {
	First  int `firestore:"first" json:"first"`
	Second int `firestore:"second" json:"second"`
	Third  int `firestore:"third" json:"third"`
}

type Settings struct {
	MaxParticipants int       `firestore:"maxParticipants" json:"maxParticipants"`
	EntryFee        int       `firestore:"entryFee" json:"entryFee"`
	PrizePool       PrizePool `firestore:"prizePool" json:"prizePool"`
	Format          Format    `firestore:"format" json:"format"`
	AllowAI         bool      `firestore:"allowAI" json:"allowAI"`
	PremiumOnly     bool      `firestore:"premiumOnly" json:"premiumOnly"`
}

type Participant struct {
	UserID       string            `firestore:"userId" json:"userId"`
	DisplayName  string            `firestore:"displayName" json:"displayName"`
	Avatar       string            `firestore:"avatar" json:"avatar"`
	IsAI         bool              `firestore:"isAI" json:"isAI"`
	RegisteredAt time.Time         `firestore:"registeredAt" json:"registeredAt"`
	Seed         int               `firestore:"seed,omitempty" json:"seed,omitempty"`
	Status       ParticipantStatus `firestore:"status" json:"status"`
}

// Match brackets within a double-elimination tournament.
const (
	BracketWinners    = "winners"
	BracketLosers     = "losers"
	BracketGrandFinal = "grand_final"
)

// Match is one pairing. Participant2 may be empty, which is a bye:
// participant1 advances unchallenged and the match resolves at generation.
type Match struct {
	MatchID      string          `firestore:"matchId" json:"matchId"`
	Participant1 string          `firestore:"participant1" json:"participant1"`
	Participant2 string          `firestore:"participant2,omitempty" json:"participant2,omitempty"`
	Bracket      string          `firestore:"bracket,omitempty" json:"bracket,omitempty"`
	ScheduledAt  time.Time       `firestore:"scheduledAt" json:"scheduledAt"`
	CompletedAt  *time.Time      `firestore:"completedAt,omitempty" json:"completedAt,omitempty"`
	WinnerID     string          `firestore:"winnerId,omitempty" json:"winnerId,omitempty"`
	Score1       int             `firestore:"score1" json:"score1"`
	Score2       int             `firestore:"score2" json:"score2"`
	Votes        []voting.Ballot `firestore:"votes" json:"votes"`
}

func (m *Match) resolved() bool {
	return m.CompletedAt != nil
}

func (m *Match) isBye() bool {
	return m.Participant2 == ""
}

type BracketRound struct {
	Round   int     `firestore:"round" json:"round"`
	Matches []Match `firestore:"matches" json:"matches"`
}

type LeaderboardEntry struct {
	UserID string `firestore:"userId" json:"userId"`
	Wins   int    `firestore:"wins" json:"wins"`
	Points int    `firestore:"points" json:"points"`
	Rank   int    `firestore:"rank" json:"rank"`
}

type RewardType string

const (
	RewardNFT   RewardType = "nft"
	RewardToken RewardType = "token"
	RewardBadge RewardType = "badge"
)

// Reward records the intent to reward a participant. Settlement happens
// elsewhere; the engine only tracks the row and its claimed flag.
type Reward struct {
	UserID  string     `firestore:"userId" json:"userId"`
	Type    RewardType `firestore:"type" json:"type"`
	Amount  int        `firestore:"amount" json:"amount"`
	Claimed bool       `firestore:"claimed" json:"claimed"`
}

type Tournament struct {
	ID                   string             `firestore:"id" json:"id"`
	Name                 string             `firestore:"name" json:"name"`
	Description          string             `firestore:"description" json:"description"`
	Topic                string             `firestore:"topic" json:"topic"`
	OrganizerID          string             `firestore:"organizerId" json:"organizerId"`
	Status               Status             `firestore:"status" json:"status"`
	StartDate            time.Time          `firestore:"startDate" json:"startDate"`
	EndDate              time.Time          `firestore:"endDate" json:"endDate"`
	RegistrationDeadline time.Time          `firestore:"registrationDeadline" json:"registrationDeadline"`
	Settings             Settings           `firestore:"settings" json:"settings"`
	Participants         []Participant      `firestore:"participants" json:"participants"`
	Brackets             []BracketRound     `firestore:"brackets" json:"brackets"`
	Leaderboard          []LeaderboardEntry `firestore:"leaderboard" json:"leaderboard"`
	Rewards              []Reward           `firestore:"rewards" json:"rewards"`
	WinnerID             string             `firestore:"winnerId,omitempty" json:"winnerId,omitempty"`
	CreatedAt            time.Time          `firestore:"createdAt" json:"createdAt"`
}

func ValidateSettings(s Settings) error {
	if s.MaxParticipants < minCapacity || s.MaxParticipants > maxCapacity {
		return apperr.Newf(apperr.KindValidation, "maxParticipants must be between %d and %d", minCapacity, maxCapacity)
	}
	if s.EntryFee < 0 {
		return apperr.New(apperr.KindValidation, "entryFee must not be negative")
	}
	switch s.Format {
	case FormatSingleElimination, FormatDoubleElimination, FormatRoundRobin:
	default:
		return apperr.Newf(apperr.KindValidation, "unknown format %q", s.Format)
	}
	return nil
}

func ValidateDates(registrationDeadline, startDate, endDate time.Time) error {
	if registrationDeadline.After(startDate) {
		return apperr.New(apperr.KindValidation, "registrationDeadline must not be after startDate")
	}
	if startDate.After(endDate) {
		return apperr.New(apperr.KindValidation, "startDate must not be after endDate")
	}
	return nil
}

func New(id, name, description, topic, organizerID string, settings Settings, registrationDeadline, startDate, endDate, now time.Time) *Tournament {
	return &Tournament{
		ID:                   id,
		Name:                 name,
		Description:          description,
		Topic:                topic,
		OrganizerID:          organizerID,
		Status:               StatusUpcoming,
		StartDate:            startDate,
		EndDate:              endDate,
		RegistrationDeadline: registrationDeadline,
		Settings:             settings,
		CreatedAt:            now,
	}
}

// Register adds a participant. The first successful registration flips the
// tournament out of upcoming. No score row is written here: tournament
// standings derive entirely from match outcomes.
func (t *Tournament) Register(p Participant, premium bool, now time.Time) error {
	if t.Status != StatusUpcoming && t.Status != StatusRegistration {
		return apperr.New(apperr.KindState, "tournament is not open for registration")
	}
	if now.After(t.RegistrationDeadline) {
		return apperr.New(apperr.KindState, "registration deadline has passed")
	}
	if t.Settings.PremiumOnly && !premium {
		return apperr.New(apperr.KindPermission, "this tournament is for premium members only")
	}
	if p.IsAI && !t.Settings.AllowAI {
		return apperr.New(apperr.KindPermission, "AI participants are not allowed in this tournament")
	}
	for _, existing := range t.Participants {
		if existing.UserID == p.UserID {
			return apperr.New(apperr.KindConflict, "already registered")
		}
	}
	if len(t.Participants) >= t.Settings.MaxParticipants {
		return apperr.New(apperr.KindConflict, "tournament is full")
	}

	p.Status = ParticipantRegistered
	t.Participants = append(t.Participants, p)
	if t.Status == StatusUpcoming {
		t.Status = StatusRegistration
	}
	return nil
}

// Start seeds round 1 and activates the bracket.
func (t *Tournament) Start(callerID string, now time.Time) error {
	if callerID != t.OrganizerID {
		return apperr.New(apperr.KindPermission, "only the organizer can start the tournament")
	}
	if t.Status != StatusRegistration {
		return apperr.New(apperr.KindState, "tournament cannot start from its current state")
	}
	if len(t.Participants) < 2 {
		return apperr.New(apperr.KindState, "need at least 2 registered participants to start")
	}

	t.Status = StatusActive
	for i := range t.Participants {
		t.Participants[i].Status = ParticipantActive
	}
	return t.generateFirstRound(now)
}

// CastMatchVote records a spectator vote for one side of a match. The match
// is looked up by id anywhere in the bracket.
func (t *Tournament) CastMatchVote(voterID, matchID, votedFor string, now time.Time) error {
	if t.Status != StatusActive {
		return apperr.New(apperr.KindState, "tournament is not active")
	}
	match := t.findMatch(matchID)
	if match == nil {
		return apperr.Newf(apperr.KindNotFound, "no match %q in this tournament", matchID)
	}
	if match.resolved() {
		return apperr.New(apperr.KindState, "match is already resolved")
	}

	votes, err := voting.Cast(match.Votes, voterID, votedFor, []string{match.Participant1, match.Participant2}, now)
	if err != nil {
		return err
	}
	match.Votes = votes
	match.Score1 = voting.CountFor(votes, match.Participant1)
	match.Score2 = voting.CountFor(votes, match.Participant2)
	return nil
}

// Cancel aborts any non-terminal tournament.
func (t *Tournament) Cancel(callerID string) error {
	if callerID != t.OrganizerID {
		return apperr.New(apperr.KindPermission, "only the organizer can cancel the tournament")
	}
	if t.Status == StatusCompleted || t.Status == StatusCancelled {
		return apperr.New(apperr.KindState, "tournament is already finished")
	}
	t.Status = StatusCancelled
	return nil
}

func (t *Tournament) findMatch(matchID string) *Match {
	for i := range t.Brackets {
		for j := range t.Brackets[i].Matches {
			if t.Brackets[i].Matches[j].MatchID == matchID {
				return &t.Brackets[i].Matches[j]
			}
		}
	}
	return nil
}

func (t *Tournament) participant(userID string) *Participant {
	for i := range t.Participants {
		if t.Participants[i].UserID == userID {
			return &t.Participants[i]
		}
	}
	return nil
}

func (t *Tournament) currentRound() *BracketRound {
	if len(t.Brackets) == 0 {
		return nil
	}
	return &t.Brackets[len(t.Brackets)-1]
}
