package arenas

import (
	"time"
	"unicode/utf8"

	"github.com/agoralive/debate-engine/pkg/apperr"
	"github.com/agoralive/debate-engine/pkg/voting"
)

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused" // reserved, no operation drives it yet
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

const (
	minParticipants  = 2
	maxParticipants  = 10
	minRoundDuration = 30
	maxRoundDuration = 600
	minRounds        = 1
	maxRounds        = 10
	maxContentLength = 2000
)

type Settings struct {
	MaxParticipants      int  `firestore:"maxParticipants" json:"maxParticipants"`
	RoundDurationSeconds int  `firestore:"roundDurationSeconds" json:"roundDurationSeconds"`
	MaxRounds            int  `firestore:"maxRounds" json:"maxRounds"`
	ModerationEnabled    bool `firestore:"moderationEnabled" json:"moderationEnabled"`
	IsPublic             bool `firestore:"isPublic" json:"isPublic"`
}

type Participant struct {
	UserID      string    `firestore:"userId" json:"userId"`
	DisplayName string    `firestore:"displayName" json:"displayName"`
	Avatar      string    `firestore:"avatar" json:"avatar"`
	IsAI        bool      `firestore:"isAI" json:"isAI"`
	JoinedAt    time.Time `firestore:"joinedAt" json:"joinedAt"`
}

type Argument struct {
	AuthorID  string          `firestore:"authorId" json:"authorId"`
	Content   string          `firestore:"content" json:"content"`
	Timestamp time.Time       `firestore:"timestamp" json:"timestamp"`
	Reactions []voting.Ballot `firestore:"reactions" json:"reactions"`
	Votes     int             `firestore:"votes" json:"votes"`
	Fallacies []string        `firestore:"fallacies,omitempty" json:"fallacies,omitempty"`
}

type Round struct {
	RoundNumber int        `firestore:"roundNumber" json:"roundNumber"`
	StartedAt   time.Time  `firestore:"startedAt" json:"startedAt"`
	EndedAt     *time.Time `firestore:"endedAt,omitempty" json:"endedAt,omitempty"`
	Arguments   []Argument `firestore:"arguments" json:"arguments"`
}

type Score struct {
	UserID string `firestore:"userId" json:"userId"`
	Points int    `firestore:"points" json:"points"`
	Wins   int    `firestore:"wins" json:"wins"`
}

// Arena is one live debate. The whole instance lives in a single document so
// every transition is a single atomic read-validate-write.
type Arena struct {
	ID           string        `firestore:"id" json:"id"`
	Title        string        `firestore:"title" json:"title"`
	Topic        string        `firestore:"topic" json:"topic"`
	CreatorID    string        `firestore:"creatorId" json:"creatorId"`
	Status       Status        `firestore:"status" json:"status"`
	Settings     Settings      `firestore:"settings" json:"settings"`
	Participants []Participant `firestore:"participants" json:"participants"`
	Rounds       []Round       `firestore:"rounds" json:"rounds"`
	CurrentRound int           `firestore:"currentRound" json:"currentRound"`
	Scores       []Score       `firestore:"scores" json:"scores"`
	WinnerID     string        `firestore:"winnerId,omitempty" json:"winnerId,omitempty"`
	InviteSecret string        `firestore:"inviteSecret,omitempty" json:"-"`
	CreatedAt    time.Time     `firestore:"createdAt" json:"createdAt"`
}

func ValidateSettings(s Settings) error {
	if s.MaxParticipants < minParticipants || s.MaxParticipants > maxParticipants {
		return apperr.Newf(apperr.KindValidation, "maxParticipants must be between %d and %d", minParticipants, maxParticipants)
	}
	if s.RoundDurationSeconds < minRoundDuration || s.RoundDurationSeconds > maxRoundDuration {
		return apperr.Newf(apperr.KindValidation, "roundDurationSeconds must be between %d and %d", minRoundDuration, maxRoundDuration)
	}
	if s.MaxRounds < minRounds || s.MaxRounds > maxRounds {
		return apperr.Newf(apperr.KindValidation, "maxRounds must be between %d and %d", minRounds, maxRounds)
	}
	return nil
}

// New builds an arena in waiting state with the creator as sole participant
// and a zero score row.
func New(id, title, topic string, creator Participant, settings Settings, now time.Time) *Arena {
	return &Arena{
		ID:           id,
		Title:        title,
		Topic:        topic,
		CreatorID:    creator.UserID,
		Status:       StatusWaiting,
		Settings:     settings,
		Participants: []Participant{creator},
		Scores:       []Score{{UserID: creator.UserID}},
		CreatedAt:    now,
	}
}

// Join appends a participant and their zero score row. The capacity check and
// the append happen on the same in-memory copy, which the storage transaction
// makes atomic against concurrent joins.
func (a *Arena) Join(p Participant) error {
	if a.Status != StatusWaiting {
		return apperr.New(apperr.KindState, "arena is not accepting participants")
	}
	for _, existing := range a.Participants {
		if existing.UserID == p.UserID {
			return apperr.New(apperr.KindConflict, "already a participant")
		}
	}
	if len(a.Participants) >= a.Settings.MaxParticipants {
		return apperr.New(apperr.KindConflict, "arena is full")
	}
	a.Participants = append(a.Participants, p)
	a.Scores = append(a.Scores, Score{UserID: p.UserID})
	return nil
}

// Start moves the arena to active and opens round 1.
func (a *Arena) Start(callerID string, now time.Time) error {
	if a.Status != StatusWaiting {
		return apperr.New(apperr.KindState, "arena has already started")
	}
	if callerID != a.CreatorID {
		return apperr.New(apperr.KindPermission, "only the creator can start the arena")
	}
	if len(a.Participants) < minParticipants {
		return apperr.Newf(apperr.KindState, "need at least %d participants to start", minParticipants)
	}
	a.Status = StatusActive
	a.CurrentRound = 1
	a.Rounds = append(a.Rounds, Round{RoundNumber: 1, StartedAt: now})
	return nil
}

// SubmitArgument appends an argument to the open round. Moderation has
// already run by the time this is called; fallacies carries its tags.
func (a *Arena) SubmitArgument(callerID, content string, fallacies []string, now time.Time) error {
	if a.Status != StatusActive {
		return apperr.New(apperr.KindState, "arena is not active")
	}
	if !a.isParticipant(callerID) {
		return apperr.New(apperr.KindPermission, "not a participant in this arena")
	}
	if length := utf8.RuneCountInString(content); length == 0 || length > maxContentLength {
		return apperr.Newf(apperr.KindValidation, "argument content must be between 1 and %d characters", maxContentLength)
	}
	round := a.openRound()
	if round == nil {
		return apperr.New(apperr.KindState, "no open round to argue in")
	}
	round.Arguments = append(round.Arguments, Argument{
		AuthorID:  callerID,
		Content:   content,
		Timestamp: now,
		Fallacies: fallacies,
	})
	return nil
}

// CastVote records an up/down vote on one argument through the shared ledger.
func (a *Arena) CastVote(voterID string, roundNumber, argumentIndex int, choice string, now time.Time) error {
	if a.Status != StatusActive {
		return apperr.New(apperr.KindState, "arena is not active")
	}
	if roundNumber < 1 || roundNumber > len(a.Rounds) {
		return apperr.Newf(apperr.KindNotFound, "no round %d in this arena", roundNumber)
	}
	round := &a.Rounds[roundNumber-1]
	if argumentIndex < 0 || argumentIndex >= len(round.Arguments) {
		return apperr.Newf(apperr.KindNotFound, "no argument %d in round %d", argumentIndex, roundNumber)
	}
	argument := &round.Arguments[argumentIndex]

	reactions, err := voting.Cast(argument.Reactions, voterID, choice, []string{voting.ChoiceUp, voting.ChoiceDown}, now)
	if err != nil {
		return err
	}
	argument.Reactions = reactions
	argument.Votes = voting.Tally(reactions)
	return nil
}

// CloseRound ends the open round, credits its points, and either opens the
// next round or completes the arena once maxRounds have been played.
func (a *Arena) CloseRound(now time.Time) error {
	if a.Status != StatusActive {
		return apperr.New(apperr.KindState, "arena is not active")
	}
	round := a.openRound()
	if round == nil {
		return apperr.New(apperr.KindState, "no open round to close")
	}

	ended := now
	round.EndedAt = &ended
	a.creditRound(round)

	if a.CurrentRound >= a.Settings.MaxRounds {
		a.complete()
		return nil
	}
	a.CurrentRound++
	a.Rounds = append(a.Rounds, Round{RoundNumber: a.CurrentRound, StartedAt: now})
	return nil
}

// Cancel aborts a waiting or active arena.
func (a *Arena) Cancel(callerID string) error {
	if callerID != a.CreatorID {
		return apperr.New(apperr.KindPermission, "only the creator can cancel the arena")
	}
	if a.Status != StatusWaiting && a.Status != StatusActive {
		return apperr.New(apperr.KindState, "arena is already finished")
	}
	a.Status = StatusCancelled
	return nil
}

// RoundExpired reports whether the open round has outlived its duration.
func (a *Arena) RoundExpired(now time.Time) bool {
	if a.Status != StatusActive {
		return false
	}
	round := a.openRound()
	if round == nil {
		return false
	}
	deadline := round.StartedAt.Add(time.Duration(a.Settings.RoundDurationSeconds) * time.Second)
	return !now.Before(deadline)
}

func (a *Arena) complete() {
	a.Status = StatusCompleted
	winner := a.leader()
	if winner == "" {
		return
	}
	a.WinnerID = winner
	for i := range a.Scores {
		if a.Scores[i].UserID == winner {
			a.Scores[i].Wins++
		}
	}
}

// creditRound adds each argument's positive tally to its author's points.
// Negative tallies never subtract, keeping points monotonic.
func (a *Arena) creditRound(round *Round) {
	for _, argument := range round.Arguments {
		if argument.Votes <= 0 {
			continue
		}
		for i := range a.Scores {
			if a.Scores[i].UserID == argument.AuthorID {
				a.Scores[i].Points += argument.Votes
			}
		}
	}
}

// leader is the participant with the most points, earliest join breaking ties.
func (a *Arena) leader() string {
	best := ""
	bestPoints := -1
	for _, p := range a.Participants {
		points := 0
		for _, s := range a.Scores {
			if s.UserID == p.UserID {
				points = s.Points
			}
		}
		// Participants are in join order, so strict comparison keeps the
		// earliest joiner on ties.
		if points > bestPoints {
			best = p.UserID
			bestPoints = points
		}
	}
	return best
}

func (a *Arena) openRound() *Round {
	if a.CurrentRound < 1 || a.CurrentRound > len(a.Rounds) {
		return nil
	}
	round := &a.Rounds[a.CurrentRound-1]
	if round.EndedAt != nil {
		return nil
	}
	return round
}

func (a *Arena) isParticipant(userID string) bool {
	for _, p := range a.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// ParticipantIDs returns the roster's user ids, in join order.
func (a *Arena) ParticipantIDs() []string {
	ids := make([]string, 0, len(a.Participants))
	for _, p := range a.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}
