package tournaments

import (
	"time"

	"github.com/xorcare/pointer"
)

// Define the structure for your JSON payload
type CreateTournamentRequest struct {
	Name                 string                    `json:"name" binding:"required"`
	Description          string                    `json:"description"`
	Topic                string                    `json:"topic" binding:"required"`
	StartDate            time.Time                 `json:"startDate" binding:"required"`
	EndDate              time.Time                 `json:"endDate" binding:"required"`
	RegistrationDeadline time.Time                 `json:"registrationDeadline" binding:"required"`
	Settings             TournamentSettingsRequest `json:"settings"`
}

// TournamentSettingsRequest carries optional overrides; unset fields fall
// back to the defaults below before validation.
type TournamentSettingsRequest struct {
	MaxParticipants *int       `json:"maxParticipants"`
	EntryFee        *int       `json:"entryFee"`
	PrizePool       *PrizePool `json:"prizePool"`
	Format          *string    `json:"format"`
	AllowAI         *bool      `json:"allowAI"`
	PremiumOnly     *bool      `json:"premiumOnly"`
}

var defaultTournamentSettings = TournamentSettingsRequest{
	MaxParticipants: pointer.Int(16),
	EntryFee:        pointer.Int(0),
	PrizePool:       &PrizePool{},
	Format:          pointer.String(string(FormatSingleElimination)),
	AllowAI:         pointer.Bool(false),
	PremiumOnly:     pointer.Bool(false),
}

func (r TournamentSettingsRequest) withDefaults() Settings {
	merged := defaultTournamentSettings
	if r.MaxParticipants != nil {
		merged.MaxParticipants = r.MaxParticipants
	}
	if r.EntryFee != nil {
		merged.EntryFee = r.EntryFee
	}
	if r.PrizePool != nil {
		merged.PrizePool = r.PrizePool
	}
	if r.Format != nil {
		merged.Format = r.Format
	}
	if r.AllowAI != nil {
		merged.AllowAI = r.AllowAI
	}
	if r.PremiumOnly != nil {
		merged.PremiumOnly = r.PremiumOnly
	}
	return Settings{
		MaxParticipants: *merged.MaxParticipants,
		EntryFee:        *merged.EntryFee,
		PrizePool:       *merged.PrizePool,
		Format:          Format(*merged.Format),
		AllowAI:         *merged.AllowAI,
		PremiumOnly:     *merged.PremiumOnly,
	}
}

// StartTournamentRequest lets the organizer hand out explicit seeds at start;
// anyone left unseeded falls back to registration order.
type StartTournamentRequest struct {
	Seeds map[string]int `json:"seeds"`
}

type VoteMatchRequest struct {
	MatchID  string `json:"matchId" binding:"required"`
	VotedFor string `json:"votedFor" binding:"required"`
}
