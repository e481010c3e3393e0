package arenas

import "github.com/xorcare/pointer"

// Define the structure for your JSON payload
type CreateArenaRequest struct {
	Title    string          `json:"title" binding:"required"`
	Topic    string          `json:"topic" binding:"required"`
	Settings SettingsRequest `json:"settings"`
}

// SettingsRequest carries optional overrides; unset fields fall back to the
// defaults below before validation.
type SettingsRequest struct {
	MaxParticipants      *int  `json:"maxParticipants"`
	RoundDurationSeconds *int  `json:"roundDurationSeconds"`
	MaxRounds            *int  `json:"maxRounds"`
	ModerationEnabled    *bool `json:"moderationEnabled"`
	IsPublic             *bool `json:"isPublic"`
}

var defaultSettings = SettingsRequest{
	MaxParticipants:      pointer.Int(2),
	RoundDurationSeconds: pointer.Int(120),
	MaxRounds:            pointer.Int(3),
	ModerationEnabled:    pointer.Bool(true),
	IsPublic:             pointer.Bool(true),
}

func (r SettingsRequest) withDefaults() Settings {
	merged := defaultSettings
	if r.MaxParticipants != nil {
		merged.MaxParticipants = r.MaxParticipants
	}
	if r.RoundDurationSeconds != nil {
		merged.RoundDurationSeconds = r.RoundDurationSeconds
	}
	if r.MaxRounds != nil {
		merged.MaxRounds = r.MaxRounds
	}
	if r.ModerationEnabled != nil {
		merged.ModerationEnabled = r.ModerationEnabled
	}
	if r.IsPublic != nil {
		merged.IsPublic = r.IsPublic
	}
	return Settings{
		MaxParticipants:      *merged.MaxParticipants,
		RoundDurationSeconds: *merged.RoundDurationSeconds,
		MaxRounds:            *merged.MaxRounds,
		ModerationEnabled:    *merged.ModerationEnabled,
		IsPublic:             *merged.IsPublic,
	}
}

type JoinArenaRequest struct {
	InviteCode string `json:"inviteCode"`
}

type SubmitArgumentRequest struct {
	Content string `json:"content" binding:"required"`
}

type VoteArgumentRequest struct {
	RoundNumber   int    `json:"roundNumber" binding:"required"`
	ArgumentIndex *int   `json:"argumentIndex" binding:"required"`
	Choice        string `json:"choice" binding:"required"`
}
