package arenas

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/samborkent/uuidv7"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/agoralive/debate-engine/pkg/apperr"
	"github.com/agoralive/debate-engine/pkg/auth"
	"github.com/agoralive/debate-engine/pkg/invite"
	"github.com/agoralive/debate-engine/repos/moderation"
	"github.com/agoralive/debate-engine/repos/resend"
)

const arenaCollection = "Arenas"

// moderationGate is satisfied by repos/moderation.Service.
type moderationGate interface {
	Assess(ctx context.Context, content, topic string) (moderation.Assessment, error)
}

type ArenaService struct {
	firestoreClient   *firestore.Client
	moderationService moderationGate
	resendService     *resend.Service
}

func NewArenaService(firestoreClient *firestore.Client, moderationService moderationGate, resendService *resend.Service) *ArenaService {
	return &ArenaService{
		firestoreClient:   firestoreClient,
		moderationService: moderationService,
		resendService:     resendService,
	}
}

// Create writes a new arena with the caller auto-joined. For private arenas
// the returned invite code is the only way in, so it is only handed to the
// creator here.
func (s *ArenaService) Create(ctx context.Context, caller auth.Identity, request CreateArenaRequest) (*Arena, string, error) {
	settings := request.Settings.withDefaults()
	if err := ValidateSettings(settings); err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	id := uuidv7.New().String()
	arena := New(id, request.Title, request.Topic, participantFrom(caller, now), settings, now)

	inviteCode := ""
	if !settings.IsPublic {
		arena.InviteSecret = invite.NewSecret()
		inviteCode = invite.GenerateCode(id, arena.InviteSecret)
	}

	if _, err := s.firestoreClient.Collection(arenaCollection).Doc(id).Set(ctx, arena); err != nil {
		log.Printf("Failed to write arena to Firestore: %v\n", err)
		return nil, "", apperr.Wrap(apperr.KindDependency, "failed to store arena", err)
	}
	return arena, inviteCode, nil
}

func (s *ArenaService) Get(ctx context.Context, arenaID string) (*Arena, error) {
	doc, err := s.firestoreClient.Collection(arenaCollection).Doc(arenaID).Get(ctx)
	if err != nil {
		return nil, storageErr(err, "arena")
	}
	return docToArena(doc)
}

func (s *ArenaService) Join(ctx context.Context, caller auth.Identity, arenaID, inviteCode string) (*Arena, error) {
	now := time.Now().UTC()
	return s.update(ctx, arenaID, func(arena *Arena) error {
		if !arena.Settings.IsPublic {
			if err := checkInvite(arena, inviteCode); err != nil {
				return err
			}
		}
		return arena.Join(participantFrom(caller, now))
	})
}

func (s *ArenaService) Start(ctx context.Context, caller auth.Identity, arenaID string) (*Arena, error) {
	now := time.Now().UTC()
	return s.update(ctx, arenaID, func(arena *Arena) error {
		return arena.Start(caller.UID, now)
	})
}

// SubmitArgument consults the moderation gate before touching the document.
// A toxic verdict is a hard rejection; fallacy tags ride along onto the
// accepted argument. The transaction re-validates state, so an argument can
// never land in a round that closed while the gate was thinking.
func (s *ArenaService) SubmitArgument(ctx context.Context, caller auth.Identity, arenaID string, request SubmitArgumentRequest) (*Arena, error) {
	arena, err := s.Get(ctx, arenaID)
	if err != nil {
		return nil, err
	}

	fallacies, err := s.assessArgument(ctx, arena, request.Content)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return s.update(ctx, arenaID, func(arena *Arena) error {
		return arena.SubmitArgument(caller.UID, request.Content, fallacies, now)
	})
}

// assessArgument runs the moderation gate when the arena has it enabled. A
// toxic verdict rejects the content outright; a gate failure surfaces as a
// dependency error so an unreachable gate can never look like a veto.
func (s *ArenaService) assessArgument(ctx context.Context, arena *Arena, content string) ([]string, error) {
	if !arena.Settings.ModerationEnabled {
		return nil, nil
	}
	assessment, err := s.moderationService.Assess(ctx, content, arena.Topic)
	if err != nil {
		return nil, err
	}
	if assessment.Toxic {
		return nil, apperr.Newf(apperr.KindContentRejected, "argument rejected: %s", assessment.Reason)
	}
	return assessment.Fallacies, nil
}

func (s *ArenaService) Vote(ctx context.Context, caller auth.Identity, arenaID string, request VoteArgumentRequest) (*Arena, error) {
	now := time.Now().UTC()
	return s.update(ctx, arenaID, func(arena *Arena) error {
		return arena.CastVote(caller.UID, request.RoundNumber, *request.ArgumentIndex, request.Choice, now)
	})
}

func (s *ArenaService) CloseRound(ctx context.Context, caller auth.Identity, arenaID string) (*Arena, error) {
	now := time.Now().UTC()
	arena, err := s.update(ctx, arenaID, func(arena *Arena) error {
		if caller.UID != arena.CreatorID {
			return apperr.New(apperr.KindPermission, "only the creator can close a round")
		}
		return arena.CloseRound(now)
	})
	if err != nil {
		return nil, err
	}
	s.notifyIfCompleted(arena)
	return arena, nil
}

func (s *ArenaService) Cancel(ctx context.Context, caller auth.Identity, arenaID string) (*Arena, error) {
	return s.update(ctx, arenaID, func(arena *Arena) error {
		return arena.Cancel(caller.UID)
	})
}

// CloseExpiredRounds sweeps active arenas and closes any round that outlived
// its duration. The per-arena transaction re-checks expiry, so a round closed
// by its creator in the meantime is left alone.
func (s *ArenaService) CloseExpiredRounds(ctx context.Context) error {
	now := time.Now().UTC()

	iter := s.firestoreClient.Collection(arenaCollection).
		Where("status", "==", string(StatusActive)).
		Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Failed to scan active arenas: %v\n", err)
			return err
		}

		arena, err := docToArena(doc)
		if err != nil {
			log.Printf("Skipping malformed arena %s: %v\n", doc.Ref.ID, err)
			continue
		}
		if !arena.RoundExpired(now) {
			continue
		}

		updated, err := s.update(ctx, arena.ID, func(a *Arena) error {
			if !a.RoundExpired(time.Now().UTC()) {
				return apperr.New(apperr.KindState, "round no longer expired")
			}
			return a.CloseRound(time.Now().UTC())
		})
		if err != nil {
			if apperr.KindOf(err) != apperr.KindState {
				log.Printf("Failed to auto-close round in arena %s: %v\n", arena.ID, err)
			}
			continue
		}
		log.Printf("Auto-closed round in arena %s (now at round %d, status %s)\n", updated.ID, updated.CurrentRound, updated.Status)
		s.notifyIfCompleted(updated)
	}
	return nil
}

// update runs one read-validate-write cycle on a single arena document. The
// Firestore transaction retries on contention, which is what makes the
// check-then-mutate helpers in arena.go safe under concurrent callers.
func (s *ArenaService) update(ctx context.Context, arenaID string, mutate func(*Arena) error) (*Arena, error) {
	ref := s.firestoreClient.Collection(arenaCollection).Doc(arenaID)

	var updated *Arena
	err := s.firestoreClient.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return storageErr(err, "arena")
		}
		arena, err := docToArena(doc)
		if err != nil {
			return err
		}
		if err := mutate(arena); err != nil {
			return err
		}
		updated = arena
		return tx.Set(ref, arena)
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		log.Printf("Arena transaction failed for %s: %v\n", arenaID, err)
		return nil, apperr.Wrap(apperr.KindDependency, "failed to update arena", err)
	}
	return updated, nil
}

func (s *ArenaService) notifyIfCompleted(arena *Arena) {
	if arena.Status != StatusCompleted {
		return
	}
	subject := fmt.Sprintf("Debate finished: %s", arena.Title)
	body := fmt.Sprintf("The debate %q on %q has concluded after %d rounds.", arena.Title, arena.Topic, len(arena.Rounds))
	go s.resendService.NotifyAll(context.Background(), arena.ParticipantIDs(), subject, body)
}

func checkInvite(arena *Arena, inviteCode string) error {
	if inviteCode == "" {
		return apperr.New(apperr.KindPermission, "this arena is private, invite code required")
	}
	arenaID, secret, err := invite.Decode(inviteCode)
	if err != nil || arenaID != arena.ID || secret != arena.InviteSecret {
		return apperr.New(apperr.KindPermission, "invite code is not valid for this arena")
	}
	return nil
}

func participantFrom(caller auth.Identity, now time.Time) Participant {
	return Participant{
		UserID:      caller.UID,
		DisplayName: caller.DisplayName,
		Avatar:      caller.Avatar,
		IsAI:        caller.IsAI,
		JoinedAt:    now,
	}
}

func docToArena(doc *firestore.DocumentSnapshot) (*Arena, error) {
	var arena Arena
	if err := doc.DataTo(&arena); err != nil {
		// If this fails, we have an inconsistency error as we control both the
		// data written to Firestore and the shape of our Arena struct.
		return nil, apperr.Wrap(apperr.KindDependency, "malformed arena document", err)
	}
	return &arena, nil
}

func storageErr(err error, what string) error {
	if status.Code(err) == codes.NotFound {
		return apperr.Newf(apperr.KindNotFound, "%s not found", what)
	}
	return apperr.Wrap(apperr.KindDependency, "storage failure", err)
}
