package tournaments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/samborkent/uuidv7"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/agoralive/debate-engine/pkg/apperr"
	"github.com/agoralive/debate-engine/pkg/auth"
	"github.com/agoralive/debate-engine/repos/resend"
)

const tournamentCollection = "Tournaments"

type TournamentService struct {
	firestoreClient *firestore.Client
	resendService   *resend.Service
}

func NewTournamentService(firestoreClient *firestore.Client, resendService *resend.Service) *TournamentService {
	return &TournamentService{
		firestoreClient: firestoreClient,
		resendService:   resendService,
	}
}

func (s *TournamentService) Create(ctx context.Context, caller auth.Identity, request CreateTournamentRequest) (*Tournament, error) {
	settings := request.Settings.withDefaults()
	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}
	if err := ValidateDates(request.RegistrationDeadline, request.StartDate, request.EndDate); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	id := uuidv7.New().String()
	tournament := New(id, request.Name, request.Description, request.Topic, caller.UID,
		settings, request.RegistrationDeadline.UTC(), request.StartDate.UTC(), request.EndDate.UTC(), now)

	if _, err := s.firestoreClient.Collection(tournamentCollection).Doc(id).Set(ctx, tournament); err != nil {
		log.Printf("Failed to write tournament to Firestore: %v\n", err)
		return nil, apperr.Wrap(apperr.KindDependency, "failed to store tournament", err)
	}
	return tournament, nil
}

func (s *TournamentService) Get(ctx context.Context, tournamentID string) (*Tournament, error) {
	doc, err := s.firestoreClient.Collection(tournamentCollection).Doc(tournamentID).Get(ctx)
	if err != nil {
		return nil, storageErr(err, "tournament")
	}
	return docToTournament(doc)
}

func (s *TournamentService) Register(ctx context.Context, caller auth.Identity, tournamentID string) (*Tournament, error) {
	now := time.Now().UTC()
	return s.update(ctx, tournamentID, func(tournament *Tournament) error {
		return tournament.Register(participantFrom(caller, now), caller.Premium, now)
	})
}

func (s *TournamentService) Start(ctx context.Context, caller auth.Identity, tournamentID string, request StartTournamentRequest) (*Tournament, error) {
	now := time.Now().UTC()
	return s.update(ctx, tournamentID, func(tournament *Tournament) error {
		for userID, seed := range request.Seeds {
			if p := tournament.participant(userID); p != nil {
				p.Seed = seed
			}
		}
		return tournament.Start(caller.UID, now)
	})
}

func (s *TournamentService) Vote(ctx context.Context, caller auth.Identity, tournamentID string, request VoteMatchRequest) (*Tournament, error) {
	now := time.Now().UTC()
	return s.update(ctx, tournamentID, func(tournament *Tournament) error {
		return tournament.CastMatchVote(caller.UID, request.MatchID, request.VotedFor, now)
	})
}

func (s *TournamentService) Advance(ctx context.Context, caller auth.Identity, tournamentID string) (*Tournament, error) {
	now := time.Now().UTC()
	tournament, err := s.update(ctx, tournamentID, func(tournament *Tournament) error {
		return tournament.Advance(caller.UID, now)
	})
	if err != nil {
		return nil, err
	}
	s.notifyIfCompleted(tournament)
	return tournament, nil
}

func (s *TournamentService) Cancel(ctx context.Context, caller auth.Identity, tournamentID string) (*Tournament, error) {
	return s.update(ctx, tournamentID, func(tournament *Tournament) error {
		return tournament.Cancel(caller.UID)
	})
}

// Leaderboard recomputes the standings from the stored bracket on every read,
// so a stale snapshot in the document can never drift from match history.
func (s *TournamentService) Leaderboard(ctx context.Context, tournamentID string) ([]LeaderboardEntry, error) {
	tournament, err := s.Get(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return ComputeLeaderboard(tournament), nil
}

// update runs one read-validate-write cycle on a single tournament document,
// the same discipline as for arenas.
func (s *TournamentService) update(ctx context.Context, tournamentID string, mutate func(*Tournament) error) (*Tournament, error) {
	ref := s.firestoreClient.Collection(tournamentCollection).Doc(tournamentID)

	var updated *Tournament
	err := s.firestoreClient.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return storageErr(err, "tournament")
		}
		tournament, err := docToTournament(doc)
		if err != nil {
			return err
		}
		if err := mutate(tournament); err != nil {
			return err
		}
		updated = tournament
		return tx.Set(ref, tournament)
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		log.Printf("Tournament transaction failed for %s: %v\n", tournamentID, err)
		return nil, apperr.Wrap(apperr.KindDependency, "failed to update tournament", err)
	}
	return updated, nil
}

func (s *TournamentService) notifyIfCompleted(tournament *Tournament) {
	if tournament.Status != StatusCompleted {
		return
	}
	rewarded := make([]string, 0, len(tournament.Rewards))
	for _, reward := range tournament.Rewards {
		rewarded = append(rewarded, reward.UserID)
	}
	subject := fmt.Sprintf("Tournament finished: %s", tournament.Name)
	body := fmt.Sprintf("The tournament %q has concluded. Check your rewards on your profile.", tournament.Name)
	go s.resendService.NotifyAll(context.Background(), rewarded, subject, body)
}

func participantFrom(caller auth.Identity, now time.Time) Participant {
	return Participant{
		UserID:       caller.UID,
		DisplayName:  caller.DisplayName,
		Avatar:       caller.Avatar,
		IsAI:         caller.IsAI,
		RegisteredAt: now,
	}
}

func docToTournament(doc *firestore.DocumentSnapshot) (*Tournament, error) {
	var tournament Tournament
	if err := doc.DataTo(&tournament); err != nil {
		// If this fails, we have an inconsistency error as we control both the
		// data written to Firestore and the shape of our Tournament struct.
		return nil, apperr.Wrap(apperr.KindDependency, "malformed tournament document", err)
	}
	return &tournament, nil
}

func storageErr(err error, what string) error {
	if status.Code(err) == codes.NotFound {
		return apperr.Newf(apperr.KindNotFound, "%s not found", what)
	}
	return apperr.Wrap(apperr.KindDependency, "storage failure", err)
}
