package resend

import (
	"context"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	resend "github.com/resend/resend-go/v2"
	"golang.org/x/xerrors"
)

// Service is the notification sink. It resolves a user id to an e-mail
// address via the Users collection and sends through Resend.
type Service struct {
	firestoreClient *firestore.Client
	resendClient    *resend.Client
	from            string
}

// NewService creates a new empty service.
func NewService(firestoreClient *firestore.Client) *Service {
	resendKey := os.Getenv("RESEND_KEY")
	return &Service{
		firestoreClient: firestoreClient,
		resendClient:    resend.NewClient(resendKey),
		from:            "notifications@agora.live",
	}
}

// Notify sends one event to one user. Callers run this on its own goroutine;
// the returned error exists for logging only and must never be propagated
// into the operation that triggered the notification.
func (s Service) Notify(ctx context.Context, event Event) error {
	doc, err := s.firestoreClient.Collection("Users").Doc(event.UserID).Get(ctx)
	if err != nil {
		log.Printf("Failed to get user %s for notification: %v\n", event.UserID, err)
		return err
	}

	data := doc.Data()
	fieldValue, ok := data["email"]
	if !ok {
		log.Printf("Field 'email' does not exist in the user document.")
		return xerrors.Errorf("user %s has no email", event.UserID)
	}

	email, ok := fieldValue.(string)
	if !ok {
		log.Printf("Failed to convert field value 'email' to string.")
		return xerrors.Errorf("user %s has a malformed email field", event.UserID)
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{email},
		Subject: event.Subject,
		Html:    getEmailTemplate(event.Subject, event.Body),
	}

	if _, err := s.resendClient.Emails.Send(params); err != nil {
		log.Printf("Failed to send notification to %s: %v\n", event.UserID, err)
		return err
	}
	return nil
}

// NotifyAll fans one subject/body out to a set of users. Failures are logged
// per user and swallowed.
func (s Service) NotifyAll(ctx context.Context, userIDs []string, subject, body string) {
	for _, userID := range userIDs {
		if err := s.Notify(ctx, Event{UserID: userID, Subject: subject, Body: body}); err != nil {
			log.Printf("Dropping notification for %s: %v\n", userID, err)
		}
	}
}

func getEmailTemplate(subject, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <style>
        body {
            font-family: Arial, sans-serif;
            background-color: #f4f4f4;
            margin: 0;
            padding: 20px;
        }
        .container {
            background-color: #ffffff;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
            box-shadow: 0 0 10px rgba(0,0,0,0.1);
        }
    </style>
</head>
<body>
    <div class="container">
        <h2>%s</h2>
        <p>%s</p>
        <p>Best regards,<br>The Agora team</p>
    </div>
</body>
</html>`, subject, body)
}
