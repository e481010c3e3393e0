package resend

// Event is a notification delivered to one user. Delivery is best effort:
// a lost notification never fails the operation that produced it.
type Event struct {
	UserID  string `json:"userId"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
