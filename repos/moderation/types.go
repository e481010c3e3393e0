package moderation

// Define the structure for your JSON payload
type AssessRequest struct {
	Content string `json:"content"`
	Topic   string `json:"topic"`
}

// Assessment is the gate's verdict. Toxic is a hard veto; fallacies are
// advisory tags persisted on the accepted argument.
type Assessment struct {
	Toxic     bool     `json:"toxic"`
	Reason    string   `json:"reason,omitempty"`
	Fallacies []string `json:"fallacies,omitempty"`
}
