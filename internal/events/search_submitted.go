package events

var SearchSubmittedTopic = "SearchSubmittedEvent"

// SearchSubmitted is published when a session starts a new collection run,
// replacing whatever run it had before.
type SearchSubmitted struct {
	SessionID  string
	SnapshotID string
}
