package events

var CollectionFinishedTopic = "CollectionFinishedEvent"

// CollectionFinished is published once per snapshot when a poll first
// observes a terminal status (ready or failed).
type CollectionFinished struct {
	SessionID  string
	SnapshotID string
	Status     string
}
