package brightdata

type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
	StatusUnknown Status = "unknown"
)

// SnapshotStatus is the raw progress payload of a collection snapshot.
// Only Status is guaranteed to be present; everything else is optional
// and replaced wholesale on every poll.
type SnapshotStatus struct {
	Status        Status `json:"status"`
	Message       string `json:"message,omitempty"`
	Progress      *int   `json:"progress,omitempty"`
	Count         *int   `json:"count,omitempty"`
	EstimatedTime *int   `json:"estimated_time,omitempty"`
}
