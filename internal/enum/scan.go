package enum

type ScanStatus string

const (
	ScanStatusPending    ScanStatus = "pending"
	ScanStatusInProgress ScanStatus = "in_progress"
	ScanStatusCompleted  ScanStatus = "completed"
	ScanStatusFailed     ScanStatus = "failed"
)

func (t ScanStatus) String() string {
	return string(t)
}

// IsTerminal reports whether no further status transitions are allowed
func (t ScanStatus) IsTerminal() bool {
	return t == ScanStatusCompleted || t == ScanStatusFailed
}
