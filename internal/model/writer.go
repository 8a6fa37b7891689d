package model

// Writer receives every closed window from the scheduler.
type Writer interface {
	// Write handles one encoded window. Implementations must not retain w.
	Write(w *Window) error

	// Name identifies the writer in logs.
	Name() string
}
