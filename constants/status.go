package constants

// RunStatus is the canonical status for rows in extract_run.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusRunning RunStatus = "RUNNING" // in progress
	RunStatusTextOK  RunStatus = "TEXT_OK" // stage 1 completed (text extracted)
	RunStatusParsed  RunStatus = "PARSED"  // stage 2 completed (accounts stored)
	RunStatusEmpty   RunStatus = "EMPTY"   // parsed, but no valid accounts found
	RunStatusFailed  RunStatus = "FAILED"  // terminal failure
)

// Terminal reports whether a run in this status will not change again.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusParsed, RunStatusEmpty, RunStatusFailed:
		return true
	}
	return false
}
