package backend

import "fmt"

// UnavailableError signals that a backend's helper tool is missing on
// this host. It is a routing decision for the fallback chain, not a
// transfer failure.
type UnavailableError struct {
	Backend string // Backend name (e.g., "hub")
	Tool    string // Executable that could not be found
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("backend %s unavailable: %s not found in PATH", e.Backend, e.Tool)
}

// NotApplicableError signals that a backend cannot serve a particular
// URL (e.g., the hub client given a non-hub URL).
type NotApplicableError struct {
	Backend string
	URL     string
}

func (e *NotApplicableError) Error() string {
	return fmt.Sprintf("backend %s cannot handle %s", e.Backend, e.URL)
}

// TransferError represents a backend that ran and failed: a non-zero
// exit status, or a clean exit that left no artifact behind.
type TransferError struct {
	Backend string // Backend that attempted the transfer
	URL     string // Source URL
	Reason  string // Human-readable explanation, including stderr tail if any
	Err     error  // Underlying error, if any
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer via %s failed for %s: %s", e.Backend, e.URL, e.Reason)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
