package backend

import (
	"errors"
	"testing"
)

func TestUnavailableError_Error(t *testing.T) {
	err := &UnavailableError{Backend: "hub", Tool: "hfdownloader"}

	expected := "backend hub unavailable: hfdownloader not found in PATH"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNotApplicableError_Error(t *testing.T) {
	err := &NotApplicableError{Backend: "hub", URL: "https://example.com/a.bin"}

	expected := "backend hub cannot handle https://example.com/a.bin"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestTransferError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *TransferError
		want string
	}{
		{
			name: "with reason",
			err: &TransferError{
				Backend: "aria2",
				URL:     "https://example.com/a.bin",
				Reason:  "exit status 1: errorCode=24 authorization failed",
			},
			want: "transfer via aria2 failed for https://example.com/a.bin: exit status 1: errorCode=24 authorization failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransferError_Unwrap(t *testing.T) {
	inner := errors.New("exit status 8")
	err := &TransferError{Backend: "wget", URL: "u", Reason: inner.Error(), Err: inner}

	if !errors.Is(err, inner) {
		t.Error("TransferError should unwrap to its inner error")
	}
}
