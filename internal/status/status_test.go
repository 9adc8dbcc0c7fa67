package status

import (
	"errors"
	"fmt"
	"testing"
)

func TestOkImpliesEmptyMessage(t *testing.T) {
	s := OKStatus()
	if !s.Ok() {
		t.Fatalf("expected ok status")
	}
	if s.Message != "" {
		t.Fatalf("expected empty message on ok, got %q", s.Message)
	}
}

func TestErrorFormatting(t *testing.T) {
	s := New(InvalidArgument, "bad width %d", 9)
	if s.Error() != "invalid_argument: bad width 9" {
		t.Fatalf("unexpected error string: %q", s.Error())
	}
}

func TestFromErrorPassesThroughStatus(t *testing.T) {
	orig := New(DataLoss, "crc mismatch")
	wrapped := fmt.Errorf("decode failed: %w", orig)
	got := FromError(wrapped)
	if got.Code != DataLoss {
		t.Fatalf("expected DataLoss, got %v", got.Code)
	}
}

func TestFromErrorDefaultsInternal(t *testing.T) {
	got := FromError(errors.New("boom"))
	if got.Code != Internal {
		t.Fatalf("expected Internal, got %v", got.Code)
	}
}

func TestDeviceReported(t *testing.T) {
	s := DeviceReported(5, "not ready")
	if s.Code != Internal {
		t.Fatalf("expected Internal, got %v", s.Code)
	}
	want := "(code: 5): not ready"
	if s.Message != want {
		t.Fatalf("expected %q, got %q", want, s.Message)
	}
}
