package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestErrorIncludesInternal(t *testing.T) {
	internal := stdErrors.New("boom")
	err := Wrap(internal, "failed")

	if err.Error() != "failed: boom" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
}

func TestWithInternalCopies(t *testing.T) {
	base := New("TEST", "test", 400)
	with := base.WithInternal(stdErrors.New("oops"))

	if with == base {
		t.Fatal("expected WithInternal to return a copy")
	}

	if base.Internal != nil {
		t.Fatal("expected original error to remain unchanged")
	}

	if with.Internal == nil {
		t.Fatal("expected internal error to be set")
	}
}

func TestNewForbiddenCarriesCapability(t *testing.T) {
	err := NewForbidden("payment", "delete")

	if err.Module != "payment" || err.Action != "delete" {
		t.Fatalf("expected capability payment/delete, got %s/%s", err.Module, err.Action)
	}
	if err.Message != ErrForbidden.Message {
		t.Fatalf("expected generic denial message, got %q", err.Message)
	}
	if !IsForbidden(err) {
		t.Fatal("expected IsForbidden to report true")
	}
	if !IsForbidden(fmt.Errorf("guard: %w", err)) {
		t.Fatal("expected IsForbidden to unwrap wrapped errors")
	}
	if IsForbidden(ErrNotFound) {
		t.Fatal("expected not-found error to not report forbidden")
	}
}

func TestFromError(t *testing.T) {
	appErr := ErrNotFound
	if out := FromError(appErr); out != appErr {
		t.Fatal("expected FromError to return the same AppError instance")
	}

	raw := stdErrors.New("raw")
	out := FromError(raw)
	if out.Code != ErrInternalServer.Code {
		t.Fatalf("expected internal server code, got %s", out.Code)
	}
	if out.Internal == nil {
		t.Fatal("expected internal error to be attached")
	}
}

func TestNewBadRequest(t *testing.T) {
	err := NewBadRequest("invalid payload")
	if err.Code != ErrBadRequest.Code {
		t.Fatalf("expected %s, got %s", ErrBadRequest.Code, err.Code)
	}
	if err.Message != "invalid payload" {
		t.Fatalf("unexpected message: %s", err.Message)
	}
}
