package validate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

type fakeValidator struct {
	verdict *Verdict
	err     error
}

func (f fakeValidator) Validate(context.Context, string) (*Verdict, error) {
	return f.verdict, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAdapterPassesVerdictThrough(t *testing.T) {
	a := NewAdapter(fakeValidator{verdict: &Verdict{Valid: true}}, discardLogger())
	verdict := a.Validate(context.Background(), "name: ci")
	if !verdict.Valid {
		t.Fatalf("Valid = false, want true")
	}
}

func TestAdapterFoldsValidatorFailure(t *testing.T) {
	a := NewAdapter(fakeValidator{err: errors.New("connection refused")}, discardLogger())
	verdict := a.Validate(context.Background(), "name: ci")
	if verdict.Valid {
		t.Fatalf("Valid = true, want false when the validator cannot run")
	}
	if len(verdict.Errors) != 1 || !strings.Contains(verdict.Errors[0], "validator unavailable") {
		t.Fatalf("Errors = %v, want synthetic unavailable error", verdict.Errors)
	}
	if !strings.Contains(verdict.Errors[0], "connection refused") {
		t.Fatalf("Errors = %v, want cause preserved", verdict.Errors)
	}
}

func TestAdapterFoldsNilVerdict(t *testing.T) {
	a := NewAdapter(fakeValidator{}, discardLogger())
	verdict := a.Validate(context.Background(), "name: ci")
	if verdict.Valid || len(verdict.Errors) == 0 {
		t.Fatalf("verdict = %+v, want invalid with an error", verdict)
	}
}

func TestAdapterNormalizesValidity(t *testing.T) {
	// A validator that claims success while reporting errors is not trusted.
	a := NewAdapter(fakeValidator{verdict: &Verdict{Valid: true, Errors: []string{"job has no steps"}}}, discardLogger())
	if verdict := a.Validate(context.Background(), "name: ci"); verdict.Valid {
		t.Fatalf("Valid = true, want false while errors remain")
	}

	a = NewAdapter(fakeValidator{verdict: &Verdict{Valid: false, Warnings: []string{"no name"}}}, discardLogger())
	if verdict := a.Validate(context.Background(), "name: ci"); !verdict.Valid {
		t.Fatalf("Valid = false, want true with no errors")
	}
}
