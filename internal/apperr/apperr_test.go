package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_IsAndAs(t *testing.T) {
	err := fmt.Errorf("transition: %w", DependencyNotSatisfied([]string{"Book hall (PENDING)"}))

	if !errors.Is(err, ErrDependencyNotSatisfied) {
		t.Fatal("expected errors.Is to match ErrDependencyNotSatisfied")
	}
	var ae *Error
	if !errors.As(err, &ae) {
		t.Fatal("expected errors.As to find *Error")
	}
	if len(ae.Details) != 1 || ae.Details[0] != "Book hall (PENDING)" {
		t.Errorf("unexpected details %v", ae.Details)
	}
	want := "dependency not satisfied: 1 dependencies not completed (Book hall (PENDING))"
	if ae.Error() != want {
		t.Errorf("got %q, want %q", ae.Error(), want)
	}
}

func TestForbiddenField(t *testing.T) {
	err := ForbiddenField("assigned_to")
	if err.Field != "assigned_to" {
		t.Errorf("expected field assigned_to, got %q", err.Field)
	}
	if !errors.Is(err, ErrForbidden) {
		t.Error("expected ErrForbidden kind")
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{Validation("name", "name is required"), ErrValidation},
		{NotFound("template %s", "x"), ErrNotFound},
		{HasDependents([]string{"a"}), ErrHasDependents},
		{InstantiationFailed(), ErrInstantiationFailed},
		{errors.New("disk on fire"), ErrInternal},
	}
	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
