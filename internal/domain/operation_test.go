package domain

import (
	"errors"
	"testing"
)

func TestOperation_IsValid(t *testing.T) {
	tests := []struct {
		op   Operation
		want bool
	}{
		{OpCreate, true},
		{OpUpdate, true},
		{OpDelete, true},
		{OpDeleteAll, true},
		{"publish", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := tc.op.IsValid(); got != tc.want {
			t.Errorf("Operation(%q).IsValid() = %v, want %v", tc.op, got, tc.want)
		}
	}
}

func TestOperation_Tracked(t *testing.T) {
	if OpDeleteAll.Tracked() {
		t.Error("deleteall must not be tracked")
	}
	for _, op := range []Operation{OpCreate, OpUpdate, OpDelete} {
		if !op.Tracked() {
			t.Errorf("%s must be tracked", op)
		}
	}
}

func TestUnknownIndexError(t *testing.T) {
	err := NewUnknownIndex("missing")
	if !errors.Is(err, ErrUnknownIndex) {
		t.Fatalf("expected ErrUnknownIndex, got %v", err)
	}
	var uie *UnknownIndexError
	if !errors.As(err, &uie) || uie.Name != "missing" {
		t.Fatalf("expected UnknownIndexError with name, got %v", err)
	}
	if err.Error() != `unknown index: "missing"` {
		t.Errorf("Error() = %q", err.Error())
	}
}
