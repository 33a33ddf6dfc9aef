package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeCharacterNotFound, "character missing")
	wrapped := fmt.Errorf("resolve: %w", err)

	if !stderrors.Is(wrapped, New(CodeCharacterNotFound, "other message")) {
		t.Fatalf("expected errors.Is to match by code")
	}
	if stderrors.Is(wrapped, New(CodeAxisUnknown, "other")) {
		t.Fatalf("expected errors.Is to reject different code")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeLedgerWriteFailed, "append event", cause)

	if !stderrors.Is(err, cause) {
		t.Fatalf("expected cause in chain")
	}
	if err.Error() != "append event" {
		t.Fatalf("expected message, got %q", err.Error())
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil chain", stderrors.New("plain"), CodeUnknown},
		{"direct", New(CodeAxisDeltasEmpty, "empty"), CodeAxisDeltasEmpty},
		{"wrapped", fmt.Errorf("apply: %w", New(CodeAxisUnknown, "bad axis")), CodeAxisUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := GetCode(tc.err); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestGRPCCodeMapping(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeCharacterNotFound, codes.NotFound},
		{CodeAxisDeltasEmpty, codes.InvalidArgument},
		{CodeAxisUnknown, codes.FailedPrecondition},
		{CodeLedgerWriteFailed, codes.Internal},
		{CodeUnknown, codes.Internal},
	}
	for _, tc := range tests {
		if got := tc.code.GRPCCode(); got != tc.want {
			t.Fatalf("code %s: expected %v, got %v", tc.code, tc.want, got)
		}
	}
}

func TestHandleErrorAttachesDetails(t *testing.T) {
	err := WithMetadata(CodeCharacterNotFound, "character not found", map[string]string{
		"name":     "Vex",
		"world_id": "w-1",
	})

	st, ok := status.FromError(HandleError(err))
	if !ok {
		t.Fatalf("expected grpc status")
	}
	if st.Code() != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", st.Code())
	}
	if len(st.Details()) == 0 {
		t.Fatalf("expected error details attached")
	}
}

func TestHandleErrorUnknown(t *testing.T) {
	st, ok := status.FromError(HandleError(stderrors.New("boom")))
	if !ok {
		t.Fatalf("expected grpc status")
	}
	if st.Code() != codes.Internal {
		t.Fatalf("expected Internal, got %v", st.Code())
	}
}
