package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrTimeout, true},
		{ErrNetworkUnavailable, true},
		{ErrRateLimited, true},
		{context.DeadlineExceeded, true},
		{fmt.Errorf("searching nearby: %w", ErrTimeout), true},
		{ErrInvalidCredentials, false},
		{ErrDecode, false},
		{ErrLocationPermissionDenied, false},
		{&UpstreamError{Code: "INVALID_REQUEST"}, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := IsTransient(tt.err); got != tt.want {
			t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestIsCancelled(t *testing.T) {
	if !IsCancelled(ErrCancelled) {
		t.Error("ErrCancelled should be cancelled")
	}
	if !IsCancelled(context.Canceled) {
		t.Error("context.Canceled should be cancelled")
	}
	if !IsCancelled(fmt.Errorf("lane superseded: %w", ErrCancelled)) {
		t.Error("wrapped ErrCancelled should be cancelled")
	}
	if IsCancelled(ErrTimeout) {
		t.Error("ErrTimeout should not be cancelled")
	}
}

func TestUpstreamErrorMessage(t *testing.T) {
	err := &UpstreamError{Code: "INVALID_REQUEST", Message: "missing location"}
	want := "upstream status INVALID_REQUEST: missing location"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	var upstream *UpstreamError
	wrapped := fmt.Errorf("searching: %w", err)
	if !errors.As(wrapped, &upstream) {
		t.Error("errors.As should unwrap UpstreamError")
	}
}

func TestClonePlaces(t *testing.T) {
	rating := 4.5
	orig := []Place{{
		ID:        "a",
		Name:      "Al Forno",
		Rating:    &rating,
		PhotoRefs: []string{"ref1"},
	}}

	cloned := ClonePlaces(orig)
	*cloned[0].Rating = 1.0
	cloned[0].PhotoRefs[0] = "changed"

	if *orig[0].Rating != 4.5 {
		t.Error("clone should not share rating pointer")
	}
	if orig[0].PhotoRefs[0] != "ref1" {
		t.Error("clone should not share photo refs slice")
	}
}
