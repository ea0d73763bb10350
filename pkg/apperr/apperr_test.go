package apperr

import (
	"fmt"
	"testing"
)

func TestIsKind(t *testing.T) {
	err := NotFound("missing")

	if !IsKind(err, KindNotFound) {
		t.Error("IsKind should match a bare *Error")
	}
	if IsKind(err, KindConflict) {
		t.Error("IsKind should not match a different kind")
	}
	if IsKind(nil, KindNotFound) {
		t.Error("IsKind should not match nil")
	}
	if IsKind(fmt.Errorf("plain"), KindNotFound) {
		t.Error("IsKind should not match a plain error")
	}
}

func TestIsKind_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("lookup failed: %w", Forbidden("not yours"))

	if !IsKind(wrapped, KindForbidden) {
		t.Error("IsKind should match through error wrapping")
	}
	if IsKind(wrapped, KindNotFound) {
		t.Error("IsKind should not match a different kind through wrapping")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
	}{
		{NotFound("x"), 404},
		{InvalidArgument("x"), 400},
		{Validation("x"), 400},
		{Forbidden("x"), 403},
		{Conflict("x"), 409},
		{Internal("x"), 500},
	}
	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.status {
			t.Errorf("HTTPStatus(kind %d) = %d, expected %d", tc.err.Kind, got, tc.status)
		}
	}
}
