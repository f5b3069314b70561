package domain

import (
	"testing"
	"time"
)

func TestTransportListRoundTrip(t *testing.T) {
	in := TransportList{"internal", "hybrid"}

	v, err := in.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var out TransportList
	if err := out.Scan(v); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(out) != 2 || out[0] != "internal" || out[1] != "hybrid" {
		t.Fatalf("round trip mismatch: %v", out)
	}
}

func TestTransportListEmpty(t *testing.T) {
	var empty TransportList
	v, err := empty.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != nil {
		t.Fatalf("empty list should store NULL, got %v", v)
	}

	var out TransportList
	if err := out.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil, got %v", out)
	}
}

func TestInvitationUsable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	inv := Invitation{ExpiresAt: now.Add(time.Hour)}

	if !inv.Usable(now) {
		t.Fatalf("fresh invitation should be usable")
	}
	if inv.Usable(now.Add(2 * time.Hour)) {
		t.Fatalf("expired invitation is not usable")
	}

	used := now
	inv.UsedAt = &used
	if inv.Usable(now) {
		t.Fatalf("consumed invitation is not usable")
	}
}

func TestChallengeExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ch := Challenge{ExpiresAt: now}

	if ch.Expired(now.Add(-time.Second)) {
		t.Fatalf("not yet expired")
	}
	if !ch.Expired(now) {
		t.Fatalf("expiry instant counts as expired")
	}
}
