package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestParseDateRange(t *testing.T) {
	cases := []struct {
		raw       string
		start     string
		end       string
		days      int
		shouldErr bool
	}{
		{raw: "2026-02-01", start: "2026-02-01", end: "2026-02-01", days: 1},
		{raw: "2026/02/01 ~ 2026/02/03", start: "2026-02-01", end: "2026-02-03", days: 3},
		{raw: "2026/02/28〜2026/03/01", start: "2026-02-28", end: "2026-03-01", days: 2},
		{raw: "2026-02-03 ~ 2026-02-01", shouldErr: true},
		{raw: "next week", shouldErr: true},
	}

	for _, tc := range cases {
		r, err := ParseDateRange(tc.raw)
		if tc.shouldErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tc.raw, err)
		}
		if FormatDate(r.Start) != tc.start || FormatDate(r.End) != tc.end {
			t.Fatalf("%q: got %s..%s", tc.raw, FormatDate(r.Start), FormatDate(r.End))
		}
		if len(r.Days()) != tc.days {
			t.Fatalf("%q: expected %d days, got %d", tc.raw, tc.days, len(r.Days()))
		}
	}
}

func TestDateRangeString(t *testing.T) {
	r, _ := ParseDateRange("2026-02-01 ~ 2026-02-02")
	if r.String() != "2026/02/01 ~ 2026/02/02" {
		t.Fatalf("unexpected %q", r.String())
	}
	single, _ := ParseDateRange("2026-02-01")
	if single.String() != "2026/02/01" {
		t.Fatalf("unexpected %q", single.String())
	}
}

func TestHoldKeyDistinguishesNamesWithDelimiters(t *testing.T) {
	r, _ := ParseDateRange("2026-02-01")
	a := NewHoldKey(uuid.New(), r.Start)
	b := NewHoldKey(uuid.New(), r.Start)
	holds := map[HoldKey]string{a: "evt-a", b: "evt-b"}
	if len(holds) != 2 || holds[a] != "evt-a" {
		t.Fatal("hold keys collided")
	}
}
