package jtbd

import (
	"errors"
	"testing"
)

func TestScoresRoundTrip(t *testing.T) {
	in := &Scores{UserCost: 4, UserBenefit: 9, CostRationale: "two hours", BenefitRationale: "unblocks delivery"}
	value, err := in.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var out Scores
	if err := out.Scan(value); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if out != *in {
		t.Fatalf("round-trip = %+v, want %+v", out, *in)
	}
}

func TestScoresNil(t *testing.T) {
	var s *Scores
	value, err := s.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if value != nil {
		t.Fatalf("nil scores should store NULL, got %v", value)
	}

	var out Scores
	if err := out.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if out != (Scores{}) {
		t.Fatalf("scan nil = %+v", out)
	}
}

func TestScoresScanCorrupt(t *testing.T) {
	tests := []struct {
		name string
		src  any
	}{
		{"broken json", []byte(`{"userCost": `)},
		{"wrong column type", 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Scores
			if err := s.Scan(tt.src); !errors.Is(err, ErrCorruptRecord) {
				t.Fatalf("expected ErrCorruptRecord, got %v", err)
			}
		})
	}
}

func TestStringListRoundTrip(t *testing.T) {
	in := StringList{"first warning", "second warning"}
	value, err := in.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var out StringList
	if err := out.Scan(value); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Fatalf("round-trip = %v", out)
	}
}

func TestStringListEmptySources(t *testing.T) {
	var out StringList
	if err := out.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if out != nil {
		t.Fatalf("scan nil = %v", out)
	}
	if err := out.Scan(""); err != nil {
		t.Fatalf("scan empty string: %v", err)
	}
	if out != nil {
		t.Fatalf("scan empty string = %v", out)
	}
}

func TestEnumValidity(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
		check func() bool
	}{
		{"level big", true, Level("big").Valid},
		{"level micro", true, Level("micro").Valid},
		{"level huge", false, Level("huge").Valid},
		{"level empty", false, Level("").Valid},
		{"phase unknown", true, Phase("unknown").Valid},
		{"phase soonish", false, Phase("soonish").Valid},
		{"cadence repeat", true, Cadence("repeat").Valid},
		{"cadence hourly", false, Cadence("hourly").Valid},
		{"solution our_product", true, SolutionType("our_product").Valid},
		{"solution vendor", false, SolutionType("vendor").Valid},
		{"edge depends_on", true, EdgeType("depends_on").Valid},
		{"edge blocks", false, EdgeType("blocks").Valid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(); got != tt.valid {
				t.Fatalf("Valid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestJobCheckRow(t *testing.T) {
	good := Job{ID: "j1", Level: LevelSmall, Phase: PhaseBefore, Cadence: CadenceOnce}
	if err := good.CheckRow(); err != nil {
		t.Fatalf("valid row rejected: %v", err)
	}

	bad := good
	bad.Phase = "someday"
	if err := bad.CheckRow(); err == nil {
		t.Fatal("expected an error for an unknown phase")
	}
}
