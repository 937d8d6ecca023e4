package core_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"incentive-engine/internal/core"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		token     string
		wantYear  int
		wantMonth time.Month
		wantErr   bool
	}{
		{token: "2025-09", wantYear: 2025, wantMonth: time.September},
		{token: "2024-02", wantYear: 2024, wantMonth: time.February},
		{token: "1999-12", wantYear: 1999, wantMonth: time.December},
		{token: "2025-13", wantErr: true},
		{token: "2025-00", wantErr: true},
		{token: "2025", wantErr: true},
		{token: "09-2025", wantErr: true},
		{token: "2025/09", wantErr: true},
		{token: "", wantErr: true},
		{token: "garbage", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			p, err := core.ParsePeriod(tt.token)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %v", tt.token, p)
				}
				if !errors.Is(err, core.ErrInvalidPeriod) {
					t.Errorf("expected ErrInvalidPeriod, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Year != tt.wantYear || p.Month != tt.wantMonth {
				t.Errorf("expected %d-%d, got %d-%d", tt.wantYear, tt.wantMonth, p.Year, p.Month)
			}
		})
	}
}

func TestPeriod_Bounds(t *testing.T) {
	tests := []struct {
		token     string
		wantStart string
		wantEnd   string
	}{
		{"2025-09", "2025-09-01", "2025-09-30"},
		{"2025-01", "2025-01-01", "2025-01-31"},
		{"2025-02", "2025-02-01", "2025-02-28"},
		{"2024-02", "2024-02-01", "2024-02-29"}, // leap year
		{"2000-02", "2000-02-01", "2000-02-29"}, // century leap year
		{"1900-02", "1900-02-01", "1900-02-28"}, // century non-leap
		{"2025-12", "2025-12-01", "2025-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			p, err := core.ParsePeriod(tt.token)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := p.Start().Format("2006-01-02"); got != tt.wantStart {
				t.Errorf("start: expected %s, got %s", tt.wantStart, got)
			}
			if got := p.End().Format("2006-01-02"); got != tt.wantEnd {
				t.Errorf("end: expected %s, got %s", tt.wantEnd, got)
			}
		})
	}
}

func TestPeriod_StringRoundTrip(t *testing.T) {
	p := core.Period{Year: 2025, Month: time.March}
	if p.String() != "2025-03" {
		t.Fatalf("expected 2025-03, got %s", p.String())
	}
	back, err := core.ParsePeriod(p.String())
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if back != p {
		t.Errorf("round trip changed period: %v != %v", back, p)
	}
}

func TestPeriod_Contains(t *testing.T) {
	p := core.Period{Year: 2025, Month: time.September}
	in := time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC)
	out := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	if !p.Contains(in) {
		t.Errorf("expected %v inside %v", in, p)
	}
	if p.Contains(out) {
		t.Errorf("expected %v outside %v", out, p)
	}
}

func TestPeriod_JSON(t *testing.T) {
	p := core.Period{Year: 2025, Month: time.September}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(b) != `"2025-09"` {
		t.Fatalf(`expected "2025-09", got %s`, b)
	}

	var back core.Period
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back != p {
		t.Errorf("JSON round trip changed period: %v != %v", back, p)
	}

	if err := json.Unmarshal([]byte(`"2025-14"`), &back); err == nil {
		t.Error("expected error for invalid month")
	}
}
