package cli

import (
	"testing"
	"time"
)

func TestParseSinceDuration(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		input   string
		wantMin time.Duration
		wantMax time.Duration
		wantErr bool
	}{
		{name: "days", input: "7d", wantMin: 7*24*time.Hour - time.Minute, wantMax: 7*24*time.Hour + time.Minute},
		{name: "hours", input: "24h", wantMin: 24*time.Hour - time.Minute, wantMax: 24*time.Hour + time.Minute},
		{name: "empty defaults to a week", input: "", wantMin: 7*24*time.Hour - time.Minute, wantMax: 7*24*time.Hour + time.Minute},
		{name: "whitespace trimmed", input: " 2d ", wantMin: 2*24*time.Hour - time.Minute, wantMax: 2*24*time.Hour + time.Minute},
		{name: "bad number", input: "xd", wantErr: true},
		{name: "bad suffix", input: "7w", wantErr: true},
		{name: "raw number", input: "7", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSinceDuration(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseSinceDuration(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSinceDuration(%q): %v", tt.input, err)
			}

			age := now.Sub(got)
			if age < tt.wantMin || age > tt.wantMax {
				t.Errorf("parseSinceDuration(%q) = %v ago, want about %v", tt.input, age, tt.wantMax)
			}
		})
	}
}
