package core

import "testing"

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  float64
		found bool
	}{
		{
			name:  "dollar sign with separators",
			text:  "We can offer $135,000.00 for the program.",
			want:  135000,
			found: true,
		},
		{
			name:  "bare number",
			text:  "Our budget allows 90000 this quarter.",
			want:  90000,
			found: true,
		},
		{
			name:  "cents preserved",
			text:  "The revised figure is $1,250,000.50.",
			want:  1250000.50,
			found: true,
		},
		{
			name:  "first of several amounts wins",
			text:  "Between $110,000 and $140,000 we'd prefer the former.",
			want:  110000,
			found: true,
		},
		{
			name:  "no amount",
			text:  "We need to think about this.",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractAmount(tt.text)
			if found != tt.found {
				t.Fatalf("found = %v, want %v", found, tt.found)
			}
			if found && got != tt.want {
				t.Errorf("amount = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectAcceptance(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"explicit accept", "We accept your terms and look forward to the partnership.", true},
		{"deal phrasing", "Alright, you have a deal.", true},
		{"case insensitive", "WE GLADLY ACCEPT this generous offer.", true},
		{"mid sentence", "After consideration, it's a deal as far as we're concerned.", true},
		{"counter offer", "We appreciate the offer but must ask for more.", false},
		{"negated-sounding but absent phrase", "We cannot agree at this level.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectAcceptance(tt.text); got != tt.want {
				t.Errorf("DetectAcceptance(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
