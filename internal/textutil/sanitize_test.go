package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  cd_metadata.json ", "cd_metadata.json"},
		{"AC/DC: Back in Black?", "AC-DC- Back in Black"},
		{`a\b*c"d<e>f|g`, "a-b-cdefg"},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
