package newsfront

import "testing"

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://news.example", nil, "https://news.example"},
		{"https://news.example", []string{"headlines"}, "https://news.example/headlines/"},
		{"https://news.example/", []string{"headlines", "budget-vote"}, "https://news.example/headlines/budget-vote/"},
		{"https://news.example/sub", []string{"headlines"}, "https://news.example/sub/headlines/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.want)
		}
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>Budget vote passes</p>", "Budget vote passes"},
		{"Plain title", "Plain title"},
		{"Breaking &amp; Entering", "Breaking & Entering"},
		{"  <em>spaced</em>  ", "spaced"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
