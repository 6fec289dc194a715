package spotify

import "testing"

func TestIsSpotifyURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT", true},
		{"spotify:track:4cOdK2wGLETKBW3PvgPWqT", true},
		{"https://music.youtube.com/watch?v=abc", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsSpotifyURL(tt.url); got != tt.want {
			t.Errorf("IsSpotifyURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT", TypeTrack},
		{"https://open.spotify.com/album/6dVIqQ8qmQ5GBnJ9shOYGE", TypeAlbum},
		{"https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", TypePlaylist},
		{"spotify:album:6dVIqQ8qmQ5GBnJ9shOYGE", TypeAlbum},
		{"https://open.spotify.com/artist/06HL4z0CvFAxyc27GXpf02", TypeUnknown},
	}
	for _, tt := range tests {
		if got := Classify(tt.url); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestExtractID(t *testing.T) {
	tests := []struct {
		url     string
		urlType string
		want    string
	}{
		{"https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT?si=x", TypeTrack, "4cOdK2wGLETKBW3PvgPWqT"},
		{"spotify:playlist:37i9dQZF1DXcBWIGoYBM5M", TypePlaylist, "37i9dQZF1DXcBWIGoYBM5M"},
		{"https://open.spotify.com/", TypeTrack, ""},
	}
	for _, tt := range tests {
		if got := ExtractID(tt.url, tt.urlType); got != tt.want {
			t.Errorf("ExtractID(%q, %q) = %q, want %q", tt.url, tt.urlType, got, tt.want)
		}
	}
}

func TestIsSentinelArtist(t *testing.T) {
	tests := []struct {
		artist string
		want   bool
	}{
		{"Spotify", true},
		{"spotify", true},
		{"Unknown", true},
		{"", true},
		{"  ", true},
		{"The Weeknd", false},
	}
	for _, tt := range tests {
		if got := IsSentinelArtist(tt.artist); got != tt.want {
			t.Errorf("IsSentinelArtist(%q) = %v, want %v", tt.artist, got, tt.want)
		}
	}
}
