package formatter

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/topsync/internal/services"
	"github.com/desertthunder/topsync/internal/shared"
)

var (
	tracks = []services.TopItem{
		services.TopTrack{SongName: "Album One", ArtistName: "Artist One", SongURL: "https://u/1", SongURI: "spotify:track:1", SongImg: "https://i/1"},
		services.TopTrack{SongName: "Album, Two", SongURL: "https://u/2", SongURI: "spotify:track:2", SongImg: "https://i/2"},
	}
	artists = []services.TopItem{
		services.TopArtist{ArtistName: "Band", ArtistURL: "https://a/1", ArtistFollowers: 1_230_000, ArtistImg: "https://i/a1"},
	}
)

func TestExporters(t *testing.T) {
	t.Run("ToCSV", func(t *testing.T) {
		t.Run("tracks", func(t *testing.T) {
			data, err := ToCSV(tracks)
			if err != nil {
				t.Fatalf("ToCSV failed: %v", err)
			}

			output := string(data)
			if !strings.HasPrefix(output, "Rank,Song,Artist,URL,URI,Image\n") {
				t.Errorf("CSV missing headers, got: %s", output)
			}
			if !strings.Contains(output, "1,Album One,Artist One,https://u/1,spotify:track:1,https://i/1") {
				t.Errorf("CSV missing first row, got: %s", output)
			}
			if !strings.Contains(output, `2,"Album, Two",,https://u/2`) {
				t.Errorf("CSV should quote commas, got: %s", output)
			}
		})

		t.Run("artists", func(t *testing.T) {
			data, err := ToCSV(artists)
			if err != nil {
				t.Fatalf("ToCSV failed: %v", err)
			}

			want := "Rank,Artist,URL,Followers,Image\n1,Band,https://a/1,1230000,https://i/a1\n"
			if string(data) != want {
				t.Errorf("ToCSV() = %q, want %q", data, want)
			}
		})

		t.Run("empty", func(t *testing.T) {
			data, err := ToCSV(nil)
			if err != nil {
				t.Fatalf("ToCSV failed: %v", err)
			}
			if strings.Count(string(data), "\n") != 1 {
				t.Errorf("expected header only, got %q", data)
			}
		})
	})

	t.Run("ToMarkdown", func(t *testing.T) {
		output := string(ToMarkdown("Top tracks (short_term)", tracks))

		if !strings.HasPrefix(output, "# Top tracks (short_term)\n") {
			t.Errorf("Markdown missing title, got: %s", output)
		}
		if !strings.Contains(output, "**Items**: 2") {
			t.Errorf("Markdown missing count, got: %s", output)
		}
		if !strings.Contains(output, "1. [Album One](https://u/1) - Artist One") {
			t.Errorf("Markdown missing linked track, got: %s", output)
		}

		output = string(ToMarkdown("Top artists", artists))
		if !strings.Contains(output, "1. [Band](https://a/1) (1.2M followers)") {
			t.Errorf("Markdown missing artist, got: %s", output)
		}
	})

	t.Run("ToText", func(t *testing.T) {
		output := string(ToText("Top tracks", tracks))

		if !strings.Contains(output, "Items: 2") {
			t.Errorf("Text missing count, got: %s", output)
		}
		if !strings.Contains(output, "1. Artist One - Album One\n") {
			t.Errorf("Text missing first track, got: %s", output)
		}
		if !strings.Contains(output, "2. Album, Two\n") {
			t.Errorf("Text should omit empty artist, got: %s", output)
		}
	})
}

func TestRender(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		data, err := Render(FormatJSON, "", artists)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}

		var got []map[string]any
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got[0]["artist_followers"] != float64(1_230_000) {
			t.Errorf("unexpected JSON %s", data)
		}
	})

	t.Run("defaults to text", func(t *testing.T) {
		data, err := Render("", "Top", tracks)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		if !strings.HasPrefix(string(data), "Top\n") {
			t.Errorf("unexpected output %q", data)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := Render("yaml", "", tracks); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})
}

func TestFollowers(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1_500, "1.5K"},
		{2_000_000, "2.0M"},
	}

	for _, tt := range tests {
		if got := Followers(tt.n); got != tt.want {
			t.Errorf("Followers(%d) = %s, want %s", tt.n, got, tt.want)
		}
	}
}

func TestPalette(t *testing.T) {
	p := NewPalette("#000000", "#000000", "#000000", "#000000", "#000000")

	if !strings.Contains(p.OK("done"), "done") {
		t.Error("OK() should contain the message")
	}
	if !strings.Contains(p.Err("failed"), "failed") {
		t.Error("Err() should contain the message")
	}
	if out := p.Progress("add_tracks", "Adding 3 tracks"); !strings.Contains(out, "add_tracks") || !strings.Contains(out, "Adding 3 tracks") {
		t.Errorf("Progress() = %q", out)
	}
}
