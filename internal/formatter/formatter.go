// package formatter renders top items and workflow results for the terminal and for file exports (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/desertthunder/topsync/internal/services"
	"github.com/desertthunder/topsync/internal/shared"
)

// Format names an output encoding for top items.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// Render encodes items in the requested format. The title is used by the text and Markdown formats only.
func Render(format Format, title string, items []services.TopItem) ([]byte, error) {
	switch format {
	case FormatJSON:
		return shared.MarshalJSON(items, true)
	case FormatCSV:
		return ToCSV(items)
	case FormatMarkdown:
		return ToMarkdown(title, items), nil
	case FormatText, "":
		return ToText(title, items), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrValidation, format)
	}
}

// ToCSV writes one row per item. Tracks and artists have different columns; a mixed list uses the columns of
// the first item and leaves the other kind's cells empty.
func ToCSV(items []services.TopItem) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "Song", "Artist", "URL", "URI", "Image"}
	if len(items) > 0 {
		if _, ok := items[0].(services.TopArtist); ok {
			headers = []string{"Rank", "Artist", "URL", "Followers", "Image"}
		}
	}

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, item := range items {
		rank := strconv.Itoa(i + 1)

		var record []string
		switch it := item.(type) {
		case services.TopTrack:
			record = []string{rank, it.SongName, it.ArtistName, it.SongURL, it.SongURI, it.SongImg}
		case services.TopArtist:
			record = []string{rank, it.ArtistName, it.ArtistURL, strconv.Itoa(it.ArtistFollowers), it.ArtistImg}
		}

		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToMarkdown renders a heading and a numbered list with links.
func ToMarkdown(title string, items []services.TopItem) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Items**: %d\n\n", len(items))

	for i, item := range items {
		switch it := item.(type) {
		case services.TopTrack:
			fmt.Fprintf(&buf, "%d. [%s](%s) - %s\n", i+1, it.SongName, it.SongURL, it.ArtistName)
		case services.TopArtist:
			fmt.Fprintf(&buf, "%d. [%s](%s) (%s followers)\n", i+1, it.ArtistName, it.ArtistURL, Followers(it.ArtistFollowers))
		}
	}

	return buf.Bytes()
}

// ToText renders a plain numbered list.
func ToText(title string, items []services.TopItem) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", title)
	fmt.Fprintf(&buf, "Items: %d\n\n", len(items))

	for i, item := range items {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, Line(item))
	}

	return buf.Bytes()
}

// Line is the one-line description of an item.
func Line(item services.TopItem) string {
	switch it := item.(type) {
	case services.TopTrack:
		if it.ArtistName == "" {
			return it.SongName
		}
		return fmt.Sprintf("%s - %s", it.ArtistName, it.SongName)
	case services.TopArtist:
		return fmt.Sprintf("%s (%s followers)", it.ArtistName, Followers(it.ArtistFollowers))
	default:
		return ""
	}
}

// Followers abbreviates follower counts, e.g. 1234567 becomes 1.2M.
func Followers(n int) string {
	switch {
	case n >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "M"
	case n >= 1_000:
		return strconv.FormatFloat(float64(n)/1_000, 'f', 1, 64) + "K"
	default:
		return strconv.Itoa(n)
	}
}
