// package formatter renders users, playlists, and build results for terminal output (plain text, Markdown, JSON)
package formatter

import (
	"bytes"
	"fmt"
	"os"

	"github.com/mwojcik/artistmix/internal/models"
	"github.com/mwojcik/artistmix/internal/shared"
	"github.com/mwojcik/artistmix/internal/tasks"
)

// FormatUser renders the current user as a single display line.
func FormatUser(user *models.CurrentUser) []byte {
	var buf bytes.Buffer

	if user == nil {
		buf.WriteString("Not logged in.\n")
		return buf.Bytes()
	}

	buf.WriteString(fmt.Sprintf("Logged in as %s (%s)\n", user.DisplayName, user.ID))
	if user.ExternalURL != "" {
		buf.WriteString(fmt.Sprintf("Profile: %s\n", user.ExternalURL))
	}

	return buf.Bytes()
}

// FormatPlaylists renders a numbered playlist listing.
func FormatPlaylists(playlists []models.Playlist) []byte {
	var buf bytes.Buffer

	if len(playlists) == 0 {
		buf.WriteString("No playlists found.\n")
		return buf.Bytes()
	}

	buf.WriteString(fmt.Sprintf("Playlists: %d\n\n", len(playlists)))
	for i, pl := range playlists {
		buf.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, pl.Name, pl.ID))
		if pl.ExternalURL != "" {
			buf.WriteString(fmt.Sprintf("   %s\n", pl.ExternalURL))
		}
	}

	return buf.Bytes()
}

// FormatBuildResult renders a completed build as plain text.
func FormatBuildResult(result *tasks.BuildResult) []byte {
	var buf bytes.Buffer

	if result == nil || result.Playlist == nil {
		buf.WriteString("No playlist was created.\n")
		return buf.Bytes()
	}

	buf.WriteString(fmt.Sprintf("Playlist: %s (%s)\n", result.Playlist.Name, result.Playlist.ID))
	if result.Playlist.ExternalURL != "" {
		buf.WriteString(fmt.Sprintf("URL: %s\n", result.Playlist.ExternalURL))
	}
	buf.WriteString(fmt.Sprintf("Tracks: %d\n", result.TrackCount))
	if result.CoverUploaded {
		buf.WriteString("Cover: uploaded\n")
	}

	if len(result.Artists) > 0 {
		buf.WriteString("\nArtists:\n")
		for i, artist := range result.Artists {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, artist.Name))
		}
	}

	return buf.Bytes()
}

// BuildResultToMarkdown renders a completed build as a Markdown summary.
func BuildResultToMarkdown(result *tasks.BuildResult) []byte {
	var buf bytes.Buffer

	if result == nil || result.Playlist == nil {
		buf.WriteString("# Build failed\n\nNo playlist was created.\n")
		return buf.Bytes()
	}

	buf.WriteString(fmt.Sprintf("# %s\n\n", result.Playlist.Name))

	if result.Playlist.ImageURL != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", result.Playlist.ImageURL))
	}

	if result.User != nil {
		buf.WriteString(fmt.Sprintf("**Owner**: %s\n", result.User.DisplayName))
	}
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", result.TrackCount))

	if len(result.Artists) > 0 {
		buf.WriteString("## Artists\n\n")
		for i, artist := range result.Artists {
			if artist.ExternalURL != "" {
				buf.WriteString(fmt.Sprintf("%d. [%s](%s)\n", i+1, artist.Name, artist.ExternalURL))
			} else {
				buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, artist.Name))
			}
		}
	}

	return buf.Bytes()
}

// ToMetadataJSON generates a JSON representation of playlist metadata
func ToMetadataJSON(playlist models.Playlist) ([]byte, error) {
	return shared.MarshalJSON(playlist, true)
}

// ReadImage loads raw cover image bytes from a local file.
func ReadImage(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("empty image path provided")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image file is empty: %s", path)
	}

	return data, nil
}

// WriteMarkdownSummary writes a build's Markdown summary to disk.
//
// Defaults to {playlist.ID}.md as the filename.
func WriteMarkdownSummary(result *tasks.BuildResult, filepath string) (string, error) {
	if result == nil || result.Playlist == nil {
		return "", fmt.Errorf("no playlist to summarize")
	}

	if filepath == "" {
		filepath = fmt.Sprintf("%s.md", result.Playlist.ID)
	}

	if err := os.WriteFile(filepath, BuildResultToMarkdown(result), 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}
