package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/mwojcik/artistmix/internal/models"
)

var _ list.Item = playlistItem{}

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	if i.playlist.ExternalURL != "" {
		return i.playlist.ExternalURL
	}
	return i.playlist.ID
}
