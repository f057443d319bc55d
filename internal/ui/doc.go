// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for building playlists:
//  1. [HomeView] : Browse the logged-in user's playlists
//  2. [FormView] : Enter name, description, artists, and cover image
//  3. [ConfirmView] : Confirm the build
//  4. [BuildView] : Monitor real-time progress updates
//  5. [ResultView] : Display the created playlist
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the PlaylistBuilder, providing non-blocking status reporting during builds.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
