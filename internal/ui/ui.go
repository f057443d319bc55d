package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mwojcik/artistmix/internal/formatter"
	"github.com/mwojcik/artistmix/internal/models"
	"github.com/mwojcik/artistmix/internal/shared"
	"github.com/mwojcik/artistmix/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	HomeView ViewState = iota
	FormView
	ConfirmView
	BuildView
	ResultView
)

// Builder runs playlist workflows on behalf of the TUI session.
type Builder interface {
	CurrentUser(ctx context.Context, sessionID string) (*models.CurrentUser, error)
	UserPlaylists(ctx context.Context, sessionID string) ([]models.Playlist, error)
	Build(ctx context.Context, sessionID string, req tasks.BuildRequest, progress chan<- tasks.ProgressUpdate) (*tasks.BuildResult, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	builder      Builder
	sessionID    string
	width        int
	height       int
	user         *models.CurrentUser
	playlistList list.Model
	form         buildForm
	pending      tasks.BuildRequest
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.BuildResult
	err          error
	help         help.Model
	keys         keyMap
}

type homeFetchedMsg struct {
	user      *models.CurrentUser
	playlists []models.Playlist
	err       error
}

type progressUpdateMsg tasks.ProgressUpdate

type buildCompleteMsg struct {
	result *tasks.BuildResult
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, builder Builder, sessionID string) *Model {
	return &Model{
		ctx:       ctx,
		view:      HomeView,
		builder:   builder,
		sessionID: sessionID,
		form:      newBuildForm(),
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init initializes the TUI by resolving the user and their playlists.
func (m *Model) Init() tea.Cmd {
	return m.fetchHome()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.playlistList.Width() == 0 {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case HomeView:
			return m.handleHomeKeys(msg)
		case FormView:
			return m.handleFormKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case homeFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.user = msg.user
		items := make([]list.Item, len(msg.playlists))
		for i, pl := range msg.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = fmt.Sprintf("%s's Playlists", msg.user.DisplayName)
		m.playlistList.SetSize(m.width-4, m.height-8)
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case buildCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	if m.view == HomeView {
		var cmd tea.Cmd
		m.playlistList, cmd = m.playlistList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case HomeView:
		return m.renderHome()
	case FormView:
		return m.renderForm()
	case ConfirmView:
		return m.renderConfirm()
	case BuildView:
		return m.renderBuild()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleHomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n":
		m.form = newBuildForm()
		m.view = FormView
		return m, nil
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = HomeView
		return m, nil
	case "ctrl+p":
		m.form.public = !m.form.public
		return m, nil
	case "shift+tab":
		m.form.focusPrev()
		return m, nil
	case "tab":
		m.form.focusNext()
		return m, nil
	case "enter":
		if !m.form.onLastField() {
			m.form.focusNext()
			return m, nil
		}

		req, imagePath := m.form.request()
		if imagePath != "" {
			image, err := formatter.ReadImage(imagePath)
			if err != nil {
				m.err = err
				return m, nil
			}
			req.Image = image
		}
		if err := req.Validate(); err != nil {
			m.err = err
			return m, nil
		}

		m.err = nil
		m.pending = req
		m.view = ConfirmView
		return m, nil
	}

	m.err = nil
	return m, m.form.update(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = FormView
		return m, nil
	case "y":
		m.view = BuildView
		return m, m.startBuild()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = HomeView
		m.form = newBuildForm()
		m.result = nil
		m.err = nil
		return m, m.fetchHome()
	}
	return m, nil
}

func (m *Model) fetchHome() tea.Cmd {
	return func() tea.Msg {
		user, err := m.builder.CurrentUser(m.ctx, m.sessionID)
		if err != nil {
			return homeFetchedMsg{err: err}
		}
		if user == nil {
			return homeFetchedMsg{err: fmt.Errorf("not logged in, run 'artistmix login' first")}
		}

		playlists, err := m.builder.UserPlaylists(m.ctx, m.sessionID)
		return homeFetchedMsg{user: user, playlists: playlists, err: err}
	}
}

func (m *Model) startBuild() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		result, err := m.builder.Build(m.ctx, m.sessionID, m.pending, m.progressChan)
		m.result = result
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return buildCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return buildCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderHome() string {
	helpKeys := []key.Binding{m.keys.create, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderForm() string {
	title := styles.title.Render("New Playlist")

	fields := ""
	for i, input := range m.form.inputs {
		fields += fmt.Sprintf("%s\n%s\n\n", fieldLabels[i], input.View())
	}
	visibility := fmt.Sprintf("Visibility: %s\n", shared.VisibilityString(m.form.public))

	helpKeys := []key.Binding{m.keys.next, m.keys.toggle, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n%s", title, fields, visibility, helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Create '%s'?", m.pending.Name))
	info := fmt.Sprintf("\nArtists: %d\nVisibility: %s\n", len(m.pending.Artists), shared.VisibilityString(m.pending.Public))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderBuild() string {
	title := styles.title.Render("Building Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.ResolveArtists:
		phase = fmt.Sprintf("Resolving artists (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.FetchTracks:
		phase = fmt.Sprintf("Collecting top tracks (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.UploadCover:
		phase = "Uploading cover image..."
	case tasks.AttachTracks:
		phase = "Attaching tracks..."
	default:
		phase = "Working..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Build failed: %v\n\nPress r to start over, q to quit", m.err))
	}

	if m.result == nil || m.result.Playlist == nil {
		return styles.err.Render("No result available\n\nPress r to start over, q to quit")
	}

	title := styles.ok.Render("✓ Playlist Created!")
	info := fmt.Sprintf(
		"\nPlaylist: %s\nTracks: %d\nURL: %s",
		m.result.Playlist.Name,
		m.result.TrackCount,
		m.result.Playlist.ExternalURL,
	)

	if m.result.CoverUploaded {
		info += "\nCover: uploaded"
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
