package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mwojcik/artistmix/internal/tasks"
)

const (
	fieldName = iota
	fieldDescription
	fieldArtists
	fieldImage
	fieldCount
)

var fieldLabels = [fieldCount]string{"Name", "Description", "Artists", "Cover image"}

// buildForm collects playlist details ahead of a build.
type buildForm struct {
	inputs  []textinput.Model
	focused int
	public  bool
}

func newBuildForm() buildForm {
	inputs := make([]textinput.Model, fieldCount)

	name := textinput.New()
	name.Placeholder = "Playlist name"
	name.CharLimit = 30
	name.Focus()
	inputs[fieldName] = name

	description := textinput.New()
	description.Placeholder = "Description (optional)"
	description.CharLimit = 200
	inputs[fieldDescription] = description

	artists := textinput.New()
	artists.Placeholder = "Artists, comma separated"
	inputs[fieldArtists] = artists

	image := textinput.New()
	image.Placeholder = "Cover image path (optional)"
	inputs[fieldImage] = image

	return buildForm{inputs: inputs}
}

func (f *buildForm) focus(i int) {
	f.inputs[f.focused].Blur()
	f.focused = (i + fieldCount) % fieldCount
	f.inputs[f.focused].Focus()
}

func (f *buildForm) focusNext() { f.focus(f.focused + 1) }
func (f *buildForm) focusPrev() { f.focus(f.focused - 1) }

func (f *buildForm) onLastField() bool {
	return f.focused == fieldCount-1
}

func (f *buildForm) update(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, fieldCount)
	for i := range f.inputs {
		f.inputs[i], cmds[i] = f.inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}

// request assembles the build input from the form fields. The cover image
// path is returned separately so the caller can load the bytes.
func (f *buildForm) request() (tasks.BuildRequest, string) {
	var artists []string
	for _, part := range strings.Split(f.inputs[fieldArtists].Value(), ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			artists = append(artists, trimmed)
		}
	}

	req := tasks.BuildRequest{
		Name:        strings.TrimSpace(f.inputs[fieldName].Value()),
		Description: strings.TrimSpace(f.inputs[fieldDescription].Value()),
		Public:      f.public,
		Artists:     artists,
	}

	return req, strings.TrimSpace(f.inputs[fieldImage].Value())
}
