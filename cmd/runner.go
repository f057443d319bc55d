package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mwojcik/artistmix/internal/services"
	"github.com/mwojcik/artistmix/internal/shared"
	"github.com/mwojcik/artistmix/internal/tasks"
	"github.com/urfave/cli/v3"
)

// cliSession identifies the single local credential record used by CLI commands.
const cliSession = "cli"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	store      services.CredentialStore
	tokens     *services.TokenManager
	spotify    *services.SpotifyClient
	builder    *tasks.PlaylistBuilder
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Store      services.CredentialStore
	Tokens     *services.TokenManager
	Spotify    *services.SpotifyClient
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	var builder *tasks.PlaylistBuilder
	if opts.Spotify != nil && opts.Tokens != nil {
		builder = tasks.NewPlaylistBuilder(opts.Spotify, opts.Tokens)
	}

	return &Runner{
		config:     opts.Config,
		store:      opts.Store,
		tokens:     opts.Tokens,
		spotify:    opts.Spotify,
		builder:    builder,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, loginCommand, logoutCommand, whoamiCommand, playlistsCommand, createCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the Runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// requireBuilder guards commands that need a fully configured Spotify stack.
func (r *Runner) requireBuilder() (*tasks.PlaylistBuilder, error) {
	if r.builder == nil {
		return nil, fmt.Errorf("%w: Spotify credentials not configured, run 'artistmix setup' and fill in config.toml", shared.ErrServiceUnavailable)
	}
	return r.builder, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
