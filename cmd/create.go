package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/mwojcik/artistmix/internal/formatter"
	"github.com/mwojcik/artistmix/internal/shared"
	"github.com/mwojcik/artistmix/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Playlists lists the logged-in user's playlists.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	builder, err := r.requireBuilder()
	if err != nil {
		return err
	}

	r.logger.Info("listing playlists")

	playlists, err := builder.UserPlaylists(ctx, cliSession)
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return fmt.Errorf("%w: run 'artistmix login' first", shared.ErrNotAuthenticated)
		}
		return err
	}

	if useJSON {
		return r.writeJSON(playlists, pretty)
	}

	return r.writePlain("%s", formatter.FormatPlaylists(playlists))
}

// Create builds a playlist from the given artists' top tracks.
func (r *Runner) Create(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	imagePath := cmd.String("image")
	summaryPath := cmd.String("summary")

	builder, err := r.requireBuilder()
	if err != nil {
		return err
	}

	req := tasks.BuildRequest{
		Name:        cmd.String("name"),
		Description: cmd.String("description"),
		Public:      cmd.Bool("public"),
		Artists:     cmd.StringSlice("artist"),
	}

	if imagePath != "" {
		image, err := formatter.ReadImage(imagePath)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		req.Image = image
	}

	if err := req.Validate(); err != nil {
		return err
	}

	r.logger.Info("building playlist", "name", req.Name, "artists", len(req.Artists))

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
		close(done)
	}()

	result, err := builder.Build(ctx, cliSession, req, progress)
	close(progress)
	<-done

	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return fmt.Errorf("%w: run 'artistmix login' first", shared.ErrNotAuthenticated)
		}
		return err
	}

	if summaryPath != "" {
		written, err := formatter.WriteMarkdownSummary(result, summaryPath)
		if err != nil {
			r.logger.Warn("failed to write summary", "error", err)
		} else {
			r.logger.Info("summary written", "path", written)
		}
	}

	if useJSON {
		return r.writeJSON(result, pretty)
	}

	r.writePlainln("✓ Playlist created")
	return r.writePlain("%s", formatter.FormatBuildResult(result))
}
