package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/internal/repository"
)

var errNotesOffline = errors.New("notes can only be changed while connected to a server")

func notesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Keep freeform notes",
	}
	cmd.AddCommand(notesListCmd(opts))
	cmd.AddCommand(notesAddCmd(opts))
	cmd.AddCommand(notesEditCmd(opts))
	cmd.AddCommand(notesRemoveCmd(opts))
	cmd.AddCommand(notesMoveCmd(opts))
	return cmd
}

// findNote resolves a 1-based position from 'notes list' or a note ID.
func findNote(notes []models.Note, ref string) (models.Note, error) {
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(notes) {
		return notes[n-1], nil
	}
	for _, note := range notes {
		if note.ID == ref {
			return note, nil
		}
	}
	return models.Note{}, fmt.Errorf("no note %q", ref)
}

func (a *app) remoteNotes(ctx context.Context) (string, []models.Note, error) {
	owner, err := a.owner()
	if err != nil {
		return "", nil, err
	}
	notes, src := a.repo.LoadNotes(ctx, owner)
	if src != repository.SourceRemote {
		return "", nil, errNotesOffline
	}
	return owner, notes, nil
}

func notesListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notes",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			owner, err := a.owner()
			if err != nil {
				return err
			}
			notes, src := a.repo.LoadNotes(ctx, owner)
			if len(notes) == 0 {
				a.printf("No notes yet.\n")
				return nil
			}
			if src == repository.SourceDraft {
				a.printf("(offline copy)\n")
			}
			for i, n := range notes {
				a.printf("%d. %s\n", i+1, n.Title)
				if n.Content != "" {
					a.printf("   %s\n", n.Content)
				}
			}
			return nil
		}),
	}
}

func notesAddCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "add TITLE [CONTENT...]",
		Short: "Add a note at the top",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			owner, err := a.owner()
			if err != nil {
				return err
			}
			if !a.repo.Online() {
				return errNotesOffline
			}
			note, ok := a.repo.AddNote(ctx, owner, args[0], joinArgs(args[1:]))
			if !ok {
				return errors.New("note was not saved")
			}
			a.printf("Added %q\n", note.Title)
			return nil
		}),
	}
}

func notesEditCmd(opts *options) *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:   "edit NOTE",
		Short: "Change a note's title or content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(ctx context.Context, a *app, args []string) error {
				_, notes, err := a.remoteNotes(ctx)
				if err != nil {
					return err
				}
				note, err := findNote(notes, args[0])
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("title") {
					note.Title = title
				}
				if cmd.Flags().Changed("content") {
					note.Content = content
				}
				if !a.repo.UpdateNote(ctx, &note) {
					return errors.New("note was not saved")
				}
				a.printf("Saved %q\n", note.Title)
				return nil
			})(cmd, args)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&content, "content", "", "new content")
	return cmd
}

func notesRemoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "rm NOTE",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			owner, notes, err := a.remoteNotes(ctx)
			if err != nil {
				return err
			}
			note, err := findNote(notes, args[0])
			if err != nil {
				return err
			}
			if !a.repo.DeleteNote(ctx, owner, note.ID) {
				return errors.New("note was not deleted")
			}
			a.printf("Deleted %q\n", note.Title)
			return nil
		}),
	}
}

func notesMoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "move NOTE up|down",
		Short:     "Move a note one place up or down",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"up", "down"},
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			var dir repository.Direction
			switch args[1] {
			case "up":
				dir = repository.Up
			case "down":
				dir = repository.Down
			default:
				return fmt.Errorf("direction must be up or down, got %q", args[1])
			}

			owner, notes, err := a.remoteNotes(ctx)
			if err != nil {
				return err
			}
			note, err := findNote(notes, args[0])
			if err != nil {
				return err
			}
			if !a.repo.MoveNote(ctx, owner, note.ID, dir) {
				return fmt.Errorf("cannot move %q %s", note.Title, args[1])
			}
			a.printf("Moved %q %s\n", note.Title, args[1])
			return nil
		}),
	}
}
