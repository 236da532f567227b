package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/starford/things/internal/apperr"
	"github.com/starford/things/internal/inbox"
	"github.com/starford/things/internal/ui"
)

func inboxCommand() *cli.Command {
	return &cli.Command{
		Name:  "inbox",
		Usage: "Manage quick-add inbox lists",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "Show pending inbox entries",
				ArgsUsage: "[type]",
				Action:    inboxList,
			},
			{
				Name:      "add",
				Usage:     "Append an entry to an inbox list",
				ArgsUsage: "<type> <category> <title> [note]",
				Action:    inboxAdd,
			},
			{
				Name:      "remove",
				Usage:     "Remove an entry from an inbox list",
				ArgsUsage: "<type> <category> <title>",
				Action:    inboxRemove,
			},
			{
				Name:      "promote",
				Usage:     "Turn inbox entries into structured entries",
				ArgsUsage: "<type> [title...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "Promote every entry of the type"},
					&cli.BoolFlag{Name: "overwrite", Usage: "Replace existing structured files"},
				},
				Action: inboxPromote,
			},
		},
	}
}

func inboxList(ctx context.Context, cmd *cli.Command) error {
	_, svc, _, err := setup(cmd)
	if err != nil {
		return err
	}
	pending, err := svc.Inbox.Pending(ctx, cmd.Args().First())
	if err != nil {
		return err
	}
	ui.PrintPending(cmd.Root().Writer, pending)
	return nil
}

func inboxAdd(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() < 3 {
		return fmt.Errorf("usage: inbox add <type> <category> <title> [note]")
	}
	_, svc, _, err := setup(cmd)
	if err != nil {
		return err
	}
	filename, err := svc.Inbox.Add(ctx, inbox.AddRequest{
		Type:     args.Get(0),
		Category: args.Get(1),
		Title:    args.Get(2),
		Note:     args.Get(3),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, ui.Success(fmt.Sprintf("Added %s to %s", args.Get(2), ui.Accent.Render(filename))))
	return nil
}

func inboxRemove(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() < 3 {
		return fmt.Errorf("usage: inbox remove <type> <category> <title>")
	}
	_, svc, _, err := setup(cmd)
	if err != nil {
		return err
	}
	filename, ok := svc.Inbox.FileFor(args.Get(0))
	if !ok {
		return fmt.Errorf("no inbox file for %q: %w", args.Get(0), apperr.ErrNotFound)
	}
	if err := svc.Inbox.Remove(ctx, filename, args.Get(1), args.Get(2)); err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, ui.Success(fmt.Sprintf("Removed %s from %s", args.Get(2), ui.Accent.Render(filename))))
	return nil
}

func inboxPromote(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() < 1 {
		return fmt.Errorf("usage: inbox promote <type> [title...]")
	}
	titles := args.Slice()[1:]
	if len(titles) == 0 && !cmd.Bool("all") {
		return fmt.Errorf("name the titles to promote or pass --all")
	}
	_, svc, _, err := setup(cmd)
	if err != nil {
		return err
	}
	results, err := svc.Inbox.Promote(ctx, args.Get(0), titles, cmd.Bool("overwrite"))
	if err != nil {
		return err
	}
	if failed := ui.PrintPromoted(cmd.Root().Writer, results); failed > 0 {
		return fmt.Errorf("%d of %d entries not promoted", failed, len(results))
	}
	return nil
}
