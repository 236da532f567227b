package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/things/internal"
	"github.com/starford/things/internal/content"
	"github.com/starford/things/internal/contentservice"
	"github.com/starford/things/internal/slugs"
	"github.com/starford/things/internal/ui"
)

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Create a structured entry",
		ArgsUsage: "<type>[:slug] [title] [tag,tag...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "overwrite", Usage: "Replace an existing file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			req, err := parseNewArgs(cmd.Args().Slice())
			if err != nil {
				return err
			}
			req.Overwrite = cmd.Bool("overwrite")

			_, svc, _, err := setup(cmd)
			if err != nil {
				return err
			}
			res, err := svc.Entries.Create(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.Root().Writer, ui.Success("Created: "+ui.Accent.Render(res.Path)))
			return nil
		},
	}
}

// parseNewArgs reads "<type>[:slug] [title] [tags]". A missing title is
// derived from the slug.
func parseNewArgs(args []string) (contentservice.CreateRequest, error) {
	var req contentservice.CreateRequest
	if len(args) == 0 {
		return req, fmt.Errorf("usage: new <type>[:slug] [title] [tags]")
	}
	req.Type, req.Slug, _ = strings.Cut(args[0], ":")
	if len(args) > 1 {
		req.Title = args[1]
	}
	if len(args) > 2 {
		req.Tags = splitTags(args[2])
	}
	if req.Title == "" {
		req.Title = slugs.ToTitle(req.Slug)
	}
	if req.Title == "" {
		return req, fmt.Errorf("a title or a slug is required")
	}
	return req, nil
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func thinkCommand() *cli.Command {
	return &cli.Command{
		Name:      "think",
		Usage:     "Record a timestamped thought on an entry",
		ArgsUsage: "<type> <slug> <text>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "extra", Aliases: []string{"e"}, Usage: "Extra data as key=value (repeatable)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() < 3 {
				return fmt.Errorf("usage: think <type> <slug> <text>")
			}
			extra, err := parseExtra(cmd.StringSlice("extra"))
			if err != nil {
				return err
			}

			_, svc, _, err := setup(cmd)
			if err != nil {
				return err
			}
			text := strings.Join(args.Slice()[2:], " ")
			ts, err := svc.Entries.AddThought(ctx, args.Get(0), args.Get(1), text, extra)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.Root().Writer, ui.Success(fmt.Sprintf("Thought added to %s/%s %s", args.Get(0), args.Get(1), ui.Hint(ts))))
			return nil
		},
	}
}

func parseExtra(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	extra := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("extra %q: expected key=value", p)
		}
		extra[k] = strings.TrimSpace(v)
	}
	return extra, nil
}

func itemsCommand() *cli.Command {
	return &cli.Command{
		Name:      "items",
		Usage:     "List the merged catalog of a content type",
		ArgsUsage: "<type>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "view", Value: "grouped", Usage: "grouped, recent or merged"},
			&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of text"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			typ := cmd.Args().First()
			if typ == "" {
				return fmt.Errorf("usage: items <type>")
			}
			_, svc, _, err := setup(cmd)
			if err != nil {
				return err
			}
			if !svc.Resolver.HasType(typ) {
				return fmt.Errorf("unknown content type %q", typ)
			}
			items, err := svc.Resolver.Items(ctx, typ)
			if err != nil {
				return err
			}

			w := cmd.Root().Writer
			switch view := cmd.String("view"); view {
			case "merged":
				if cmd.Bool("json") {
					return printJSON(cmd, items)
				}
				ui.PrintItems(w, items)
			case "recent":
				items = content.SortByRecency(items)
				if cmd.Bool("json") {
					return printJSON(cmd, items)
				}
				ui.PrintItems(w, items)
			case "grouped":
				groups := content.GroupByCategory(items)
				if cmd.Bool("json") {
					return printJSON(cmd, groups)
				}
				ui.PrintGroups(w, groups)
			default:
				return fmt.Errorf("unknown view %q", view)
			}
			return nil
		},
	}
}

func thoughtsCommand() *cli.Command {
	return &cli.Command{
		Name:      "thoughts",
		Usage:     "List thoughts newest first",
		ArgsUsage: "[type[/parent]]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, svc, _, err := setup(cmd)
			if err != nil {
				return err
			}
			thoughts, err := svc.Resolver.Thoughts(ctx, cmd.Args().First())
			if err != nil {
				return err
			}
			ui.PrintThoughts(cmd.Root().Writer, thoughts)
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the catalog index",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum number of results"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			query := strings.Join(cmd.Args().Slice(), " ")
			if strings.TrimSpace(query) == "" {
				return fmt.Errorf("usage: search <query>")
			}
			cfg, svc, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			db, err := internal.OpenIndex(ctx, cfg, svc, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			results, err := db.Search(query, int(cmd.Int("limit")))
			if err != nil {
				return err
			}
			ui.PrintSearch(cmd.Root().Writer, results)
			return nil
		},
	}
}

func printJSON(cmd *cli.Command, v any) error {
	enc := json.NewEncoder(cmd.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
