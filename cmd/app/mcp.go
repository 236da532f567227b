package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/starford/things/internal"
	"github.com/starford/things/internal/mcpserver"
)

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the catalog to MCP clients over stdio",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, svc, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			db, err := internal.OpenIndex(ctx, cfg, svc, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			srv := mcpserver.New(svc.Resolver, svc.Entries, svc.Inbox, db)
			if err := srv.ServeStdio(); err != nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		},
	}
}
