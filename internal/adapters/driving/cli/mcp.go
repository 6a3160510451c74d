package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elemental-reasoning/gdevutils/gcal"
	"github.com/elemental-reasoning/gdevutils/gdrive"
	"github.com/elemental-reasoning/gdevutils/gsheets"
	"github.com/elemental-reasoning/gdevutils/internal/adapters/driving/mcp"
	"github.com/elemental-reasoning/gdevutils/internal/logger"
	"github.com/elemental-reasoning/gdevutils/session"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server",
	Long: `Expose calendar, drive, and sheets operations as MCP tools.

By default the server speaks over stdio, which is what MCP clients
expect when they spawn the process. Pass --port to serve over HTTP
instead.

Examples:
  gdevutils mcp serve
  gdevutils mcp serve --port 8321`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP over stdio or HTTP",
	RunE:  runMCPServe,
}

var mcpPort int

func init() {
	mcpServeCmd.Flags().IntVar(&mcpPort, "port", 0, "Serve over HTTP on this port instead of stdio")

	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	sess, err := buildSession(ctx, session.ReadWriteScopes...)
	if err != nil {
		return err
	}

	calClient, err := gcal.New(ctx, sess)
	if err != nil {
		return err
	}
	drvClient, err := gdrive.New(ctx, sess)
	if err != nil {
		return err
	}
	sheets, err := gsheets.New(ctx, sess)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Calendar: calClient,
		Drive:    drvClient,
		Sheets:   &mcp.SheetsService{Service: sheets},
	})
	if err != nil {
		return err
	}

	if mcpPort > 0 {
		addr := fmt.Sprintf(":%d", mcpPort)
		logger.Info("serving MCP over HTTP on %s", addr)
		return server.RunHTTP(ctx, addr)
	}
	return server.Run(ctx)
}
