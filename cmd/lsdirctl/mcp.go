package main

import (
	"context"
	"fmt"

	"github.com/awsl-project/lsdir/internal/bridge"
	"github.com/awsl-project/lsdir/internal/version"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

type (
	// ListFilesInput contains parameters for listing a directory.
	ListFilesInput struct {
		Dir string `json:"dir" jsonschema:"Directory whose immediate entries are listed"`
	}

	// ListFilesOutput contains the entry names of a directory.
	ListFilesOutput struct {
		Entries []string `json:"entries"`
	}
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve list_files as an MCP tool over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server := newMCPServer()
			if err := server.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
				return fmt.Errorf("error running server: %w", err)
			}
			return nil
		},
	}
}

func newMCPServer() *mcp.Server {
	registry := bridge.NewRegistry()
	commands := bridge.NewCommands(registry, bridge.Deps{})

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "lsdir",
		Version: version.Version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        bridge.CommandListFiles,
		Description: "List the names of the immediate entries (files and subdirectories) of a directory. Not recursive, not sorted.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input ListFilesInput) (*mcp.CallToolResult, ListFilesOutput, error) {
		names, err := commands.ListFiles(input.Dir)
		if err != nil {
			return &mcp.CallToolResult{IsError: true}, ListFilesOutput{}, err
		}
		return nil, ListFilesOutput{Entries: names}, nil
	})

	return server
}
