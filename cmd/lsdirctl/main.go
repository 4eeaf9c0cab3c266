// Package main implements lsdirctl, the command-line front end of lsdir.
package main

import (
	"context"
	"os"

	"github.com/awsl-project/lsdir/internal/version"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "lsdirctl",
		Short: "List directory entries from the command line or over MCP",
		Long: `lsdirctl drives the same list_files command the lsdir desktop
app exposes to its front end. "ls" prints entry names; "mcp" serves
list_files as a Model Context Protocol tool over stdio.`,
		SilenceUsage: true,
	}
	root.AddCommand(newLsCmd(), newMCPCmd())

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version.Info()),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}
