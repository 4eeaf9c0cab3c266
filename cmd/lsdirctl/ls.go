package main

import (
	"context"
	"fmt"
	"io"

	"github.com/awsl-project/lsdir/internal/bridge"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxParallelListings bounds how many directories are read at once
const maxParallelListings = 4

func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls [dir...]",
		Short:   "Print the names of the entries of each directory",
		Example: "lsdirctl ls ~/Downloads /tmp",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			registry := bridge.NewRegistry()
			bridge.NewCommands(registry, bridge.Deps{})
			return runLs(cmd.Context(), registry, cmd.OutOrStdout(), args)
		},
	}
}

type listing struct {
	names []string
	err   error
}

// runLs lists every dir concurrently and prints them in argument order.
// A failing directory is reported and makes the command fail, but does not
// stop the others.
func runLs(ctx context.Context, registry *bridge.Registry, out io.Writer, dirs []string) error {
	results := make([]listing, len(dirs))

	var g errgroup.Group
	g.SetLimit(maxParallelListings)
	for i, dir := range dirs {
		g.Go(func() error {
			args, err := bridge.Marshal(bridge.ListFilesArgs{Dir: dir})
			if err != nil {
				results[i].err = err
				return nil
			}
			res, err := registry.Invoke(ctx, bridge.CommandListFiles, args)
			if err != nil {
				results[i].err = err
				return nil
			}
			results[i].names = res.([]string)
			return nil
		})
	}
	g.Wait()

	failed := 0
	for i, dir := range dirs {
		if len(dirs) > 1 {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s:\n", dir)
		}
		if results[i].err != nil {
			failed++
			fmt.Fprintf(out, "lsdirctl: %s: %v\n", dir, results[i].err)
			continue
		}
		for _, name := range results[i].names {
			fmt.Fprintln(out, name)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d directories could not be listed", failed, len(dirs))
	}
	return nil
}
