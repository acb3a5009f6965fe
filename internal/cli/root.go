package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/buildinfo"
)

// Execute runs the dashgrid CLI with args and returns an error if the
// command fails. Logs go to logOut at info level, or debug level with
// --verbose.
//
// Example:
//
//	func main() {
//	    if err := cli.Execute(ctx, os.Stderr, os.Args[1:]); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context, logOut io.Writer, args []string) error {
	root := New(logOut, LogInfo).RootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// versionCommand prints the build information.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", appName, buildinfo.String())
			return err
		},
	}
}
