package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/document"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Write the layout document to a file",
		Long: `Write the stored layout document to a file. If path is a directory, or is
omitted, the file is named dashboard-config-<date>.json inside it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			ed, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			written, err := document.ExportFile(path, ed.Set(), time.Now())
			if err != nil {
				return err
			}
			printSuccess("Exported layout")
			printFile(written)
			return nil
		},
	}
}

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Replace the layout with a document from a file",
		Long: `Replace the stored layout with the document in file. Widgets that overlap
or are too small are dropped or repaired and reported. A malformed document is
rejected and the stored layout is left unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ed, err := c.session(ctx)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			report, err := ed.Import(f)
			if err != nil {
				printError("Import rejected, the stored layout is unchanged")
				printLoadProblems(err)
				return err
			}
			printReport(report)
			if err := c.commit(ctx, ed); err != nil {
				return err
			}
			printSuccess("Imported %s", args[0])
			if len(report.Warnings) > 0 {
				printDetail("%d widget(s) dropped or repaired", len(report.Warnings))
			}
			return nil
		},
	}
}
