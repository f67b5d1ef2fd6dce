// Package cli wires the scanner into a cobra command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/result-scanner/internal/common"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "result-scanner",
		Short: "Find a roll number across a batch of result documents",
		Long: `result-scanner reads PDF (and plain-text) result sheets page by page and
reports every line containing a roll number, optionally filtered by name and
annotated with a date-of-birth check. Matches are exported to an XLSX workbook.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newScanCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("result-scanner %s\n", Version)
		},
	}
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", describe(err))
		return ExitError
	}
	return ExitOK
}

// describe turns fatal scan errors into a message a person can act on.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidCriterion):
		return "a roll number is required (--primary): " + err.Error()
	case errors.Is(err, common.ErrEmptyInput):
		return "no documents to scan; pass PDF files or directories"
	default:
		return err.Error()
	}
}
