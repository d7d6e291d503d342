package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jmgilman/go/gitversion"
	"github.com/spf13/cobra"
)

var (
	versionClean    = color.New(color.FgGreen).SprintFunc()
	versionDistance = color.New(color.FgYellow).SprintFunc()
	versionDirty    = color.New(color.FgRed).SprintFunc()
)

func (c *CLI) newDetailsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "details",
		Short: "Print every field of the computed version details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}

			summary := gitversion.Summarize(svc.Details())
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(summary); err != nil {
					return err
				}
			} else {
				writeDetails(cmd.OutOrStdout(), summary, !color.NoColor)
			}

			return c.printTimings(cmd.ErrOrStderr(), svc)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the details as JSON")
	return cmd
}

func writeDetails(w io.Writer, s gitversion.Summary, colorize bool) {
	version := s.Version
	if colorize {
		switch {
		case strings.HasSuffix(s.Version, gitversion.DirtySuffix):
			version = versionDirty(version)
		case s.IsCleanTag:
			version = versionClean(version)
		default:
			version = versionDistance(version)
		}
	}

	rows := []struct{ key, value string }{
		{"version", version},
		{"branch", orNone(s.BranchName)},
		{"hash", s.GitHash},
		{"hash (full)", s.GitHashFull},
		{"clean tag", fmt.Sprint(s.IsCleanTag)},
		{"distance", fmt.Sprint(s.CommitDistance)},
		{"last tag", orNone(s.LastTag)},
	}
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%-12s %s\n", row.key+":", row.value)
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
