package commands

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/leapstack-labs/leapquery/internal/cli/output"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
	"github.com/spf13/cobra"
)

// BuildInfo is stamped into the binary at link time.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"build_date"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the LeapQuery version, build metadata and the SQL dialects compiled in.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := NewCommandContext(cmd).Renderer
			dialects := dialect.List()

			if r.Mode() == output.ModeJSON {
				return r.JSON(struct {
					BuildInfo
					Go       string   `json:"go"`
					Dialects []string `json:"dialects"`
				}{info, runtime.Version(), dialects})
			}

			w := r.Out()
			_, _ = fmt.Fprintf(w, "LeapQuery v%s\n", info.Version)
			_, _ = fmt.Fprintln(w, "JPQL query builder and multi-dialect SQL renderer")
			_, _ = fmt.Fprintf(w, "commit %s, built %s, %s\n", info.Commit, info.Date, runtime.Version())
			_, _ = fmt.Fprintf(w, "dialects: %s\n", strings.Join(dialects, ", "))
			return nil
		},
	}
}
