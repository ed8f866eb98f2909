package cli

import (
	"fmt"
	"time"

	"github.com/italia/publiccode-issueopener/internal/app"
	"github.com/italia/publiccode-issueopener/internal/usecase"
	"github.com/spf13/cobra"
)

// newStatusCommand creates the status command.
func newStatusCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Open bool
	}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "List the issues opened by the bot",
		Long: `List every issue opened by the bot account, most recently updated first.

Each line shows the issue state, its last update and its URL, separated by tabs.

Examples:
  # List all issues
  publiccode-issueopener status

  # List open issues only
  publiccode-issueopener status --open`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.ShowStatusUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ShowStatusInput{
				OnlyOpen: opts.Open,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			styles := NewStyles(w)
			for _, issue := range out.Issues {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n",
					styles.State(issue.State),
					issue.UpdatedAt.UTC().Format(time.RFC3339),
					issue.HTMLURL)
			}

			_, _ = fmt.Fprintln(cmd.ErrOrStderr(),
				styles.Header.Render(fmt.Sprintf("%d open, %d closed", out.Open, out.Closed)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Open, "open", false, "Only list open issues")

	return cmd
}
