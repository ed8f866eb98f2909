// Package cli provides the command-line interface for publiccode-issueopener.
package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/italia/publiccode-issueopener/internal/app"
	"github.com/italia/publiccode-issueopener/internal/domain"
	"github.com/italia/publiccode-issueopener/internal/infra/config"
	"github.com/italia/publiccode-issueopener/internal/usecase"
	"github.com/spf13/cobra"
)

// newLoaderFunc creates the configuration loader, allowing it to be replaced in tests.
var newLoaderFunc = config.NewLoader

// NewRootCommand creates the root command.
// Ports of c are bound from the configuration before any command runs,
// unless they already are (e.g. in tests).
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	var global struct {
		ConfigPath string
		LogLevel   string
	}
	var opts struct {
		Lang   string
		Since  int
		DryRun bool
	}

	root := &cobra.Command{
		Use:   domain.AppName,
		Short: "Open GitHub issues for invalid publiccode.yml files",
		Long: `publiccode-issueopener reads the Developers Italia catalog logs and opens
an issue on every GitHub repository whose publiccode.yml failed validation.

An issue the bot already opened is updated when the errors change and left
alone otherwise. Repositories hosted elsewhere are skipped.

Settings are read from ` + "`$XDG_CONFIG_HOME/" + domain.AppName + "/" + domain.ConfigFileName + "`" + `
(see "config template") and from the API_BASEURL, GITHUB_USERNAME and
BOT_GITHUB_TOKEN environment variables.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// The template is shown even when the current configuration is broken
			if cmd.Name() == "template" || c.Ready() {
				return nil
			}

			loader := newLoaderFunc(global.ConfigPath)
			cfg, err := loader.Load()
			if err != nil {
				return err
			}
			if global.LogLevel != "" {
				cfg.Log.Level = global.LogLevel
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			for _, w := range cfg.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}

			return c.Configure(cmd.Context(), cfg, loader.Path(), cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := usecase.RunCheckInput{
				Lang:   c.Config.Check.Lang,
				Days:   c.Config.Check.SinceDays,
				DryRun: c.Config.Check.DryRun || opts.DryRun,
			}
			if cmd.Flags().Changed("since") {
				if opts.Since < 0 {
					return fmt.Errorf("--since must be >= 0, got %d", opts.Since)
				}
				in.Days = opts.Since
			}
			if cmd.Flags().Changed("lang") {
				lang, err := domain.ParseLang(opts.Lang)
				if err != nil {
					return err
				}
				in.Lang = lang
			}

			// Setup signal handling for graceful shutdown
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			w := cmd.OutOrStdout()
			if in.DryRun {
				_, _ = fmt.Fprintln(w, "Dry run: no issue will be created or updated.")
			}

			uc := c.RunCheckUseCase(w)
			summary, err := uc.Execute(ctx, in)
			if summary != nil {
				printSummary(w, summary)
			}
			return err
		},
	}

	root.PersistentFlags().StringVar(&global.ConfigPath, "config", "", "Configuration file (default $XDG_CONFIG_HOME/"+domain.AppName+"/"+domain.ConfigFileName+")")
	root.PersistentFlags().StringVar(&global.LogLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.Flags().IntVar(&opts.Since, "since", domain.DefaultSinceDays, "Analyze logs of the last N days")
	root.Flags().BoolVarP(&opts.DryRun, "dry-run", "n", false, "Don't create or update issues, just print")
	root.Flags().StringVar(&opts.Lang, "lang", string(domain.LangEN), fmt.Sprintf("Language of created/updated issues %v", domain.AllLangs()))

	root.AddCommand(
		newStatusCommand(c),
		newConfigCommand(c),
	)

	return root
}

// printSummary prints the counters of a run.
func printSummary(w io.Writer, s *domain.Summary) {
	styles := NewStyles(w)

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, styles.Header.Render("==== Summary ===="))
	_, _ = fmt.Fprintf(w, "➕ Created issues:\t%d\n", s.Created)
	_, _ = fmt.Fprintf(w, "🔄 Updated issues:\t%d\n", s.Updated)
	_, _ = fmt.Fprintf(w, "== Untouched issues:\t%d\n", s.Untouched)
	_, _ = fmt.Fprintf(w, "🚫 Skipped repos:\t%d\n", s.Skipped)
	if s.Failed > 0 {
		_, _ = fmt.Fprintln(w, styles.Error.Render(fmt.Sprintf("❗ Failed requests:\t%d", s.Failed)))
	}
}
