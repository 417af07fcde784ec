// -- cmd/run.go --
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/probeworks/extflow/internal/browser"
	"github.com/probeworks/extflow/internal/config"
	"github.com/probeworks/extflow/internal/flow"
	"github.com/probeworks/extflow/internal/observability"
	"github.com/probeworks/extflow/internal/session"
	"github.com/probeworks/extflow/internal/webhook"
)

// newRunCmd builds the run subcommand, the main entry point of the tool.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run <flow>",
		Short: "Execute one named test flow against the extension",
		Long: `Execute one named test flow against the extension inside a persistent
browser profile. The profile directory survives the run so wallet state carries
over between invocations; delete the directory to start fresh.

Run "extflow flows" for the catalog and what each flow expects in --value.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindRunFlags(cmd)
		},
		RunE: runFlow,
	}

	runCmd.Flags().StringP("session", "s", "", "session (profile) directory name; a random one is generated when empty")
	runCmd.Flags().StringP("extension", "e", "", "path to an unpacked extension to copy into the session")
	runCmd.Flags().StringP("identifier", "i", config.DefaultExtensionIdentifier, "extension identifier for auto-locating a local install")
	runCmd.Flags().StringP("password", "p", "", "wallet password used by creation and unlock steps")
	runCmd.Flags().StringP("value", "v", "", "flow-specific value (see \"extflow flows\")")
	runCmd.Flags().DurationP("wait", "w", 0, "settle wait inserted after each browser action")
	runCmd.Flags().StringP("proxy", "x", "", "HTTP proxy for all browser traffic, e.g. http://127.0.0.1:8080")
	runCmd.Flags().Bool("headless", false, "run the browser headless (new headless mode)")
	runCmd.Flags().Bool("dev", false, "tag reported findings as development instead of production")
	runCmd.Flags().String("webhook-url", "", "collaborator endpoint findings are POSTed to")

	return runCmd
}

// bindRunFlags maps the run flags onto config keys. Viper only prefers a flag
// over the config file when the flag was actually set.
func bindRunFlags(cmd *cobra.Command) error {
	bindings := map[string]string{
		"session.name":           "session",
		"session.extension_path": "extension",
		"session.identifier":     "identifier",
		"flow.password":          "password",
		"flow.dev":               "dev",
		"browser.settle_wait":    "wait",
		"browser.proxy":          "proxy",
		"browser.headless":       "headless",
		"webhook.url":            "webhook-url",
	}
	for key, name := range bindings {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", name, err)
		}
	}
	return nil
}

func runFlow(cmd *cobra.Command, args []string) error {
	logger := observability.GetLogger()

	cfg, err := config.NewConfigFromViper(viper.GetViper())
	if err != nil {
		return err
	}

	name := flow.Name(args[0])
	value, _ := cmd.Flags().GetString("value")
	params, err := flow.NewParams(name, value, cfg.Flow.Password)
	if err != nil {
		return err
	}

	sess, err := session.Resolve(logger, session.Options{
		Name:          cfg.Session.Name,
		ExtensionPath: cfg.Session.ExtensionPath,
		Identifier:    cfg.Session.Identifier,
		Confirm:       session.ConfirmFunc(promptOverwrite),
	})
	if err != nil {
		return fmt.Errorf("session setup failed: %w", err)
	}
	logger.Info("Session ready",
		zap.String("dir", sess.Dir),
		zap.String("extension", sess.Descriptor.Name),
		zap.String("version", sess.Descriptor.Version),
		zap.Bool("fresh", sess.Fresh),
	)

	var hook *webhook.Client
	if cfg.Webhook.URL != "" {
		hook = webhook.New(logger, cfg.Webhook.URL, cfg.Webhook.PollInterval)
	}

	launch := func(ctx context.Context) (flow.Surface, error) {
		drv := browser.New(logger, cfg.Browser)
		if err := drv.Launch(ctx, sess); err != nil {
			return nil, err
		}
		return drv, nil
	}

	dispatcher := flow.NewDispatcher(logger, cfg.Flow, launch, hook)
	res := dispatcher.Run(cmd.Context(), name, params)

	// Findings were pushed mid-flow; confirm the collaborator actually
	// received something before reporting. Delivery problems are not fatal.
	if hook != nil && len(res.Findings) > 0 {
		if _, err := hook.Poll(cmd.Context(), cfg.Webhook.PollTimeout); err != nil {
			logger.Warn("Collaborator did not confirm receipt of findings", zap.Error(err))
		}
	}

	printResult(cmd, res)
	if res.Outcome != flow.OutcomeSucceeded {
		// Non-zero exit for scripting; the result was already printed.
		cmd.SilenceUsage = true
		return fmt.Errorf("flow %s %s", res.Flow, res.Outcome)
	}
	return nil
}

func printResult(cmd *cobra.Command, res flow.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "flow:    %s\n", res.Flow)
	fmt.Fprintf(out, "outcome: %s\n", res.Outcome)
	if res.Detail != "" {
		fmt.Fprintf(out, "detail:  %s\n", res.Detail)
	}
	for _, finding := range res.Findings {
		fmt.Fprintf(out, "finding: %s\n", finding)
	}
	if res.Err != nil {
		fmt.Fprintf(out, "error:   %v\n", res.Err)
	}
}

// promptOverwrite asks on stdin before replacing an already-populated
// session's extension payload. Any read failure counts as a decline.
func promptOverwrite(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
