// Command oasdoc generates and maintains API reference documentation from
// OpenAPI specifications: markdown generation gated by LLM quality scoring,
// Mintlify docs.json navigation updates, and in-place spec enhancement.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dshills/oasdoc/internal/config"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// exitErr carries a numeric exit code through the cobra error path.
// Codes: 2 flag/config, 3 input/parse, 4 generative API, 5 internal.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// codeError returns an exitErr for the given code.
func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// logLevelValue validates --log-level at parse time, so a typo surfaces as a
// flag error instead of silently running at the default level.
type logLevelValue string

var _ pflag.Value = (*logLevelValue)(nil)

func (v *logLevelValue) String() string { return string(*v) }
func (v *logLevelValue) Type() string   { return "level" }

func (v *logLevelValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "debug", "info", "warn", "warning", "error":
		*v = logLevelValue(strings.ToLower(s))
		return nil
	}
	return fmt.Errorf("must be one of debug, info, warn, error")
}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "WARN: reading .env:", err)
	}
	cfg := config.LoadFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		// Unknown flags and other cobra-level problems are config errors.
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}

// newRootCmd constructs the command tree. Exposed to tests so the CLI can be
// exercised without spawning a process.
func newRootCmd(cfg *config.Config) *cobra.Command {
	logLevel := logLevelValue(cfg.LogLevel)
	root := &cobra.Command{
		Use:           "oasdoc",
		Short:         "Generate and maintain API documentation from OpenAPI specs",
		Long:          "oasdoc turns OpenAPI specifications into reference documentation,\nvalidated and refined through an LLM quality loop, and keeps the\nMintlify navigation and the specs themselves in shape.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := (&config.Config{LogLevel: string(logLevel)}).SlogLevel()
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
			for _, w := range cfg.Warnings {
				logger.Warn(w)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().Var(&logLevel, "log-level", "Log level: debug, info, warn, or error")

	root.AddCommand(newGenerateCmd(cfg))
	root.AddCommand(newTocCmd(cfg))
	root.AddCommand(newEnhanceCmd(cfg))
	return root
}
