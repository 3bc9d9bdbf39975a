/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package cli implements the gbyte command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gitrgoliveira/go-ghostbyte"
	"github.com/gitrgoliveira/go-ghostbyte/internal/config"
	"github.com/gitrgoliveira/go-ghostbyte/internal/logging"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configFile    string
	envFile       string
	passwordStdin bool

	cfg    *config.Config
	logger zerolog.Logger
}

// NewRootCommand builds the gbyte command tree reading from in and writing
// results to out and diagnostics to errOut.
func NewRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut, logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "gbyte",
		Short: "Password-protected file sharing with .gbyte envelopes",
		Long: `gbyte encrypts files into .gbyte envelopes that the GhostByte web
page can open, uploads them, and prints a link to share.

The password never leaves this machine. Send it to the recipient over a
different channel than the link.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default: ./ghostbyte.yaml or the user config dir)")
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file to load if present")
	pf.BoolVar(&a.passwordStdin, "password-stdin", false, "read the password from the first line of stdin")
	pf.String("api-url", "", "upload API base URL for the http backend")
	pf.String("backend", "", "upload backend: http, s3, gcs or minio")
	pf.String("size-limit", "", `largest file handled, e.g. "250MB" or "2GiB"`)
	pf.Duration("timeout", 0, "overall time limit per command")
	pf.String("log-level", "", "trace, debug, info, warn, error or disabled")
	pf.String("log-format", "", "console or json")

	root.AddCommand(
		a.newEncryptCommand(),
		a.newDecryptCommand(),
		a.newInspectCommand(),
		a.newGenpassCommand(),
		a.newShareCommand(),
		newVersionCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.Options{
		ConfigFile: a.configFile,
		EnvFile:    a.envFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, a.errOut)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// context bounds a command by the configured timeout.
func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, a.cfg.Timeout)
}

func (a *app) httpClient() *http.Client {
	return &http.Client{Timeout: a.cfg.Timeout}
}

func (a *app) codecOptions() ([]ghostbyte.Option, error) {
	maxSize, err := ghostbyte.WithMaxSize(a.cfg.MaxSize)
	if err != nil {
		return nil, err
	}
	return []ghostbyte.Option{maxSize}, nil
}

// Execute runs gbyte with the process arguments and returns the exit code.
func Execute(ctx context.Context) int {
	root := NewRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", userMessage(err))
		return 1
	}
	return 0
}

// userMessage hides codec internals but keeps usage, network and config
// errors readable.
func userMessage(err error) string {
	for _, target := range []error{
		ghostbyte.ErrDecryptionFailed,
		ghostbyte.ErrMalformedEnvelope,
		ghostbyte.ErrFilenameTooLong,
		ghostbyte.ErrTooLarge,
		ghostbyte.ErrKeyDerivation,
		ghostbyte.ErrContextCanceled,
		fs.ErrPermission,
		fs.ErrNotExist,
	} {
		if errors.Is(err, target) {
			return ghostbyte.SanitizeError(err).Error()
		}
	}
	return err.Error()
}
