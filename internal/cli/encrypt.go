/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gitrgoliveira/go-ghostbyte"
	"github.com/gitrgoliveira/go-ghostbyte/internal/core"
	"github.com/gitrgoliveira/go-ghostbyte/internal/link"
	"github.com/gitrgoliveira/go-ghostbyte/internal/password"
	"github.com/gitrgoliveira/go-ghostbyte/internal/transfer"
)

type encryptOptions struct {
	outDir    string
	upload    bool
	qr        bool
	jobs      int
	allowWeak bool
	generate  bool
}

func (a *app) newEncryptCommand() *cobra.Command {
	o := &encryptOptions{}
	cmd := &cobra.Command{
		Use:   "encrypt FILE...",
		Short: "Seal files into .gbyte envelopes",
		Long: `Seal each FILE into FILE.gbyte under one password. With --upload the
envelope is sent to the configured backend and a share message is printed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEncrypt(cmd, o, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.outDir, "out", "o", "", "directory for envelopes (default: next to each file)")
	f.BoolVarP(&o.upload, "upload", "u", false, "upload envelopes and print share links")
	f.BoolVar(&o.qr, "qr", false, "print a QR code of each share link")
	f.IntVarP(&o.jobs, "jobs", "j", runtime.NumCPU(), "files sealed in parallel")
	f.BoolVar(&o.allowWeak, "allow-weak", false, "accept a password that fails the strength policy")
	f.BoolVarP(&o.generate, "generate-password", "g", false, "generate a strong password and print it to stderr")
	return cmd
}

func (a *app) runEncrypt(cmd *cobra.Command, o *encryptOptions, files []string) error {
	pw, err := a.encryptionPassword(o)
	if err != nil {
		return err
	}

	opts, err := a.codecOptions()
	if err != nil {
		return err
	}
	enc, err := ghostbyte.NewEncryptor(pw, opts...)
	if err != nil {
		return err
	}
	defer enc.Destroy()

	ctx, cancel := a.context(cmd)
	defer cancel()

	var up transfer.Uploader
	if o.upload {
		up, err = transfer.NewUploader(ctx, a.cfg,
			transfer.WithLogger(a.logger),
			transfer.WithHTTPClient(a.httpClient()))
		if err != nil {
			return err
		}
		if c, ok := up.(io.Closer); ok {
			defer c.Close()
		}
	}

	var (
		mu     sync.Mutex
		result *multierror.Error
		g      errgroup.Group
	)
	g.SetLimit(max(o.jobs, 1))

	for _, src := range files {
		g.Go(func() error {
			msg, err := a.encryptOne(ctx, enc, up, o, src)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				a.logger.Debug().Err(err).Str("file", src).Msg("encrypt failed")
				result = multierror.Append(result, fmt.Errorf("%s: %s", src, userMessage(err)))
				return nil
			}
			fmt.Fprint(a.out, msg)
			return nil
		})
	}
	_ = g.Wait()

	return result.ErrorOrNil()
}

func (a *app) encryptionPassword(o *encryptOptions) (string, error) {
	if o.generate {
		pw, err := password.Generate(password.DefaultLength)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(a.errOut, "Generated password: %s\n", pw)
		return pw, nil
	}

	pw, err := a.readPassword(true)
	if err != nil {
		return "", err
	}
	if !o.allowWeak {
		if err := password.Validate(pw); err != nil {
			return "", fmt.Errorf("%w (use --allow-weak to override)", err)
		}
	}
	return pw, nil
}

// encryptOne seals src, optionally uploads the envelope, and returns the
// lines to print.
func (a *app) encryptOne(ctx context.Context, enc *core.Encryptor, up transfer.Uploader, o *encryptOptions, src string) (string, error) {
	dir := o.outDir
	if dir == "" {
		dir = filepath.Dir(src)
	}
	dst := filepath.Join(dir, filepath.Base(src)+ghostbyte.FileExtension)

	if err := enc.EncryptFile(ctx, src, dst); err != nil {
		return "", err
	}
	info, err := os.Stat(dst)
	if err != nil {
		return "", err
	}
	a.logger.Info().Str("file", src).Str("envelope", dst).Int64("bytes", info.Size()).Msg("sealed")

	msg := fmt.Sprintf("%s -> %s (%s)\n", src, dst, link.HumanSize(info.Size()))
	if up == nil {
		return msg, nil
	}

	envelope, err := os.ReadFile(dst)
	if err != nil {
		return "", err
	}
	res, err := up.Upload(ctx, envelope, filepath.Base(src))
	if err != nil {
		return "", err
	}

	share := link.Share{DownloadURL: res.DownloadURL, DecryptPage: a.cfg.DecryptPageURL}
	shareURL := link.ShareURL(a.cfg.DecryptPageURL, res.DownloadURL)
	msg += "\n" + share.Message() + "\nShare link: " + shareURL + "\n"
	if o.qr {
		qr, err := link.QRTerminal(shareURL)
		if err != nil {
			return "", err
		}
		msg += qr
	}
	return msg, nil
}
