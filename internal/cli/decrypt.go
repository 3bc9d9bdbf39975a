/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitrgoliveira/go-ghostbyte"
	"github.com/gitrgoliveira/go-ghostbyte/internal/core"
	"github.com/gitrgoliveira/go-ghostbyte/internal/link"
	"github.com/gitrgoliveira/go-ghostbyte/internal/transfer"
	"github.com/gitrgoliveira/go-ghostbyte/secure"
)

type decryptOptions struct {
	outDir string
	force  bool
}

func (a *app) newDecryptCommand() *cobra.Command {
	o := &decryptOptions{}
	cmd := &cobra.Command{
		Use:   "decrypt FILE|URL...",
		Short: "Open .gbyte envelopes from disk or a download link",
		Long: `Open each envelope and write the plaintext under its original file
name, reduced to a safe single path element. URLs must be http(s) links to a
.gbyte file on an allowed domain.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDecrypt(cmd, o, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.outDir, "out", "o", ".", "directory for decrypted files")
	f.BoolVarP(&o.force, "force", "f", false, "overwrite existing files")
	return cmd
}

func (a *app) runDecrypt(cmd *cobra.Command, o *decryptOptions, sources []string) error {
	for _, src := range sources {
		if !isURL(src) {
			if err := link.ValidateEnvelopePath(src); err != nil {
				return err
			}
		}
	}

	pw, err := a.readPassword(false)
	if err != nil {
		return err
	}
	opts, err := a.codecOptions()
	if err != nil {
		return err
	}
	dec, err := ghostbyte.NewDecryptor(pw, opts...)
	if err != nil {
		return err
	}
	defer dec.Destroy()

	ctx, cancel := a.context(cmd)
	defer cancel()

	dl := transfer.NewDownloader(link.NewValidator(a.cfg.DownloadDomains()...), a.cfg.MaxSize,
		transfer.WithLogger(a.logger),
		transfer.WithHTTPClient(a.httpClient()))

	for _, src := range sources {
		written, err := a.decryptOne(ctx, dec, dl, o, src)
		if err != nil {
			a.logger.Debug().Err(err).Str("source", src).Msg("decrypt failed")
			return fmt.Errorf("%s: %s", src, userMessage(err))
		}
		fmt.Fprintf(a.out, "%s -> %s\n", src, written)
	}
	return nil
}

func (a *app) decryptOne(ctx context.Context, dec *core.Decryptor, dl *transfer.Downloader, o *decryptOptions, src string) (string, error) {
	var (
		envelope []byte
		err      error
	)
	if isURL(src) {
		envelope, err = dl.Download(ctx, src)
	} else {
		envelope, err = ghostbyte.ReadEnvelopeFile(src, a.cfg.MaxSize)
	}
	if err != nil {
		return "", err
	}

	payload, err := dec.Decrypt(ctx, envelope)
	if err != nil {
		return "", err
	}
	defer secure.Zero(payload.Plaintext)

	if payload.OriginalFilename != ghostbyte.SafeFilename(payload.OriginalFilename) {
		a.logger.Warn().
			Str("stored", payload.OriginalFilename).
			Str("written", ghostbyte.SafeFilename(payload.OriginalFilename)).
			Msg("stored file name was sanitized")
	}
	return ghostbyte.WritePayload(o.outDir, payload, o.force)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
