/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitrgoliveira/go-ghostbyte/internal/link"
)

func (a *app) newShareCommand() *cobra.Command {
	var (
		qr     bool
		qrFile string
		qrSize int
	)
	cmd := &cobra.Command{
		Use:   "share URL",
		Short: "Print the share message and link for an uploaded envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := link.NewValidator(a.cfg.DownloadDomains()...).ValidateDownloadURL(args[0])
			if err != nil {
				return err
			}
			downloadURL := u.String()
			shareURL := link.ShareURL(a.cfg.DecryptPageURL, downloadURL)

			share := link.Share{DownloadURL: downloadURL, DecryptPage: a.cfg.DecryptPageURL}
			fmt.Fprint(a.out, share.Message())
			fmt.Fprintf(a.out, "\nShare link: %s\n", shareURL)

			if qr {
				s, err := link.QRTerminal(shareURL)
				if err != nil {
					return err
				}
				fmt.Fprint(a.out, s)
			}
			if qrFile != "" {
				if err := link.QRFile(shareURL, qrSize, qrFile); err != nil {
					return err
				}
				a.logger.Info().Str("path", qrFile).Msg("QR code written")
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&qr, "qr", false, "print a QR code of the share link")
	f.StringVar(&qrFile, "qr-file", "", "write the QR code as a PNG to this path")
	f.IntVar(&qrSize, "qr-size", link.DefaultQRSize, "PNG edge length in pixels")
	return cmd
}
