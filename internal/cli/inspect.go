/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitrgoliveira/go-ghostbyte"
	"github.com/gitrgoliveira/go-ghostbyte/internal/link"
)

func (a *app) newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show the unauthenticated header of an envelope",
		Long: `Print what can be read from an envelope without the password. The
stored file name is not authenticated and may have been altered.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := ghostbyte.ReadEnvelopeFile(args[0], a.cfg.MaxSize)
			if err != nil {
				return err
			}
			env, err := ghostbyte.Inspect(data)
			if err != nil {
				return err
			}

			w := a.out
			fmt.Fprintf(w, "File:        %s\n", args[0])
			fmt.Fprintf(w, "Stored name: %q\n", env.Filename)
			fmt.Fprintf(w, "Saved as:    %s\n", ghostbyte.SafeFilename(env.Filename))
			fmt.Fprintf(w, "Salt:        %s\n", hex.EncodeToString(env.Salt))
			fmt.Fprintf(w, "IV:          %s\n", hex.EncodeToString(env.Nonce))
			if n := env.PlaintextLen(); n >= 0 {
				fmt.Fprintf(w, "Plaintext:   %s\n", link.HumanSize(int64(n)))
			}
			fmt.Fprintf(w, "Envelope:    %s\n", link.HumanSize(int64(len(data))))
			fmt.Fprintf(w, "SHA-256:     %s\n", ghostbyte.ChecksumHex(data))
			return nil
		},
	}
}
