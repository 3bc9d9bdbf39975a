/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitrgoliveira/go-ghostbyte/internal/password"
)

func (a *app) newGenpassCommand() *cobra.Command {
	var (
		length int
		count  int
		check  bool
	)
	cmd := &cobra.Command{
		Use:   "genpass",
		Short: "Generate strong passwords, or check one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if check {
				pw, err := a.readPassword(false)
				if err != nil {
					return err
				}
				for _, req := range password.Check(pw) {
					mark := "✗"
					if req.Met {
						mark = "✓"
					}
					fmt.Fprintf(a.out, "%s %s\n", mark, req.Label)
				}
				return password.Validate(pw)
			}

			for range max(count, 1) {
				pw, err := password.Generate(length)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, pw)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVarP(&length, "length", "l", password.DefaultLength, "password length")
	f.IntVarP(&count, "count", "n", 1, "number of passwords")
	f.BoolVar(&check, "check", false, "check a password against the strength policy instead")
	return cmd
}
