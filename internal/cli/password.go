/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/gitrgoliveira/go-ghostbyte/internal/config"
)

// PasswordEnv supplies the password non-interactively.
const PasswordEnv = config.EnvPrefix + "_PASSWORD"

var errNoPassword = errors.New("no password given: use --password-stdin, set " + PasswordEnv + " or run in a terminal")

// readPassword takes the password from stdin, the environment or a terminal
// prompt, in that order. A prompt asks twice when confirm is set.
func (a *app) readPassword(confirm bool) (string, error) {
	if a.passwordStdin {
		line, err := bufio.NewReader(a.in).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read password from stdin: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	if pw, ok := os.LookupEnv(PasswordEnv); ok {
		return pw, nil
	}

	f, ok := a.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "", errNoPassword
	}

	pw, err := a.prompt(f, "Password: ")
	if err != nil {
		return "", err
	}
	if !confirm {
		return pw, nil
	}
	again, err := a.prompt(f, "Confirm password: ")
	if err != nil {
		return "", err
	}
	if pw != again {
		return "", errors.New("passwords do not match")
	}
	return pw, nil
}

func (a *app) prompt(f *os.File, label string) (string, error) {
	fmt.Fprint(a.errOut, label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(a.errOut)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
