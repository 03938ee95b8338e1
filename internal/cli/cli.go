// Package cli implements the monex command line on top of the same services
// as the HTTP API.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"monex/internal/app"
	apperrors "monex/internal/errors"
	"monex/internal/validator"
)

// Env is what every command runs against. Open is called lazily so that
// help and flag listing never touch storage; the caller owns the returned
// App and closes it after the command finishes.
type Env struct {
	Open func() (*app.App, error)
	Out  io.Writer
	Err  io.Writer
}

// Register adds every monex command to c.
func Register(c *subcommands.Commander, env *Env) {
	c.Register(&signupCmd{env: env}, "session")
	c.Register(&loginCmd{env: env}, "session")
	c.Register(&logoutCmd{env: env}, "session")

	c.Register(&summaryCmd{env: env}, "views")
	c.Register(&budgetsCmd{env: env}, "views")
	c.Register(&assetsCmd{env: env}, "views")
	c.Register(&auditCmd{env: env}, "views")

	c.Register(&exportCmd{env: env}, "data")
}

// fail prints err and returns the exit status for it.
func (e *Env) fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(e.Err, "Error:", err)
	return subcommands.ExitFailure
}

// signedIn opens the app and requires an active session.
func (e *Env) signedIn() (*app.App, error) {
	a, err := e.Open()
	if err != nil {
		return nil, err
	}
	if _, ok := a.Sessions.Current(); !ok {
		return nil, apperrors.WithMessage(apperrors.ErrNotSignedIn, "not signed in, run 'monex login' first")
	}
	return a, nil
}

// currency picks the display currency, preferring an explicit flag value.
func currency(flagValue string, a *app.App) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(flagValue))
	if code == "" {
		code = a.Config.Currency
	}
	if !validator.IsISO4217(code) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown currency %q", code))
	}
	return code, nil
}

// printMarkdown renders md for the terminal, or writes it untouched when raw
// is set or the renderer is unavailable.
func (e *Env) printMarkdown(md string, raw bool) {
	if !raw {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
		if err == nil {
			if out, err := r.Render(md); err == nil {
				fmt.Fprint(e.Out, out)
				return
			}
		}
	}
	fmt.Fprint(e.Out, md)
}
