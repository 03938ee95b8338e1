package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	apperrors "monex/internal/errors"
	"monex/internal/services"
)

type signupCmd struct {
	env *Env

	firstName string
	lastName  string
	email     string
	password  string
	balance   string
	start     string
}

func (*signupCmd) Name() string     { return "signup" }
func (*signupCmd) Synopsis() string { return "create the local user and sign in" }
func (*signupCmd) Usage() string {
	return `monex signup -first <name> -email <email> -balance <amount> [-last <name>] [-password <password>] [-start YYYY-MM-DD]

  Creates the local user, replacing any previous one, and signs them in.
`
}

func (p *signupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.firstName, "first", "", "First name.")
	f.StringVar(&p.lastName, "last", "", "Last name.")
	f.StringVar(&p.email, "email", "", "Email address.")
	f.StringVar(&p.password, "password", "", "Password, when AUTH_MODE=password.")
	f.StringVar(&p.balance, "balance", "0", "Monthly starting balance.")
	f.StringVar(&p.start, "start", "", "Balance start date (defaults to today).")
}

func (p *signupCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	balance, err := decimal.NewFromString(strings.TrimSpace(p.balance))
	if err != nil {
		fmt.Fprintf(p.env.Err, "Error: invalid balance %q\n", p.balance)
		return subcommands.ExitUsageError
	}
	var start time.Time
	if p.start != "" {
		start, err = time.ParseInLocation("2006-01-02", p.start, time.Local)
		if err != nil {
			fmt.Fprintf(p.env.Err, "Error: invalid start date %q\n", p.start)
			return subcommands.ExitUsageError
		}
	}

	a, err := p.env.Open()
	if err != nil {
		return p.env.fail(err)
	}
	sess, err := a.Sessions.Signup(services.SignupInput{
		FirstName:           p.firstName,
		LastName:            p.lastName,
		Email:               p.email,
		Password:            p.password,
		MonthlyStartBalance: balance,
		BalanceStartDate:    start,
	})
	if err != nil {
		return p.env.fail(err)
	}

	fmt.Fprintf(p.env.Out, "Signed up and signed in as %s.\n", sess.Email)
	return subcommands.ExitSuccess
}

type loginCmd struct {
	env *Env

	email    string
	password string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "sign in as the stored user" }
func (*loginCmd) Usage() string {
	return `monex login -email <email> [-password <password>]
`
}

func (p *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.email, "email", "", "Email address of the stored user.")
	f.StringVar(&p.password, "password", "", "Password, when AUTH_MODE=password.")
}

func (p *loginCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.email == "" {
		fmt.Fprintln(p.env.Err, "Error: -email is required")
		return subcommands.ExitUsageError
	}

	a, err := p.env.Open()
	if err != nil {
		return p.env.fail(err)
	}
	sess, err := a.Sessions.Login(services.LoginInput{Email: p.email, Password: p.password})
	if err != nil {
		return p.env.fail(err)
	}

	fmt.Fprintf(p.env.Out, "Signed in as %s.\n", sess.Email)
	return subcommands.ExitSuccess
}

type logoutCmd struct {
	env *Env
}

func (*logoutCmd) Name() string             { return "logout" }
func (*logoutCmd) Synopsis() string         { return "save everything and sign out" }
func (*logoutCmd) Usage() string            { return "monex logout\n" }
func (*logoutCmd) SetFlags(*flag.FlagSet) {}

func (p *logoutCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := p.env.Open()
	if err != nil {
		return p.env.fail(err)
	}
	if err := a.Sessions.Logout(); err != nil {
		if apperrors.IsCode(err, apperrors.ErrNotSignedIn.Code) {
			fmt.Fprintln(p.env.Out, "Already signed out.")
			return subcommands.ExitSuccess
		}
		return p.env.fail(err)
	}

	fmt.Fprintln(p.env.Out, "Signed out.")
	return subcommands.ExitSuccess
}
