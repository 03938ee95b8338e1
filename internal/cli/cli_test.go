package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monex/internal/app"
	"monex/internal/config"
	"monex/internal/logger"
	"monex/internal/repository"
	"monex/internal/testutil"
)

func init() {
	logger.UseNop()
}

type testEnv struct {
	*Env
	app *app.App
	out *bytes.Buffer
	err *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	a, err := app.New(&config.Config{
		StorageDriver: config.StorageMemory,
		AuthMode:      config.AuthModeEmail,
		Currency:      "INR",
	})
	require.NoError(t, err)
	t.Cleanup(a.Close)

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &testEnv{
		Env: &Env{
			Open: func() (*app.App, error) { return a, nil },
			Out:  out,
			Err:  errOut,
		},
		app: a,
		out: out,
		err: errOut,
	}
}

// run parses args for cmd and executes it, resetting the output buffers.
func (e *testEnv) run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	e.out.Reset()
	e.err.Reset()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse(args))
	return cmd.Execute(context.Background(), fs)
}

func (e *testEnv) signup(t *testing.T) {
	t.Helper()
	status := e.run(t, &signupCmd{env: e.Env}, "-first", "Asha", "-last", "Rao", "-email", "asha@example.com", "-balance", "10000")
	require.Equal(t, subcommands.ExitSuccess, status, e.err.String())
}

func TestSessionCommands(t *testing.T) {
	e := newTestEnv(t)

	e.signup(t)
	assert.Contains(t, e.out.String(), "asha@example.com")

	assert.Equal(t, subcommands.ExitSuccess, e.run(t, &logoutCmd{env: e.Env}))
	assert.Equal(t, "Signed out.\n", e.out.String())

	assert.Equal(t, subcommands.ExitSuccess, e.run(t, &logoutCmd{env: e.Env}))
	assert.Equal(t, "Already signed out.\n", e.out.String())

	assert.Equal(t, subcommands.ExitUsageError, e.run(t, &loginCmd{env: e.Env}))

	assert.Equal(t, subcommands.ExitFailure, e.run(t, &loginCmd{env: e.Env}, "-email", "someone@example.com"))
	assert.Contains(t, e.err.String(), "Invalid email or password")

	assert.Equal(t, subcommands.ExitSuccess, e.run(t, &loginCmd{env: e.Env}, "-email", "ASHA@example.com"))
	_, ok := e.app.Sessions.Current()
	assert.True(t, ok)
}

func TestSignupRejectsBadFlags(t *testing.T) {
	e := newTestEnv(t)

	assert.Equal(t, subcommands.ExitUsageError, e.run(t, &signupCmd{env: e.Env}, "-first", "Asha", "-email", "a@b.co", "-balance", "lots"))
	assert.Equal(t, subcommands.ExitUsageError, e.run(t, &signupCmd{env: e.Env}, "-first", "Asha", "-email", "a@b.co", "-start", "15/03/2024"))
	assert.Equal(t, subcommands.ExitFailure, e.run(t, &signupCmd{env: e.Env}, "-email", "a@b.co"))
}

func TestViewsRequireSession(t *testing.T) {
	e := newTestEnv(t)

	for _, cmd := range []subcommands.Command{
		&summaryCmd{env: e.Env},
		&budgetsCmd{env: e.Env},
		&assetsCmd{env: e.Env},
		&auditCmd{env: e.Env},
		&exportCmd{env: e.Env},
	} {
		t.Run(cmd.Name(), func(t *testing.T) {
			assert.Equal(t, subcommands.ExitFailure, e.run(t, cmd))
			assert.Contains(t, e.err.String(), "monex login")
		})
	}
}

func TestSummaryCommand(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t)

	_, err := e.app.Finance.AddAsset(testutil.NewTestLoan("100000", "1000"))
	require.NoError(t, err)

	require.Equal(t, subcommands.ExitSuccess, e.run(t, &summaryCmd{env: e.Env}, "-raw", "-currency", "usd"))
	out := e.out.String()
	assert.Contains(t, out, "# Financial report for Asha Rao")
	assert.Contains(t, out, "$100,000.00")
	assert.Contains(t, out, "## Net worth")

	assert.Equal(t, subcommands.ExitFailure, e.run(t, &summaryCmd{env: e.Env}, "-currency", "ABC"))
	assert.Contains(t, e.err.String(), "unknown currency")

	require.Equal(t, subcommands.ExitSuccess, e.run(t, &summaryCmd{env: e.Env}))
	assert.Contains(t, e.out.String(), "Asha")
}

func TestBudgetsCommand(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t)

	rent := testutil.NewTestBudget("4000")
	rent.Name = "Rent"
	created, err := e.app.Finance.AddBudget(rent)
	require.NoError(t, err)
	expense := testutil.NewTestExpense("4500")
	expense.Title = "March rent"
	_, err = e.app.Finance.AddExpense(expense, created.ID)
	require.NoError(t, err)

	require.Equal(t, subcommands.ExitSuccess, e.run(t, &budgetsCmd{env: e.Env}, "-raw", "-currency", "USD", "-expenses"))
	out := e.out.String()
	assert.Contains(t, out, "| Rent | $4,000.00 | $4,500.00 |")
	assert.Contains(t, out, "(over)")
	assert.Contains(t, out, "| Miscellaneous | - |")
	assert.Contains(t, out, "March rent: $4,500.00")
}

func TestAssetsCommand(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t)

	stock := testutil.NewTestStock(10, "150")
	stock.Name = "Acme"
	_, err := e.app.Finance.AddAsset(stock)
	require.NoError(t, err)

	require.Equal(t, subcommands.ExitSuccess, e.run(t, &assetsCmd{env: e.Env}, "-raw", "-currency", "USD"))
	out := e.out.String()
	assert.Contains(t, out, "## Investments ($1,500.00)")
	assert.Contains(t, out, "| Acme | Stocks |")
	assert.Contains(t, out, "**Net worth: $1,500.00**")

	require.Equal(t, subcommands.ExitSuccess, e.run(t, &assetsCmd{env: e.Env}, "-raw", "-category", "loans"))
	assert.Contains(t, e.out.String(), "## Loans")
	assert.NotContains(t, e.out.String(), "Acme")
	assert.NotContains(t, e.out.String(), "Net worth")

	assert.Equal(t, subcommands.ExitUsageError, e.run(t, &assetsCmd{env: e.Env}, "-category", "crypto"))
}

func TestAuditCommand(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t)

	_, err := e.app.Finance.AddBudget(testutil.NewTestBudget("100"))
	require.NoError(t, err)

	require.Equal(t, subcommands.ExitSuccess, e.run(t, &auditCmd{env: e.Env}, "-raw"))
	assert.Contains(t, e.out.String(), "| signup | user |")
	assert.Contains(t, e.out.String(), "| create | budget |")

	require.Equal(t, subcommands.ExitSuccess, e.run(t, &auditCmd{env: e.Env}, "-raw", "-n", "1"))
	assert.NotContains(t, e.out.String(), "signup")
}

func TestExportCommand(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t)

	_, err := e.app.Finance.AddBudget(testutil.NewTestBudget("100"))
	require.NoError(t, err)
	sess, _ := e.app.Sessions.Current()

	path := filepath.Join(t.TempDir(), "export.json")
	require.Equal(t, subcommands.ExitSuccess, e.run(t, &exportCmd{env: e.Env}, "-o", path))
	assert.Contains(t, e.out.String(), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var records map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Contains(t, records, repository.CurrentUserKey)
	assert.Contains(t, records, repository.BudgetsKey(sess.UserID))
	assert.Contains(t, records, repository.MiscBudgetKey(sess.UserID))

	require.Equal(t, subcommands.ExitSuccess, e.run(t, &exportCmd{env: e.Env}))
	assert.True(t, json.Valid(e.out.Bytes()))
}

func TestRegister(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t)

	fs := flag.NewFlagSet("monex", flag.ContinueOnError)
	commander := subcommands.NewCommander(fs, "monex")
	Register(commander, e.Env)

	require.NoError(t, fs.Parse([]string{"logout"}))
	assert.Equal(t, subcommands.ExitSuccess, commander.Execute(context.Background()))
	_, ok := e.app.Sessions.Current()
	assert.False(t, ok)
}
