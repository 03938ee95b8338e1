package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type exportCmd struct {
	env *Env

	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "dump the signed-in user's stored records as JSON" }
func (*exportCmd) Usage() string {
	return `monex export [-o <file>]

  Writes the user record and the budgets, miscellaneous budget and assets
  partitions exactly as stored, keyed by storage key.
`
}

func (p *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.output, "o", "", "Write to this file instead of standard output.")
}

func (p *exportCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := p.env.signedIn()
	if err != nil {
		return p.env.fail(err)
	}
	sess, _ := a.Sessions.Current()

	records, err := a.Repo.Export(sess.UserID)
	if err != nil {
		return p.env.fail(err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return p.env.fail(err)
	}
	data = append(data, '\n')

	if p.output == "" {
		_, _ = p.env.Out.Write(data)
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(p.output, data, 0o600); err != nil {
		return p.env.fail(err)
	}
	fmt.Fprintf(p.env.Out, "Exported %d records to %s.\n", len(records), p.output)
	return subcommands.ExitSuccess
}
