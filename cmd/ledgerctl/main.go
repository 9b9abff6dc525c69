// ledgerctl is the operator CLI: schema migrations, demo data, and the
// import and period-close operations without going through HTTP.
package main

import (
	"github.com/alecthomas/kong"
)

var cli struct {
	Globals

	Migrate     migrateCmd     `cmd:"" help:"Manage the database schema."`
	Seed        seedCmd        `cmd:"" help:"Create a demo user, entity, categories and rules."`
	Import      importCmd      `cmd:"" help:"Import a bank CSV export for an entity."`
	ClosePeriod closePeriodCmd `cmd:"" name:"close-period" help:"Close a tax period for an entity."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("ledgerctl"),
		kong.Description("Operator tooling for sole-ledger."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
