// Command migrate is the CLI wrapper around the migration engine: it
// creates new migration files from templates, runs pending migrations,
// rolls back applied ones and reports ledger status. Database connection
// parameters come from the environment (DBHOST, DBPORT, DBUSER, DBPASS,
// DBNAME, SSLMODE, DBSEARCHPATH).
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	migrate "github.com/crestfall/migrate"
	"github.com/crestfall/migrate/e"
	"github.com/crestfall/migrate/migration"
	"github.com/crestfall/migrate/scaffold"
	"github.com/crestfall/migrate/sql"
)

// CLI is the command line interface of migrate
type CLI struct {
	Create  CreateCmd  `kong:"cmd,help='Create a new migration file from a template.'"`
	Up      UpCmd      `kong:"cmd,help='Run all pending migrations.'"`
	Down    DownCmd    `kong:"cmd,help='Roll back an applied migration, the most recent by default.'"`
	Status  StatusCmd  `kong:"cmd,help='List known migrations and whether they are applied.'"`
	Version VersionCmd `kong:"cmd,help='Output version and exit.'"`

	LogLevel string `kong:"default='info',enum='debug,info,warn,error',help='Set the logging level.'"`
}

// CreateCmd scaffolds a new migration file; it never touches the database
type CreateCmd struct {
	Name     string            `kong:"arg,required,help='Snake_case migration name, e.g. add_users_table.'"`
	Dir      string            `kong:"default='db/migrations',help='Directory to write the migration file to.'"`
	Template string            `kong:"default='migration',help='Template to render.'"`
	Package  string            `kong:"default='migrations',help='Package name for the generated file.'"`
	Set      map[string]string `kong:"help='Additional template substitutions (token=value).'"`
}

// Run creates the migration file
func (c *CreateCmd) Run() (err error) {
	path, err := scaffold.Create(&scaffold.CreateParam{
		Name:          c.Name,
		Dir:           c.Dir,
		Package:       c.Package,
		Template:      c.Template,
		Substitutions: c.Set,
	})
	if err != nil {
		return err
	}

	log.Info().Msgf("created %s", path)

	return nil
}

// UpCmd runs all pending migrations
type UpCmd struct{}

// Run applies the pending set in order under the ledger advisory lock
func (c *UpCmd) Run() (err error) {
	en, l, err := connect()
	if err != nil {
		return err
	}

	if err := l.Lock(); err != nil {
		return err
	}
	defer func() {
		_ = l.Unlock()
	}()

	ran, err := en.RunPending()
	if err != nil {
		return err
	}

	if len(ran) == 0 {
		log.Info().Msg("no pending migrations")
	} else {
		log.Info().Msgf("ran %d migration(s)", len(ran))
	}

	return nil
}

// DownCmd rolls back an applied migration
type DownCmd struct {
	Target string `kong:"help='Identifier to roll back. Defaults to the most recently applied.'"`
}

// Run reverts the target migration under the ledger advisory lock
func (c *DownCmd) Run() (err error) {
	en, l, err := connect()
	if err != nil {
		return err
	}

	if err := l.Lock(); err != nil {
		return err
	}
	defer func() {
		_ = l.Unlock()
	}()

	target := c.Target
	if target == "" {
		le, err := l.Latest()
		if err != nil {
			if e.ContainsError(err, e.MsgLedgerNone) {
				log.Info().Msg("ledger is empty, nothing to roll back")
				return nil
			}
			return err
		}
		target = le.Migration
	}

	return en.Rollback(target)
}

// StatusCmd lists every known migration with its ledger state
type StatusCmd struct{}

// Run prints the status table
func (c *StatusCmd) Run() (err error) {
	en, l, err := connect()
	if err != nil {
		return err
	}

	identifiers, err := en.Scripts().ListAll()
	if err != nil {
		return err
	}

	entries, err := l.Entries()
	if err != nil {
		return err
	}

	appliedOn := make(map[string]string, len(entries))
	for _, le := range entries {
		appliedOn[le.Migration] = le.CreatedOn
	}

	data := make([][]string, 0, len(identifiers)+len(entries))
	for _, identifier := range identifiers {
		if on, ok := appliedOn[identifier]; ok {
			data = append(data, []string{identifier, "applied", on})
			delete(appliedOn, identifier)
		} else {
			data = append(data, []string{identifier, "pending", ""})
		}
	}

	// Ledger entries with no matching script: applied on another build or
	// the script file was removed
	for _, le := range entries {
		if on, ok := appliedOn[le.Migration]; ok {
			data = append(data, []string{le.Migration, "applied (no script)", on})
		}
	}

	return renderTable([]string{"MIGRATION", "STATE", "APPLIED ON"},
		data, os.Stdout)
}

// VersionCmd outputs the build identity
type VersionCmd struct{}

// Run prints the version
func (c *VersionCmd) Run() (err error) {
	sha, build := migrate.Version()
	fmt.Printf("migrate %s (build %s)\n", sha, build)

	return nil
}

// connect opens the DB from the environment and initializes the engine,
// creating the ledger table on first use
func connect() (en *migration.Engine, l *migration.SQLLedger, err error) {
	db, err := sql.NewPostgresConn(nil)
	if err != nil {
		return nil, nil, err
	}

	l = migration.NewSQLLedger(db)

	en, err = migration.NewEngine(&migration.Config{
		DB:     db,
		Ledger: l,
	})
	if err != nil {
		return nil, nil, err
	}

	return en, l, nil
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if isatty.IsTerminal(os.Stdout.Fd()) {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out: colorable.NewColorable(os.Stdout),
		})
	}
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("migrate"),
		kong.Description("Tracks and applies ordered database migrations."),
		kong.UsageOnError(),
		kong.DefaultEnvars("MIGRATE"),
	)

	setupLogging(cli.LogLevel)

	if err := kctx.Run(); err != nil {
		log.Error().Msg(err.Error())
		os.Exit(1)
	}
}
