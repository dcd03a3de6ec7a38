package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/bokelai/bookapi/pkg/config"
	"github.com/bokelai/bookapi/pkg/database"
	"github.com/bokelai/bookapi/pkg/migrations"
	_ "github.com/joho/godotenv/autoload"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	app := &cli.App{
		Name:     "migrations",
		Usage:    "manage the books database schema",
		Commands: commands(db),
	}
	runErr := app.Run(os.Args)
	if err := db.Close(); err != nil {
		log.Err(err).Error("database close error")
	}
	if runErr != nil {
		log.Err(runErr).Fatal("migrations failed")
	}
}

func commands(db *bun.DB) []*cli.Command {
	migrator := migrations.NewMigrator(db)

	return []*cli.Command{
		{
			Name:  "init",
			Usage: "create the migration bookkeeping tables",
			Action: func(c *cli.Context) error {
				return errors.WithStack(migrator.Init(c.Context))
			},
		},
		{
			Name:  "migrate",
			Usage: "apply every pending migration",
			Action: func(c *cli.Context) error {
				group, err := migrations.BringUpToDate(c.Context, db)
				if err != nil {
					return err
				}
				if group.ID == 0 {
					fmt.Println("No pending migrations")
					return nil
				}
				fmt.Printf("Applied group %d: %s\n", group.ID, group.Migrations.String())
				return nil
			},
		},
		{
			Name:  "rollback",
			Usage: "roll back the most recent migration group",
			Action: func(c *cli.Context) error {
				group, err := migrator.Rollback(c.Context)
				if err != nil {
					return errors.WithStack(err)
				}
				if group.ID == 0 {
					fmt.Println("Nothing to roll back")
					return nil
				}
				fmt.Printf("Rolled back group %d: %s\n", group.ID, group.Migrations.String())
				return nil
			},
		},
		{
			Name:  "status",
			Usage: "show applied and pending migrations",
			Action: func(c *cli.Context) error {
				ms, err := migrator.MigrationsWithStatus(c.Context)
				if err != nil {
					return errors.WithStack(err)
				}
				for _, m := range ms {
					state := "pending"
					if m.IsApplied() {
						state = fmt.Sprintf("applied (group %d)", m.GroupID)
					}
					fmt.Printf("%-50s %s\n", m.Name, state)
				}
				return nil
			},
		},
		{
			Name:      "create",
			Usage:     "scaffold a new Go migration",
			ArgsUsage: "<words describing the change>",
			Action: func(c *cli.Context) error {
				if c.NArg() == 0 {
					return errors.New("a migration name is required")
				}
				name := strings.Join(c.Args().Slice(), "_")
				mf, err := migrator.CreateGoMigration(c.Context, name, migrate.WithGoTemplate(migrationTemplate))
				if err != nil {
					return errors.WithStack(err)
				}
				fmt.Printf("Created %s\n", mf.Path)
				return nil
			},
		},
	}
}

const migrationTemplate = `package %s

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, "")
		return errors.WithStack(err)
	}

	down := func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, "")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
`
