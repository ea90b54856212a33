package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	server_config "github.com/carson-networks/deadline-server/internal/config"
	"github.com/carson-networks/deadline-server/internal/storage"
)

func main() {
	app := &cli.App{
		Name:  "db_migrations",
		Usage: "apply or roll back the deadline-server schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "source",
				Value: "file://migrations",
				Usage: "migration source URL",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "apply all pending migrations",
				Action: up,
			},
			{
				Name:  "down",
				Usage: "roll back migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
				},
				Action: down,
			},
			{
				Name:   "version",
				Usage:  "print the current schema version",
				Action: version,
			},
		},
		DefaultCommand: "up",
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("db_migrations")
	}
}

func newMigrate(c *cli.Context) (*migrate.Migrate, error) {
	env, err := server_config.ProcessEnvironmentVariables()
	if err != nil {
		return nil, fmt.Errorf("ProcessEnvironmentVariables: %w", err)
	}

	db, err := sql.Open("postgres", storage.ConnectionString(env))
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres.WithInstance: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(c.String("source"), "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("migrate.NewWithDatabaseInstance: %w", err)
	}
	return m, nil
}

func currentVersion(m *migrate.Migrate) (uint, bool, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

func up(c *cli.Context) error {
	m, err := newMigrate(c)
	if err != nil {
		return err
	}
	defer m.Close()

	preMigrationVersion, _, err := currentVersion(m)
	if err != nil {
		return fmt.Errorf("m.Version.preMigrationVersion: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("m.Up: %w", err)
	}

	postMigrationVersion, _, err := currentVersion(m)
	if err != nil {
		return fmt.Errorf("m.Version.postMigrationVersion: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"preMigrationVersion":  preMigrationVersion,
		"postMigrationVersion": postMigrationVersion,
	}).Info("Migration status")
	return nil
}

func down(c *cli.Context) error {
	m, err := newMigrate(c)
	if err != nil {
		return err
	}
	defer m.Close()

	steps := c.Int("steps")
	if steps <= 0 {
		return errors.New("--steps must be positive")
	}
	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("m.Steps: %w", err)
	}

	v, _, err := currentVersion(m)
	if err != nil {
		return fmt.Errorf("m.Version: %w", err)
	}
	logrus.WithField("version", v).Info("Rolled back")
	return nil
}

func version(c *cli.Context) error {
	m, err := newMigrate(c)
	if err != nil {
		return err
	}
	defer m.Close()

	v, dirty, err := currentVersion(m)
	if err != nil {
		return fmt.Errorf("m.Version: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"version": v,
		"dirty":   dirty,
	}).Info("Schema version")
	return nil
}
