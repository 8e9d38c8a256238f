package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/persistence"
)

func newApp(logger *zap.Logger) *cli.App {
	return &cli.App{
		Name:  "authctl",
		Usage: "Operational tasks for the auth service",
		Commands: []*cli.Command{
			checkDBCmd(logger),
			migrateCmd(logger),
			hashPasswordCmd(),
		},
	}
}

func checkDBCmd(logger *zap.Logger) *cli.Command {
	var timeout time.Duration
	return &cli.Command{
		Name:  "check-db",
		Usage: "Connect to the configured database and report whether it is reachable",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:        "timeout",
				Value:       10 * time.Second,
				Destination: &timeout,
			},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithTimeout(c.Context, timeout)
			defer cancel()

			pg, err := persistence.NewPostgres(ctx, config.LoadPostgres(), logger)
			if err != nil {
				fmt.Fprintf(c.App.Writer, "Connection failed: %v\n", err)
				return cli.Exit("", 1)
			}
			pg.Close()
			fmt.Fprintln(c.App.Writer, "Connection successful")
			return nil
		},
	}
}

func migrateCmd(logger *zap.Logger) *cli.Command {
	withPool := func(c *cli.Context, fn func(*persistence.Postgres) error) error {
		pg, err := persistence.NewPostgres(c.Context, config.LoadPostgres(), logger)
		if err != nil {
			return err
		}
		defer pg.Close()
		return fn(pg)
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply embedded schema migrations",
		Action: func(c *cli.Context) error {
			return withPool(c, func(pg *persistence.Postgres) error {
				return persistence.RunMigrations(c.Context, pg.PoolHandle(), logger)
			})
		},
		Subcommands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Print the current schema version",
				Action: func(c *cli.Context) error {
					return withPool(c, func(pg *persistence.Postgres) error {
						version, err := persistence.MigrationVersion(c.Context, pg.PoolHandle(), logger)
						if err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "schema version: %d\n", version)
						return nil
					})
				},
			},
		},
	}
}

func hashPasswordCmd() *cli.Command {
	var cost int
	return &cli.Command{
		Name:  "hash-password",
		Usage: "Print the bcrypt hash of a password read from stdin",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "cost",
				Value:       bcrypt.DefaultCost,
				Destination: &cost,
			},
		},
		Action: func(c *cli.Context) error {
			if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
				return cli.Exit(fmt.Sprintf("invalid --cost %d: must be between %d and %d", cost, bcrypt.MinCost, bcrypt.MaxCost), 1)
			}
			password, err := readPassword(c.App.Reader, c.App.ErrWriter)
			if err != nil {
				return err
			}
			hash, err := auth.NewPasswordHasher(cost).Hash(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, hash)
			return nil
		},
	}
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", errors.New("missing password from stdin")
	}
	password := strings.TrimRight(sc.Text(), "\r")
	if password == "" {
		return "", errors.New("missing password from stdin")
	}
	return password, nil
}
