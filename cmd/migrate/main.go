// Command migrate applies the case, file and document schema.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	flag "github.com/spf13/pflag"

	"notaria/internal/config"
)

func main() {
	source := flag.StringP("source", "s", envOr("NOTARIA_MIGRATIONS_SOURCE", "file://db/migrations"), "migration source URL")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: migrate [--source URL] up|down|steps N|force V|version")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*source, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(source string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	m, err := migrate.New(source, cfg.DB.DSN())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	switch args[0] {
	case "up":
		return report(m.Up(), "schema is up to date")
	case "down":
		return report(m.Down(), "all migrations reverted")
	case "steps":
		n, err := numberArg(args)
		if err != nil {
			return err
		}
		return report(m.Steps(n), fmt.Sprintf("moved %d steps", n))
	case "force":
		v, err := numberArg(args)
		if err != nil {
			return err
		}
		return report(m.Force(v), fmt.Sprintf("schema version forced to %d", v))
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Println("no migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading version: %w", err)
		}
		log.Printf("version %d (dirty=%t)", version, dirty)
		return nil
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// report treats ErrNoChange as success.
func report(err error, done string) error {
	if errors.Is(err, migrate.ErrNoChange) {
		log.Println("no change")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Println(done)
	return nil
}

func numberArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%s requires a number argument", args[0])
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("invalid %s argument %q: %w", args[0], args[1], err)
	}
	return n, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
