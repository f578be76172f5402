// Command fdshell is the interactive entrypoint: it parses connection
// flags the way the teacher's psqldef command does, then drives the
// shell's read-eval-print loop against a store opened for the requested
// driver.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flags "github.com/jessevdk/go-flags"
	"golang.org/x/term"

	_ "github.com/fdengine/fdengine/store/mssql"
	_ "github.com/fdengine/fdengine/store/mysql"
	_ "github.com/fdengine/fdengine/store/postgres"
	_ "github.com/fdengine/fdengine/store/sqlite3"

	"github.com/fdengine/fdengine/shell"
	"github.com/fdengine/fdengine/store"
	"github.com/fdengine/fdengine/util"
)

var version string

type options struct {
	Driver   string `short:"d" long:"driver" description:"Store driver: postgres, mysql, sqlite3, mssql" value-name:"driver" default:"sqlite3"`
	User     string `short:"U" long:"user" description:"Database user name" value-name:"username"`
	Password string `short:"W" long:"password" description:"Database user password, overridden by $FDENGINE_PASS" value-name:"password"`
	Host     string `short:"h" long:"host" description:"Host to connect to" value-name:"hostname"`
	Port     uint   `short:"p" long:"port" description:"Port used for the connection" value-name:"port"`
	Prompt   bool   `long:"password-prompt" description:"Force a password prompt"`
	File     string `short:"f" long:"file" description:"Run commands from this file non-interactively, then exit" value-name:"filename"`
	Help     bool   `long:"help" description:"Show this help"`
	Version  bool   `long:"version" description:"Show this version"`
}

func parseOptions(args []string) (store.Config, string) {
	var opts options
	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[option...] db_name"
	rest, err := parser.ParseArgs(args)
	if err != nil {
		log.Fatal(err)
	}

	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}
	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	if len(rest) == 0 {
		fmt.Print("No database is specified!\n\n")
		parser.WriteHelp(os.Stdout)
		os.Exit(1)
	}
	dbName := rest[0]

	password, ok := os.LookupEnv("FDENGINE_PASS")
	if !ok {
		password = opts.Password
	}
	if opts.Prompt {
		fmt.Print("Enter Password: ")
		pass, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println()
		password = string(pass)
	}

	cfg := store.Config{
		Driver:   opts.Driver,
		DbName:   dbName,
		Host:     opts.Host,
		Port:     int(opts.Port),
		User:     opts.User,
		Password: password,
	}
	return cfg, opts.File
}

func main() {
	util.InitSlog()

	cfg, scriptFile := parseOptions(os.Args[1:])

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	connect := func(ctx context.Context, dbName string) (store.Store, error) {
		c := cfg
		c.DbName = dbName
		return store.Open(ctx, c)
	}

	openOut := func(ctx context.Context) (store.Store, error) {
		outCfg := cfg
		outCfg.DbName = outputDBName(cfg)
		return store.Open(ctx, outCfg)
	}

	s := shell.New(os.Stdin, os.Stdout, connect, openOut, slog.Default())

	if scriptFile != "" {
		if err := shell.RunScript(ctx, s, scriptFile); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := s.Run(ctx); err != nil {
		log.Fatal(err)
	}
}

// outputDBName is the fixed normalization output (spec §6.3): a sqlite3
// file for that backend, and a sibling "_normalize_out" database name on
// the same server for the client/server backends.
func outputDBName(cfg store.Config) string {
	if cfg.Driver == "sqlite3" {
		return "normalize.sqlite"
	}
	return cfg.DbName + "_normalize_out"
}
