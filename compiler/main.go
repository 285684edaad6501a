package main

import (
	"context"
	"fmt"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/xiaobogaga/jackc/compiler/internal"
)

// jackc translates jack classes to vm code, one .vm file per class.

func main() {
	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "translate .jack files or directories of them to .vm files",
		Action:      compileAct,
		Args:        cli.Args{},
		Flags: append(commonFlags(),
			cli.NewFlag("out,o", "", "directory for the .vm files, next to the sources by default"),
			cli.NewFlag("no-check", false, "do not validate the emitted vm code"),
		),
	}

	checkCmd := &cli.Command{
		Name:        "check",
		Description: "validate .vm files or directories of them",
		Action:      checkAct,
		Args:        cli.Args{},
		Flags:       commonFlags(),
	}

	tokensCmd := &cli.Command{
		Name:        "tokens",
		Description: "print the token stream of a .jack file",
		Action:      tokensAct,
		Args:        cli.Args{},
		Flags:       commonFlags(),
	}

	app := &cli.Command{
		Name:        "jackc",
		Description: "jackc is a single pass jack to vm compiler",
		Commands: []*cli.Command{
			compileCmd,
			checkCmd,
			tokensCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func commonFlags() []*cli.Flag {
	return []*cli.Flag{
		cli.NewFlag("config,c", internal.DefaultConfigFile, "toml config file"),
		cli.NewFlag("verbose,v", "", "tlog verbosity topics, e.g. symbols,labels,emit"),
		cli.HelpFlag,
	}
}

// setup loads the config, applies the flags that override it and returns a context carrying the root span.
func setup(c *cli.Command) (context.Context, *internal.Config, error) {
	cfg, err := internal.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	if v := c.String("verbose"); v != "" {
		cfg.Log.Verbose = v
	}
	if cfg.Log.Verbose != "" {
		tlog.SetVerbosity(cfg.Log.Verbose)
	}

	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())
	return ctx, cfg, nil
}

func compileAct(c *cli.Command) (err error) {
	ctx, cfg, err := setup(c)
	if err != nil {
		return err
	}
	if out := c.String("out"); out != "" {
		cfg.Output.Dir = out
	}
	if c.Bool("no-check") {
		cfg.Output.Check = false
	}
	if len(c.Args) == 0 {
		return errors.New("no input, expected .jack files or directories")
	}

	units, err := internal.Compile(ctx, cfg, c.Args)
	if err != nil {
		return err
	}
	if len(units) == 0 {
		PrintWarningMessage("Empty", "no .jack files found")
		return nil
	}

	failed := 0
	for _, unit := range units {
		if unit.Err != nil {
			failed++
			PrintErrorMessage("Fail", unit.Err)
			continue
		}
		PrintSuccessMessage("Done", fmt.Sprintf("%v -> %v (%d subroutines)", unit.Source, unit.Output, len(unit.Info.Subroutines)))
	}
	if failed != 0 {
		return errors.New("%d of %d units failed", failed, len(units))
	}
	return nil
}

func checkAct(c *cli.Command) (err error) {
	ctx, _, err := setup(c)
	if err != nil {
		return err
	}
	if len(c.Args) == 0 {
		return errors.New("no input, expected .vm files or directories")
	}

	checked, err := internal.CheckFiles(ctx, c.Args)
	for _, file := range checked {
		PrintSuccessMessage("Ok", file)
	}
	if err != nil {
		PrintErrorMessage("Fail", err)
		return err
	}
	return nil
}

func tokensAct(c *cli.Command) (err error) {
	_, _, err = setup(c)
	if err != nil {
		return err
	}

	for _, a := range c.Args {
		f, err := os.Open(a)
		if err != nil {
			return errors.Wrap(err, "open %v", a)
		}
		tokens, err := internal.NewTokenizer(f).Tokenize(f)
		f.Close()
		if err != nil {
			return errors.Wrap(err, "tokenize %v", a)
		}
		for _, tok := range tokens {
			fmt.Printf("%4d  %-10v %s\n", tok.Line(), tok.Type(), tok.String())
		}
	}
	return nil
}
