package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/treetop-labs/selftest/internal/scaffold"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

// configFile carries per-repo defaults so teams do not retype the same
// flags for every new suite.
const configFile = ".mksuite.yaml"

var (
	categoryFlag = &cli.StringFlag{
		Name:    "category",
		Usage:   "Category the new suite registers under",
		EnvVars: []string{"MKSUITE_CATEGORY"},
	}
	dirFlag = &cli.StringFlag{
		Name:    "dir",
		Value:   scaffold.DefaultDir,
		Usage:   "Directory the suite file is written to",
		EnvVars: []string{"MKSUITE_DIR"},
	}
	packageFlag = &cli.StringFlag{
		Name:    "package",
		Usage:   "Package name of the generated file (defaults to the directory name)",
		EnvVars: []string{"MKSUITE_PACKAGE"},
	}
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "mksuite"
	app.Usage = "Generate a self-test suite skeleton"
	app.ArgsUsage = "<SuiteName>"
	app.Flags = []cli.Flag{categoryFlag, dirFlag, packageFlag}
	app.Action = run
	return app
}

func run(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("expected exactly one argument: the suite name")
	}

	p := scaffold.Params{
		Name:     ctx.Args().First(),
		Category: ctx.String(categoryFlag.Name),
	}
	dir := ctx.String(dirFlag.Name)

	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	if cfg != nil {
		// Explicit flags beat the config file.
		if !ctx.IsSet(dirFlag.Name) && cfg.Dir != "" {
			dir = cfg.Dir
		}
		if !ctx.IsSet(categoryFlag.Name) && cfg.Category != "" {
			p.Category = cfg.Category
		}
		p.ModulePath = cfg.ModulePath
	}

	switch {
	case ctx.IsSet(packageFlag.Name):
		p.Package = ctx.String(packageFlag.Name)
	case cfg != nil && cfg.Package != "":
		p.Package = cfg.Package
	default:
		p.Package = scaffold.PackageForDir(dir)
	}

	path, err := scaffold.Write(dir, p)
	if err != nil {
		return err
	}
	fmt.Printf("created %s\n", path)
	return nil
}

type fileConfig struct {
	Dir        string `yaml:"dir"`
	Package    string `yaml:"package"`
	Category   string `yaml:"category"`
	ModulePath string `yaml:"module_path"`
}

func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg := new(fileConfig)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}
