package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/goliatone/go-paramform"
	"github.com/goliatone/go-paramform/pkg/config"
	"github.com/goliatone/go-paramform/pkg/form"
	"github.com/goliatone/go-paramform/pkg/logging"
	"github.com/goliatone/go-paramform/pkg/paramfile"
	"github.com/goliatone/go-paramform/pkg/paramservice/codec"
	"github.com/goliatone/go-paramform/pkg/render"
	"github.com/goliatone/go-paramform/pkg/renderers/tui"
)

type options struct {
	configPath string
	envFile    string
	file       string
	save       string
	noFilter   bool
	cfg        config.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "paramform: %v\n", err)
		return 2
	}

	logger := logging.New(opts.cfg.Log)
	defer func() { _ = logger.Sync() }()

	var params form.Params
	if opts.file != "" {
		if params, err = paramfile.Load(opts.file); err != nil {
			fmt.Fprintf(stderr, "paramform: %v\n", err)
			return 1
		}
	}

	cache, closeHistory, err := paramform.OpenHistory(ctx, opts.cfg.HistoryDB, logger)
	if err != nil {
		fmt.Fprintf(stderr, "paramform: %v\n", err)
		return 1
	}
	defer func() { _ = closeHistory() }()

	res, err := paramform.Collect(ctx, opts.cfg, params,
		paramform.WithHistory(cache),
		paramform.WithLogger(logger),
		paramform.WithSessionOptions(tui.WithOutput(stderr)),
	)
	if errors.Is(err, tui.ErrAborted) {
		return 130
	}
	if err != nil {
		logger.Error("session failed", zap.Error(err))
		fmt.Fprintf(stderr, "paramform: %v\n", err)
		return 1
	}
	if !res.Accepted {
		return 1
	}

	if opts.save != "" {
		if err := save(opts.save, res.Values); err != nil {
			fmt.Fprintf(stderr, "paramform: %v\n", err)
			return 1
		}
	}
	if res.Delivered {
		fmt.Fprintf(stderr, "parameters delivered to %s\n", opts.cfg.Endpoint)
		return 0
	}
	if err := paramform.WriteValues(ctx, stdout, opts.cfg, res.Values); err != nil {
		fmt.Fprintf(stderr, "paramform: %v\n", err)
		return 1
	}
	return 0
}

// parseArgs resolves settings in order: defaults, config file, environment
// (including the env file) and flags.
func parseArgs(args []string, stderr io.Writer) (options, error) {
	var (
		opts      options
		endpoint  string
		namespace string
		codecName string
		output    string
		historyDB string
		timeout   string
	)
	fset := pflag.NewFlagSet("paramform", pflag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [flags]\n\nEdit parameters from a parameter server or a parameter file.\n\n", filepath.Base(os.Args[0]))
		fset.PrintDefaults()
	}
	fset.StringVarP(&opts.configPath, "config", "c", "", "config file (yaml or json)")
	fset.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	fset.StringVarP(&endpoint, "endpoint", "e", "", "parameter server URL")
	fset.StringVarP(&namespace, "namespace", "n", "/", "namespace to edit")
	fset.StringVarP(&opts.file, "file", "f", "", "parameter file to edit instead of a server")
	fset.StringVar(&opts.save, "save", "", "also write accepted values to this yaml file")
	fset.StringVar(&codecName, "codec", codec.NameJSON, "wire codec ("+strings.Join(codec.Names(), ", ")+")")
	fset.StringVarP(&output, "output", "o", render.FormatPretty, "output format ("+strings.Join(render.Formats(), ", ")+")")
	fset.StringVar(&historyDB, "history-db", "", "sqlite file persisting previously entered values")
	fset.StringVar(&timeout, "timeout", "10s", "timeout of every server request")
	fset.BoolVar(&opts.noFilter, "no-filter", false, "hide the filter menu entry")
	if err := fset.Parse(args); err != nil {
		return options{}, err
	}

	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return options{}, fmt.Errorf("load %s: %w", opts.envFile, err)
		}
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return options{}, err
	}

	overrides := map[string]*string{
		"endpoint":   &endpoint,
		"namespace":  &namespace,
		"codec":      &codecName,
		"output":     &output,
		"history-db": &historyDB,
		"timeout":    &timeout,
	}
	targets := map[string]*string{
		"endpoint":   &cfg.Endpoint,
		"namespace":  &cfg.Namespace,
		"codec":      &cfg.Codec,
		"output":     &cfg.Output,
		"history-db": &cfg.HistoryDB,
		"timeout":    &cfg.Timeout,
	}
	for name, value := range overrides {
		if fset.Changed(name) {
			*targets[name] = *value
		}
	}
	if opts.noFilter {
		cfg.Filter = false
	}
	if err := cfg.Validate(); err != nil {
		return options{}, err
	}
	if cfg.Endpoint != "" && opts.file != "" {
		return options{}, errors.New("--endpoint and --file are mutually exclusive")
	}
	opts.cfg = cfg
	return opts, nil
}

func save(path string, values map[string]any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := paramfile.Write(f, values); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
