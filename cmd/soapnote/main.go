package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/nguyentantai21042004/soap-flow/internal/analyzer"
	"github.com/nguyentantai21042004/soap-flow/internal/config"
	"github.com/nguyentantai21042004/soap-flow/internal/generator"
	"github.com/nguyentantai21042004/soap-flow/internal/logger"
)

const usage = `Usage: soapnote <command> [flags]

Commands:
  serve     Serve the web page and JSON API
  analyze   Analyze one transcript file (or stdin) and print the SOAP note
  watch     Analyze every transcript dropped into the inbox folder

Common flags:
  -source   Configuration source: yaml, toml, env or ssm (env SOAP_CONFIG_SOURCE)
  -config   File path, or parameter prefix for ssm (env SOAP_CONFIG)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()
	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "serve":
		err = runServe(ctx, args)
	case "analyze":
		err = runAnalyze(ctx, args)
	case "watch":
		err = runWatch(ctx, args)
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// sourceFlags registers the flags every command shares.
type sourceFlags struct {
	source   string
	location string
}

func (f *sourceFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.source, "source", os.Getenv("SOAP_CONFIG_SOURCE"), "configuration source: yaml, toml, env or ssm")
	fs.StringVar(&f.location, "config", os.Getenv("SOAP_CONFIG"), "config file path or ssm parameter prefix")
}

// app is everything a command needs once configuration is loaded.
type app struct {
	cfg      *config.Config
	log      logger.Logger
	analyzer analyzer.Analyzer
}

// bootstrap loads configuration, then builds the logger and the analyzer.
// A configuration failure prints the remediation text for the chosen source.
func bootstrap(ctx context.Context, f sourceFlags) (*app, error) {
	kind, err := config.ParseKind(f.source)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Open(ctx, kind, f.location)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\n\n%s", err, config.Help(kind, f.location, err))
	}

	log := logger.NewWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	log.Debug(ctx, "System: %s/%s, CPU cores: %d", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	log.Debug(ctx, "Configuration loaded from %s source", kind)

	gen, err := generator.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("create generator: %w", err)
	}

	an, err := analyzer.New(cfg, gen, log)
	if err != nil {
		return nil, fmt.Errorf("create analyzer: %w", err)
	}

	return &app{cfg: cfg, log: log, analyzer: an}, nil
}
