// Command hdrscan runs one headless aggregation pass against the open
// project and prints the HDR-routed point table to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
)

import (
	"github.com/wwisetools/hdrscope/chart"
	"github.com/wwisetools/hdrscope/config"
	"github.com/wwisetools/hdrscope/scan"
	"github.com/wwisetools/hdrscope/waapi"
)

var configPath string
var endpoint string
var showAll bool
var verbose bool

func init() {
	const (
		usage    = "path to a YAML config file; defaults to ~/" + config.DefaultFileName
		flagName = "config"
	)
	flag.StringVar(&configPath, flagName, "", usage)
	flag.StringVar(&configPath, "c", "", shorthandDesc(flagName))
}

func init() {
	const (
		usage    = "the editor's authoring-API host:port"
		flagName = "endpoint"
	)
	flag.StringVar(&endpoint, flagName, "", usage)
	flag.StringVar(&endpoint, "e", "", shorthandDesc(flagName))
}

func init() {
	const (
		usage    = "print every point of a large result instead of only the first category"
		flagName = "all"
	)
	flag.BoolVar(&showAll, flagName, false, usage)
	flag.BoolVar(&showAll, "a", false, shorthandDesc(flagName))
}

func init() {
	const (
		usage    = "enable debug logging"
		flagName = "verbose"
	)
	flag.BoolVar(&verbose, flagName, false, usage)
	flag.BoolVar(&verbose, "v", false, shorthandDesc(flagName))
}

func shorthandDesc(flagName string) string {
	return "(shorthand for -" + flagName + ")"
}

// inlineDispatcher runs board mutations on the calling goroutine; a
// one-shot scan has no UI loop.
type inlineDispatcher struct{}

func (inlineDispatcher) Send(fn func()) { fn() }

// consoleShell answers the large-dataset prompt from the -all flag and
// routes notices to the log.
type consoleShell struct {
	log     *slog.Logger
	showAll bool
}

func (s *consoleShell) Ask(_ context.Context, question string) (bool, error) {
	s.log.Info("prompt auto-answered", "question", question, "answer", s.showAll)
	return s.showAll, nil
}

func (s *consoleShell) Notify(message string) {
	s.log.Warn(message)
}

func main() {
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("could not load config", "error", err)
		os.Exit(1)
	}
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}
	level := slog.LevelInfo
	if verbose || cfg.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx := context.Background()
	client := waapi.NewClient(cfg.Endpoint, log)
	if err := client.Connect(ctx); err != nil {
		log.Error("could not reach the editor", "endpoint", cfg.Endpoint, "error", err)
		os.Exit(1)
	}
	defer client.Disconnect()

	board := chart.NewBoard(inlineDispatcher{}, log)
	analyzer := &scan.Analyzer{
		Client:  client,
		Session: scan.NewSession(),
		Board:   board,
		Shell:   &consoleShell{log: log, showAll: showAll},
		Log:     log,
	}
	if err := analyzer.Run(ctx); err != nil {
		os.Exit(1)
	}

	fmt.Print(board)
}
