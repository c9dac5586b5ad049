// Command hdrscope serves the HDR routing inspector: it connects to the
// editor's authoring API, scans the open project's work units and serves
// an interactive chart of HDR-routed event actions on a loopback page.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

import (
	"github.com/wwisetools/hdrscope/chart"
	"github.com/wwisetools/hdrscope/config"
	"github.com/wwisetools/hdrscope/scan"
	"github.com/wwisetools/hdrscope/shell"
	"github.com/wwisetools/hdrscope/waapi"
)

var configPath string
var endpoint string
var listen string
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
		usage    = "the loopback address to serve the chart page on"
		flagName = "listen"
	)
	flag.StringVar(&listen, flagName, "", usage)
	flag.StringVar(&listen, "l", "", shorthandDesc(flagName))
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

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		newLogger(false).Error("could not load config", "error", err)
		os.Exit(1)
	}
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if listen != "" {
		cfg.Listen = listen
	}
	log := newLogger(verbose || cfg.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := waapi.NewClient(cfg.Endpoint, log)
	if err := client.Connect(ctx); err != nil {
		log.Warn("editor not reachable; scans will fail until it is",
			"endpoint", cfg.Endpoint, "error", err)
	}
	defer client.Disconnect()
	client.SetOnDisconnect(func() {
		log.Warn("lost connection to the editor")
	})

	disp := shell.NewDispatcher()
	go disp.Run()
	defer disp.Close()

	session := scan.NewSession()
	board := chart.NewBoard(disp, log)

	srv := &shell.Server{
		Log:     log,
		Board:   board,
		Session: session,
		Client:  client,
	}
	srv.Dialogs = shell.NewDialogQueue(func(p shell.Prompt) {
		srv.Broadcast("dialog", p)
	})
	board.OnCleared(func() {
		srv.Broadcast("cleared", nil)
	})

	analyzer := &scan.Analyzer{
		Client:  client,
		Session: session,
		Board:   board,
		Shell:   srv.Dialogs,
		Log:     log,
	}
	srv.Scan = func(scanCtx context.Context) error {
		if !client.Connected() {
			if err := client.Connect(scanCtx); err != nil {
				srv.Dialogs.Notify("Could not reach the editor: " + err.Error())
				return err
			}
			// The watcher exits on disconnect and never retries on its
			// own; restart it with the fresh connection.
			go client.WatchDirty(ctx, session)
		}
		if err := analyzer.Run(scanCtx); err != nil {
			return err
		}
		startStaleWatcher(ctx, session, log)
		return nil
	}

	go client.WatchDirty(ctx, session)

	if err := srv.Run(ctx, cfg.Listen); err != nil {
		log.Error("shell server failed", "error", err)
		os.Exit(1)
	}
}

var watchMu sync.Mutex
var watchCancel context.CancelFunc
var watchedFolders [3]string

// startStaleWatcher (re)starts the filesystem watcher over the project's
// work-unit folders. The folders are only known after a scan resolved
// them, and change when the operator opens a different project.
func startStaleWatcher(ctx context.Context, session *scan.Session, log *slog.Logger) {
	event, object, bus := session.Folders()
	folders := [3]string{event, object, bus}

	watchMu.Lock()
	defer watchMu.Unlock()
	if folders == watchedFolders {
		return
	}
	if watchCancel != nil {
		watchCancel()
		watchCancel = nil
	}

	sw, err := scan.WatchFolders(session, log, event, object, bus)
	if err != nil {
		log.Warn("could not watch work-unit folders", "error", err)
		watchedFolders = [3]string{}
		return
	}
	watchCtx, cancel := context.WithCancel(ctx)
	watchCancel = cancel
	watchedFolders = folders
	go func() {
		defer sw.Close()
		sw.Run(watchCtx)
	}()
}
