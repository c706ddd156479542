// Package main implements the llcfg daemon (llcfgd). It serves the editor
// host protocol on a Unix domain socket and keeps parsed documents cached
// across connections.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atotto/clipboard"

	"github.com/triskellib/vscode/internal/config"
	"github.com/triskellib/vscode/internal/daemon"
	"github.com/triskellib/vscode/internal/log"
	"github.com/triskellib/vscode/pkg/layout"
)

var version = "dev"

func main() {
	var (
		socketPath  string
		configPath  string
		verbose     bool
		showVersion bool
		noClipboard bool
	)
	flag.StringVar(&socketPath, "socket", "", "Unix socket path (default: /tmp/llcfg.sock)")
	flag.StringVar(&configPath, "config", os.Getenv("LLCFG_CONFIG_PATH"), "Config file path")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.BoolVar(&noClipboard, "no-clipboard", false, "Do not write copied blocks to the system clipboard")
	flag.Parse()

	if showVersion {
		fmt.Printf("llcfgd version %s\n", version)
		return
	}

	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	logger := log.New(log.LoggerConfig{Level: log.InfoLevel})
	if err != nil {
		logger.Warn("using default config", "error", err)
		cfg = config.DefaultConfig()
	}
	if socketPath != "" {
		cfg.SocketPath = socketPath
	}
	if verbose {
		cfg.Verbose = true
	}
	logger.SetLevel(cfg.Level())
	logger.SetJSONOutput(cfg.LogJSON)

	var clip func(string) error
	if !noClipboard && !clipboard.Unsupported {
		clip = clipboard.WriteAll
	}

	srv := daemon.NewServer(daemon.ServerOptions{
		SocketPath: cfg.SocketPath,
		Version:    version,
		CacheSize:  cfg.CacheSize,
		Logger:     logger,
		Sizer: layout.TextSizer{
			CharWidth:  cfg.Layout.CharWidth,
			LineHeight: cfg.Layout.LineHeight,
			Padding:    cfg.Layout.Padding,
		},
		Space: layout.LayeredOptions{
			NodeSpacing:  cfg.Layout.NodeSpacing,
			LayerSpacing: cfg.Layout.LayerSpacing,
		},
		Clipboard: clip,
	})

	if err := srv.Listen(); err != nil {
		logger.Error("failed to listen", "error", err)
		os.Exit(1)
	}

	startedAt := time.Now()
	if err := daemon.WritePID(os.Getpid()); err != nil {
		logger.Warn("could not write PID file", "error", err)
	}
	daemon.WriteStatus(&daemon.DaemonStatus{
		Running:   true,
		PID:       os.Getpid(),
		Ready:     true,
		StartedAt: startedAt,
		Version:   version,
	})

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			logger.Info("received signal", "signal", sig.String())
			srv.Shutdown()
		case <-srv.Done():
		}
	}()

	logger.Info("llcfgd started", "version", version, "socket", cfg.SocketPath, "pid", os.Getpid())
	if err := srv.Serve(); err != nil {
		logger.Error("server error", "error", err)
	}

	daemon.RemovePID()
	daemon.RemoveStatus()
	logger.Info("llcfgd stopped")
}
