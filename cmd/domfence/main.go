// Command domfence is the inert subtree engine.
//
// Usage:
//
//	domfence -config domfence.yaml            # serve the HTTP control surface
//	domfence -config domfence.yaml -mcp       # serve MCP tools on stdio
//	domfence -html page.html -inert sidebar   # one-shot: print result and exit
//	domfence -url https://example.com -inert nav  # mirror markers into a live page
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/domfence/bridge"
	"github.com/hazyhaar/domfence/dom"
	"github.com/hazyhaar/domfence/inert"
	"github.com/hazyhaar/domfence/service"
)

func main() {
	configPath := flag.String("config", "", "path to domfence.yaml config file")
	htmlPath := flag.String("html", "", "one-shot: process a local HTML file and exit")
	pageURL := flag.String("url", "", "mirror inert markers into a live page")
	inertIDs := flag.String("inert", "", "comma-separated element ids to mark inert")
	mcpStdio := flag.Bool("mcp", false, "serve MCP tools on stdio instead of HTTP")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *htmlPath, *pageURL, *inertIDs, *mcpStdio); err != nil {
		logger.Error("domfence: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, htmlPath, pageURL, inertIDs string, mcpStdio bool) error {
	switch {
	case htmlPath != "":
		return runOneShot(logger, htmlPath, splitIDs(inertIDs))
	case pageURL != "":
		return runMirror(ctx, logger, pageURL, splitIDs(inertIDs))
	case configPath != "":
		return runServe(ctx, logger, configPath, mcpStdio)
	}

	fmt.Fprintln(os.Stderr, "usage: domfence -config <file> | -html <file> | -url <url>")
	os.Exit(1)
	return nil
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// runOneShot loads a file, marks the requested subtrees inert, and prints
// the resulting markup plus the surviving tab order.
func runOneShot(logger *slog.Logger, path string, ids []string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := dom.ParseString(string(raw))
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	mgr, err := inert.NewManager(doc, inert.WithLogger(logger))
	if err != nil {
		return err
	}
	doc.Flush()

	for _, id := range ids {
		el := doc.GetElementByID(id)
		if el == nil {
			return fmt.Errorf("no element with id %q", id)
		}
		mgr.SetInert(el, true)
	}
	doc.Flush()

	out, err := doc.RenderString()
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	fmt.Println(out)

	fmt.Fprintln(os.Stderr, "tab order:")
	for _, n := range doc.TabOrder() {
		fmt.Fprintf(os.Stderr, "  %s\n", dom.Path(n))
	}
	return nil
}

// runMirror opens a live page, computes inert state on its snapshot, and
// keeps pushing the markers back until interrupted.
func runMirror(ctx context.Context, logger *slog.Logger, pageURL string, ids []string) error {
	b := bridge.New(bridge.Config{Logger: logger})
	if err := b.Start(ctx); err != nil {
		return err
	}
	defer b.Close()

	page, err := b.OpenPage(ctx, pageURL)
	if err != nil {
		return err
	}
	defer page.Close()

	doc, err := page.Snapshot(ctx)
	if err != nil {
		return err
	}
	mgr, err := inert.NewManager(doc, inert.WithLogger(logger))
	if err != nil {
		return err
	}
	doc.Flush()

	for _, id := range ids {
		el := doc.GetElementByID(id)
		if el == nil {
			return fmt.Errorf("no element with id %q in %s", id, pageURL)
		}
		mgr.SetInert(el, true)
	}
	doc.Flush()

	mirror := bridge.NewMirror(page, mgr)
	if err := mirror.Apply(ctx); err != nil {
		return err
	}
	logger.Info("domfence: mirroring", "url", pageURL, "roots", len(mgr.Roots()))

	if err := mirror.Run(ctx, 2*time.Second); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// runServe starts the service from a config file and exposes it over HTTP,
// or over MCP stdio when requested.
func runServe(ctx context.Context, logger *slog.Logger, configPath string, mcpStdio bool) error {
	cfg, err := service.LoadConfigFile(configPath)
	if err != nil {
		return err
	}

	svc, err := service.New(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	if mcpStdio {
		srv := mcp.NewServer(&mcp.Implementation{
			Name:    "domfence",
			Version: "1.0.0",
		}, nil)
		svc.RegisterMCP(srv)
		logger.Info("domfence: serving MCP on stdio")
		return srv.Run(ctx, &mcp.StdioTransport{})
	}

	httpSrv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           svc.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("domfence: server starting", "addr", cfg.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("domfence: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("domfence: shutdown", "error", err)
	}
	return nil
}
