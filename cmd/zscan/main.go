// Command zscan plots Z-scan measurement files, either as a one-shot batch
// over local files or as an HTTP upload service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/banshee-data/zscan.report/internal/api"
	"github.com/banshee-data/zscan.report/internal/archive"
	"github.com/banshee-data/zscan.report/internal/batch"
	"github.com/banshee-data/zscan.report/internal/chart"
	"github.com/banshee-data/zscan.report/internal/config"
	"github.com/banshee-data/zscan.report/internal/fsutil"
	"github.com/banshee-data/zscan.report/internal/monitoring"
	"github.com/banshee-data/zscan.report/internal/timeutil"
	"github.com/banshee-data/zscan.report/internal/version"
)

// Exit codes
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

const shutdownTTL = 5 * time.Second

var logf = monitoring.Prefixed("zscan: ")

// clock stamps archive entries.
var clock timeutil.Clock = timeutil.RealClock{}

// measurementExts are the file extensions picked up when a directory is
// given to the plot command.
var measurementExts = map[string]bool{".txt": true, ".lvm": true, ".csv": true}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], fsutil.OSFileSystem{}, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  zscan -version")
	fmt.Fprintln(w, "  zscan serve [-listen addr] [-config file.json]")
	fmt.Fprintln(w, "  zscan plot [-out dir] [-archive file.zip] [-config file.json] files-or-dirs...")
}

func run(ctx context.Context, args []string, fsys fsutil.FileSystem, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("zscan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	showVersion := fs.Bool("version", false, "Print version information and exit")
	fs.Usage = func() { usage(stderr) }
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.String())
		return exitOK
	}

	rest := fs.Args()
	if len(rest) == 0 {
		usage(stderr)
		return exitUsage
	}
	switch rest[0] {
	case "serve":
		return runServe(ctx, rest[1:], stderr)
	case "plot":
		return runPlot(ctx, rest[1:], fsys, stdout, stderr)
	case "version":
		fmt.Fprintln(stdout, version.String())
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		usage(stderr)
		return exitUsage
	}
}

func loadConfig(path string) (*config.ServerConfig, error) {
	if path == "" {
		return config.EmptyServerConfig(), nil
	}
	return config.LoadServerConfig(path)
}

func runServe(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	listen := fs.String("listen", "", "Listen address (overrides config)")
	configPath := fs.String("config", "", "Path to a JSON server config")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return exitFailed
	}
	if *listen != "" {
		cfg.Listen = listen
	}

	server := api.NewServer(cfg).HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		logf("version %s listening on %s", version.Version, server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(stderr, "failed to start server: %v\n", err)
			return exitFailed
		}
		return exitOK
	case <-ctx.Done():
	}

	logf("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTTL)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			logf("HTTP server force close error: %v", err)
		}
	}
	logf("graceful shutdown complete")
	return exitOK
}

func runPlot(ctx context.Context, args []string, fsys fsutil.FileSystem, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("plot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	outDir := fs.String("out", ".", "Directory for the PNG charts")
	archivePath := fs.String("archive", "", "Also write every chart into this zip file")
	configPath := fs.String("config", "", "Path to a JSON config for chart size and workers")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "plot: no input files")
		return exitUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return exitFailed
	}

	docs, err := readInputs(fsys, fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "plot: %v\n", err)
		return exitFailed
	}
	if len(docs) == 0 {
		fmt.Fprintln(stderr, "plot: no measurement files found")
		return exitFailed
	}

	co := cfg.GetChartOptions()
	outcomes, err := batch.Run(ctx, docs, batch.Options{Workers: cfg.GetWorkers(), Chart: &co})
	if err != nil {
		fmt.Fprintf(stderr, "plot: %v\n", err)
		return exitFailed
	}

	if err := fsys.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(stderr, "plot: %v\n", err)
		return exitFailed
	}

	names := archive.NewPlotNamer()
	var written, empty, failed int
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			failed++
			fmt.Fprintf(stderr, "%s: %v\n", o.Name, o.Err)
		case o.Result.Empty():
			empty++
			fmt.Fprintf(stderr, "%s: %v\n", o.Name, chart.ErrNoData)
		default:
			dst := filepath.Join(*outDir, names.Unique(chart.PlotFileName(o.Name)))
			if err := fsys.WriteFile(dst, o.PNG, 0o644); err != nil {
				failed++
				fmt.Fprintf(stderr, "%s: %v\n", o.Name, err)
				continue
			}
			written++
			fmt.Fprintln(stdout, dst)
		}
	}

	if *archivePath != "" {
		if err := writeArchive(fsys, *archivePath, outcomes); err != nil {
			fmt.Fprintf(stderr, "plot: %v\n", err)
			return exitFailed
		}
		fmt.Fprintln(stdout, *archivePath)
	}

	logf("plotted %d, empty %d, failed %d", written, empty, failed)
	if failed > 0 {
		return exitFailed
	}
	return exitOK
}

// readInputs loads every named file. Directories contribute their
// measurement files, not recursively.
func readInputs(fsys fsutil.FileSystem, paths []string) ([]batch.Document, error) {
	var docs []batch.Document
	add := func(p string) error {
		data, err := fsys.ReadFile(p)
		if err != nil {
			return err
		}
		docs = append(docs, batch.Document{Name: filepath.Base(p), Data: data})
		return nil
	}

	for _, p := range paths {
		info, err := fsys.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if err := add(p); err != nil {
				return nil, err
			}
			continue
		}
		entries, err := fsys.ReadDir(p)
		if err != nil {
			return nil, err
		}
		for _, name := range entries {
			if !measurementExts[strings.ToLower(filepath.Ext(name))] {
				continue
			}
			if err := add(filepath.Join(p, name)); err != nil {
				return nil, err
			}
		}
	}
	return docs, nil
}

func writeArchive(fsys fsutil.FileSystem, path string, outcomes []batch.Outcome) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := fsys.Create(path)
	if err != nil {
		return err
	}
	if _, err := archive.Write(f, outcomes, clock.Now()); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
