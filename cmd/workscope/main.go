// Package main is the entry point for the workscope CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dshills/workscope/internal/config"
	"github.com/dshills/workscope/internal/exclude"
	"github.com/dshills/workscope/internal/project/watcher"
	"github.com/dshills/workscope/internal/workspace"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Options holds the parsed command-line configuration.
type Options struct {
	WorkspacePath string
	ConfigDir     string
	Check         bool
	List          bool
	Watch         bool
	Search        bool
	Args          []string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()
	ctx := context.Background()

	cfg := config.New(
		config.WithUserConfigDir(opts.ConfigDir),
		config.WithWatcher(opts.Watch),
	)
	if err := cfg.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		return 1
	}
	defer cfg.Close()

	ws, err := openWorkspace(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer ws.Close(ctx)

	cfg.AttachWorkspace(ws)

	matcher := exclude.NewFilesMatcher(ws, cfg)
	if opts.Search {
		matcher.Dispose()
		matcher = exclude.NewSearchMatcher(ws, cfg)
	}
	defer matcher.Dispose()

	switch {
	case opts.Check:
		return runCheck(matcher, opts.Args)
	case opts.Watch:
		return runWatch(ctx, ws, cfg)
	case opts.List:
		return runList(ws, matcher)
	default:
		return runList(ws, matcher)
	}
}

// openWorkspace builds the workspace from a .workscope file or from
// positional root arguments.
func openWorkspace(opts Options) (*workspace.Workspace, error) {
	if opts.WorkspacePath != "" {
		return workspace.OpenFromFile(opts.WorkspacePath)
	}

	roots := opts.Args
	if opts.Check || len(roots) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		roots = []string{cwd}
	}
	return workspace.NewFromPaths(roots...)
}

// runCheck prints the exclusion verdict for each path argument.
func runCheck(m *exclude.Matcher, paths []string) int {
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Error: -check requires at least one path")
		return 2
	}

	excluded := false
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if pattern, ok := m.Pattern(abs); ok {
			fmt.Printf("%s\texcluded\t%s\n", p, pattern)
			excluded = true
		} else {
			fmt.Printf("%s\tincluded\n", p)
		}
	}

	// Mirror grep: exit 0 when something matched, 1 when nothing did.
	if excluded {
		return 0
	}
	return 1
}

// runList walks every workspace folder printing non-excluded files.
func runList(ws *workspace.Workspace, m *exclude.Matcher) int {
	for _, folder := range ws.Folders() {
		err := filepath.WalkDir(folder.Path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if m.Matches(p) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() {
				fmt.Println(p)
			}
			return nil
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: walking %s: %v\n", folder.Path, err)
			return 1
		}
	}
	return 0
}

// runWatch streams file events for the workspace until interrupted.
func runWatch(ctx context.Context, ws *workspace.Workspace, cfg *config.Config) int {
	watchExclude := exclude.NewWatcherMatcher(ws, cfg)
	defer watchExclude.Dispose()

	rw, err := watcher.NewRootWatcher(ws, 100*time.Millisecond,
		watcher.WithExcluder(watchExclude))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to start watcher: %v\n", err)
		return 1
	}
	defer rw.Close()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	for {
		select {
		case <-ctx.Done():
			return 0
		case <-signals:
			return 0
		case ev, ok := <-rw.Events():
			if !ok {
				return 0
			}
			fmt.Printf("%s\t%s\n", ev.Op, ev.Path)
		case err, ok := <-rw.Errors():
			if !ok {
				return 0
			}
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
}

func parseFlags() Options {
	var opts Options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.WorkspacePath, "workspace", "", "Path to a .workscope workspace file")
	flag.StringVar(&opts.WorkspacePath, "w", "", "Path to a .workscope workspace file (shorthand)")
	flag.StringVar(&opts.ConfigDir, "config", "", "User configuration directory")
	flag.StringVar(&opts.ConfigDir, "c", "", "User configuration directory (shorthand)")
	flag.BoolVar(&opts.Check, "check", false, "Print the exclusion verdict for each path argument")
	flag.BoolVar(&opts.List, "list", false, "List non-excluded files in the workspace")
	flag.BoolVar(&opts.Watch, "watch", false, "Stream file change events until interrupted")
	flag.BoolVar(&opts.Search, "search", false, "Use search exclusions instead of file exclusions")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Workscope - workspace scoping for code editors\n\n")
		fmt.Fprintf(os.Stderr, "Usage: workscope [options] [root ...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  workscope -list ./proj            List non-excluded files\n")
		fmt.Fprintf(os.Stderr, "  workscope -check build/out.o      Test paths against files.exclude\n")
		fmt.Fprintf(os.Stderr, "  workscope -search -check vendor   Test paths against search exclusions\n")
		fmt.Fprintf(os.Stderr, "  workscope -w proj.workscope -watch  Stream watcher events\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Workscope %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	opts.Args = flag.Args()
	return opts
}
