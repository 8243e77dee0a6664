package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Watch a directory and rewrite SQL files on change",
		Long: `Watch a directory tree for changes to .sql files and rewrite each
changed file into its companion output file.

Files that already carry the output suffix are ignored, so the
rewritten outputs never trigger further rewrites.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0])
		},
	}

	return cmd
}

func runWatch(cmd *cobra.Command, dir string) error {
	cc := NewCommandContext(cmd)

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDir(watcher, dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for .sql changes (Ctrl+C to stop)\n", dir)

	watchLoop(ctx, watcher, cc)
	return nil
}

// watchDir recursively adds a directory tree to the watcher, skipping
// hidden directories.
func watchDir(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if name := info.Name(); len(name) > 1 && name[0] == '.' {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

// watchLoop handles file system events, debouncing rapid writes to the
// same file.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, cc *CommandContext) {
	timers := make(map[string]*time.Timer)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			// New directories need to be added to the watch set.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watchDir(watcher, event.Name)
					continue
				}
			}

			if filepath.Ext(event.Name) != ".sql" || isDerived(event.Name, cc.Cfg.Suffix) {
				continue
			}

			path := event.Name
			if t, ok := timers[path]; ok {
				t.Stop()
			}
			timers[path] = time.AfterFunc(150*time.Millisecond, func() {
				writeRewrite(path, cc)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			cc.Logger.Error("watcher error", "error", err)
		}
	}
}

// isDerived reports whether path is a rewrite output rather than a
// source query.
func isDerived(path, suffix string) bool {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.HasSuffix(base, suffix)
}

// writeRewrite rewrites one file to its companion output, logging
// failures instead of stopping the watch loop.
func writeRewrite(path string, cc *CommandContext) {
	out, err := rewriteFile(path, cc.Cfg)
	if err != nil {
		cc.Logger.Error("rewrite failed", "input", path, "error", err)
		return
	}

	dest := OutputPath(path, cc.Cfg.Suffix)
	if err := os.WriteFile(dest, []byte(out+"\n"), 0o644); err != nil {
		cc.Logger.Error("write failed", "output", dest, "error", err)
		return
	}

	cc.Logger.Info("rewrote query", "input", path, "output", dest)
}
