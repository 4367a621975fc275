package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"
)

type WatchCmd struct {
	File       string `help:"Portfolio file to watch." arg:"" type:"existingfile"`
	Currencies bool   `help:"Include the per-currency breakdown." short:"c"`
}

func (cmd *WatchCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory rather than the file: editors replace files on
	// save, and a watch on the old inode goes stale.
	dir := filepath.Dir(cmd.File)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target, err := filepath.Abs(cmd.File)
	if err != nil {
		return err
	}

	printInfof(ctx.Stdout, "Watching %s", pathStyle.Render(target))
	cmd.rerun(runCtx, ctx)

	// Editors often write files in multiple steps.
	const debounceDelay = 100 * time.Millisecond
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-runCtx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			changed, err := filepath.Abs(event.Name)
			if err != nil || changed != target {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				cmd.rerun(runCtx, ctx)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printWarning(ctx.Stderr, fmt.Sprintf("file watcher error: %v", err))
		}
	}
}

// rerun reloads the portfolio and reprints the overview. Failures are
// printed but never stop the watch loop: the file is often mid-edit.
func (cmd *WatchCmd) rerun(runCtx context.Context, ctx *kong.Context) {
	portfolio, err := loadPortfolio(ctx, cmd.File)
	if err != nil {
		printWarning(ctx.Stderr, err.Error())
		return
	}

	result, base, err := processPortfolio(runCtx, ctx, portfolio)
	if err != nil {
		printWarning(ctx.Stderr, err.Error())
		return
	}

	width := terminalWidth()
	if width > 80 {
		width = 80
	}

	_, _ = fmt.Fprintln(ctx.Stdout)
	_, _ = fmt.Fprintln(ctx.Stdout, strings.Repeat("─", width))
	renderOverview(ctx.Stdout, result, base)

	if cmd.Currencies {
		if report := result.AllTime(); report != nil {
			_, _ = fmt.Fprintln(ctx.Stdout)
			renderReport(ctx.Stdout, report, base, true)
		}
	}
}
