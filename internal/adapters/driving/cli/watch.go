package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-kb/internal/logger"
	"github.com/custodia-labs/sercha-kb/internal/normalisers"
)

// watchSettle is how long a file must be quiet before it is ingested.
const watchSettle = 500 * time.Millisecond

var (
	watchTenant   string
	watchExisting bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest files as they appear in a directory",
	Long: `Watches a directory and ingests every file that is created or rewritten
in it. Each write produces a new document; files are not de-duplicated.
Hidden files are ignored. Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	tenantFlag(watchCmd, &watchTenant)
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "also ingest files already in the directory")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	w := &dirWatcher{
		ingest: ingestService,
		tenant: watchTenant,
		settle: watchSettle,
		out:    cmd.OutOrStdout(),
	}
	if watchExisting {
		if err := w.ingestExisting(cmd.Context(), args[0]); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for assistant %q\n", args[0], watchTenant)
	return w.run(cmd.Context(), args[0])
}

// dirWatcher debounces fsnotify events per path and ingests settled files.
type dirWatcher struct {
	ingest driving.IngestService
	tenant string
	settle time.Duration
	out    io.Writer

	mu     sync.Mutex
	timers map[string]*time.Timer
	// ingestMu serialises ingestion so output lines do not interleave.
	ingestMu sync.Mutex
}

func (w *dirWatcher) run(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.timers = make(map[string]*time.Timer)

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				w.schedule(ctx, event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

// schedule (re)arms the settle timer for path.
func (w *dirWatcher) schedule(ctx context.Context, path string) {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.timers[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.ingestPath(ctx, path)
	})
}

func (w *dirWatcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

func (w *dirWatcher) ingestExisting(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		w.ingestPath(ctx, filepath.Join(dir, e.Name()))
	}
	return nil
}

// ingestPath ingests one file, reporting failures without stopping the watch.
func (w *dirWatcher) ingestPath(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("read %s: %v", path, err)
		return
	}

	w.ingestMu.Lock()
	defer w.ingestMu.Unlock()

	filename := filepath.Base(path)
	result, err := w.ingest.Ingest(ctx, domain.IngestRequest{
		TenantID:    w.tenant,
		Filename:    filename,
		ContentType: normalisers.DetectContentType(filename, data),
		Data:        data,
	})
	if err != nil {
		fmt.Fprintf(w.out, "Failed %s: %v\n", filename, err)
		return
	}
	fmt.Fprintf(w.out, "Ingested %s: %s (%d chunks)\n", filename, result.DocumentID, result.Chunks)
}
