package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ritzau/finance-assistant/pkg/config"
	"github.com/ritzau/finance-assistant/pkg/finder"
	"github.com/ritzau/finance-assistant/pkg/hierarchy"
	"github.com/ritzau/finance-assistant/pkg/layout"
	"github.com/ritzau/finance-assistant/pkg/logging"
	"github.com/ritzau/finance-assistant/pkg/model"
	"github.com/ritzau/finance-assistant/pkg/output"
	"github.com/ritzau/finance-assistant/pkg/pubsub"
	"github.com/ritzau/finance-assistant/pkg/refresh"
	"github.com/ritzau/finance-assistant/pkg/store"
	"github.com/ritzau/finance-assistant/pkg/watcher"
	"github.com/ritzau/finance-assistant/pkg/web"
	"github.com/spf13/pflag"
)

func main() {
	flags := config.Flags("fa-tree")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	level, err := logging.ParseLevel(cfg.Verbosity, cfg.VerboseCnt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	logging.Configure(level, cfg.JSONLogs)

	resources, err := model.ParseResources(cfg.Resources)
	if err != nil {
		logging.Fatal("invalid resources", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.WebMode {
		err = serve(ctx, cfg, resources)
	} else {
		err = printTrees(ctx, cfg, resources)
	}
	if err != nil {
		logging.Fatal("fa-tree failed", "error", err)
	}
}

// openStores picks the snapshot directory over the API when configured. Link
// operations need the API and are unavailable on snapshots.
func openStores(cfg *config.Config, resources []model.Resource) (store.RecordStore, store.LinkService) {
	if cfg.Snapshots != "" {
		logging.Info("reading snapshots", "path", cfg.Snapshots)
		checkSnapshots(cfg.Snapshots, resources)
		return store.NewFileStore(cfg.Snapshots), nil
	}

	logging.Info("using API", "url", cfg.API)
	s := store.NewHTTPStore(cfg.API, cfg.Timeout)
	return s, s
}

// checkSnapshots warns about configured resources without a snapshot file.
// They load as empty.
func checkSnapshots(dir string, resources []model.Resource) {
	snapshots, err := finder.FindSnapshots(dir)
	if err != nil {
		logging.Warn("cannot scan snapshot directory", "path", dir, "error", err)
		return
	}

	names := make([]string, len(resources))
	for i, r := range resources {
		names[i] = r.Path
	}
	for _, name := range finder.Missing(snapshots, names) {
		logging.Warn("no snapshot for resource", "resource", name, "path", dir)
	}
}

func printTrees(ctx context.Context, cfg *config.Config, resources []model.Resource) error {
	records, _ := openStores(cfg, resources)
	runner := refresh.NewRunner(records, nil)

	for _, res := range resources {
		snap, err := runner.Refresh(ctx, res, "print")
		if err != nil {
			return err
		}

		state := hierarchy.NewExpandState()
		if cfg.ExpandAll {
			state = hierarchy.Reduce(state, hierarchy.ExpandAll{Forest: snap.Forest})
		}

		output.PrintTree(os.Stdout, res.Name, hierarchy.Rows(snap.Forest, state), snap.Forest.Issues())
		output.PrintSummary(os.Stdout, res.Name, snap.Forest)
		fmt.Println()
	}
	return nil
}

func serve(ctx context.Context, cfg *config.Config, resources []model.Resource) error {
	records, links := openStores(cfg, resources)

	publisher := pubsub.NewSSEPublisher(pubsub.TopicConfig{BufferSize: 1})
	defer publisher.Close()

	runner := refresh.NewRunner(records, publisher)

	server := web.NewServer(web.Options{
		Resources: resources,
		Store:     records,
		Links:     links,
		Layouts:   layout.NewFileStore(cfg.State),
		Runner:    runner,
		Publisher: publisher,
		Plugin:    cfg.Plugin,
	})

	// Initial load; failures are published and retried on the next request
	if err := runner.RefreshAll(ctx, resources, "startup"); err != nil {
		logging.Warn("initial load incomplete", "error", err)
	}

	if cfg.Watch {
		if err := startWatcher(ctx, cfg.Snapshots, resources, runner); err != nil {
			return err
		}
	}

	if cfg.OpenBrowser {
		go func() {
			// Give the listener a moment to come up
			time.Sleep(500 * time.Millisecond)
			openBrowser(fmt.Sprintf("http://localhost:%d", cfg.Port))
		}()
	}

	return server.Run(ctx, cfg.Port)
}

func startWatcher(ctx context.Context, dir string, resources []model.Resource, runner *refresh.Runner) error {
	fw, err := watcher.NewFileWatcher(dir, resources)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	debouncer := watcher.NewDebouncer(fw.Events(), 300*time.Millisecond, 2*time.Second)
	debouncer.Start(ctx)

	go runner.Watch(ctx, debouncer.Output(), resources)
	return nil
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		logging.Warn("cannot open browser on this platform", "os", runtime.GOOS)
		return
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		logging.Warn("failed to open browser", "error", err)
	}
}
