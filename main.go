package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyne.io/fyne/v2"

	"ColoringBoard/internal/config"
	"ColoringBoard/internal/logging"
	boardnet "ColoringBoard/internal/net"
	"ColoringBoard/internal/pageload"
	"ColoringBoard/internal/state"
	"ColoringBoard/internal/ui"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "TOML configuration file")
	listen := flag.String("listen", "", "serve the browser editor on this address (implies -serve)")
	serve := flag.Bool("serve", false, "serve the browser editor next to the desktop window")
	headless := flag.Bool("headless", false, "run only the browser editor server, no window")
	discover := flag.Bool("discover", false, "list coloring boards on the local network and exit")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	page := flag.String("page", "", "page id to open first")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(2)
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
		cfg.Server.Enabled = true
	}
	if *serve || *headless {
		cfg.Server.Enabled = true
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.Log.Level, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "log setup error:", err)
		os.Exit(2)
	}
	logging.SetLogger(logger)
	log := logging.For("main")

	// Context for lifecycle
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *discover {
		err := boardnet.Browse(ctx, 3*time.Second, func(url string) { fmt.Println(url) })
		if err != nil {
			fmt.Fprintln(os.Stderr, "discover error:", err)
			os.Exit(1)
		}
		return
	}

	src := cfg.CatalogSource()
	catalog, err := state.Open(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "catalog error:", err)
		os.Exit(1)
	}
	log.Info("catalog loaded", "pages", catalog.Len(), "dir", catalog.BaseDir())
	if cfg.Catalog.Watch {
		go func() {
			if err := state.Watch(ctx, catalog, src); err != nil {
				log.Warn("catalog watch stopped", "err", err)
			}
		}()
	}
	loader := pageload.New(catalog.BaseDir())

	if *headless {
		favorites, err := state.NewFavorites(favoritesStore(cfg, nil))
		if err != nil {
			fmt.Fprintln(os.Stderr, "favorites error:", err)
			os.Exit(1)
		}
		server := newServer(cfg, catalog, favorites, loader)
		if err := server.Start(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "server error:", err)
			os.Exit(1)
		}
		if link, err := server.ShareURL(); err == nil {
			fmt.Println("Coloring board at", link)
		}
		<-ctx.Done()
		if err := server.Stop(); err != nil {
			log.Warn("server stop", "err", err)
		}
		return
	}

	a := ui.NewApp()
	favorites, err := state.NewFavorites(favoritesStore(cfg, a.Preferences()))
	if err != nil {
		fmt.Fprintln(os.Stderr, "favorites error:", err)
		os.Exit(1)
	}

	deps := ui.Deps{
		Catalog:   catalog,
		Favorites: favorites,
		Loader:    loader,
		Editor:    cfg.EditorOptions(),
		Page:      *page,
	}
	if cfg.Server.Enabled {
		server := newServer(cfg, catalog, favorites, loader)
		if err := server.Start(ctx); err != nil {
			log.Warn("browser editor unavailable", "err", err)
		} else {
			deps.Server = server
			defer server.Stop()
		}
	}

	go func() {
		<-ctx.Done()
		fyne.Do(a.Quit)
	}()
	ui.RunApp(a, deps)
}

// favoritesStore keeps favorites in the configured file, or in the
// application preferences when no file is configured.
func favoritesStore(cfg config.Config, prefs fyne.Preferences) state.Store {
	if cfg.Favorites.Path != "" {
		return state.FileStore{Path: cfg.Favorites.Path}
	}
	if prefs != nil {
		return ui.PreferencesStore{Prefs: prefs}
	}
	return &state.MemoryStore{}
}

func newServer(cfg config.Config, catalog *state.Catalog, favorites *state.Favorites, loader *pageload.Loader) *boardnet.HTTPServer {
	server := boardnet.NewHTTPServer(cfg.Server.Listen, catalog, favorites, loader, cfg.EditorOptions())
	server.Advertise = cfg.Server.Advertise
	server.SetMaxPeers(cfg.Server.MaxPeers)
	catalog.OnChange(server.Thumbnails.Invalidate)
	return server
}
