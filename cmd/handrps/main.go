package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/ayusman/handrps/internal/app"
	"github.com/ayusman/handrps/internal/config"
	"github.com/ayusman/handrps/internal/server"
	"github.com/ayusman/handrps/internal/store"
	"github.com/ayusman/handrps/internal/tray"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a JSON settings file")
		addr       = flag.String("addr", "", "HTTP listen address (overrides config)")
		cameraID   = flag.Int("camera", -1, "camera device index (overrides config)")
		dbPath     = flag.String("db", "", "SQLite database path (overrides config)")
		webDir     = flag.String("web", "", "static web directory (overrides config)")
		withTray   = flag.Bool("tray", false, "show a system tray menu")
	)
	flag.Parse()

	fmt.Println("HandRPS - Rock Paper Scissors by hand")

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *cameraID >= 0 {
		cfg.CameraID = *cameraID
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *webDir != "" {
		cfg.WebDir = *webDir
	}

	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath()
	}
	if cfg.WebDir == "" {
		cfg.WebDir = findWebDir()
	}
	if cfg.WebDir != "" {
		fmt.Printf("Serving static files from: %s\n", cfg.WebDir)
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(app.Config{Settings: cfg, Store: st})
	srv := server.New(application.ServerConfig())

	var t *tray.Tray
	if *withTray {
		t = tray.New()
		t.OnOpen(func() { openBrowser(browserURL(cfg.Addr)) })
		t.OnQuit(stop)
		application.OnStatus(func(s app.Status) { t.Update(s.LastGesture, s.Game) })
	}

	errCh := make(chan error, 2)
	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		errCh <- srv.ListenAndServe(ctx, cfg.Addr)
	}()
	go func() {
		errCh <- application.Run(ctx)
	}()

	if t != nil {
		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		// The tray owns the main thread until it quits.
		t.Run()
		stop()
	}

	var exitErr error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil && exitErr == nil {
			exitErr = err
			stop()
		}
	}
	if exitErr != nil && !errors.Is(exitErr, context.Canceled) {
		st.Close()
		log.Fatalf("HandRPS stopped: %v", exitErr)
	}
}

// defaultDBPath returns ~/.handrps/handrps.db, creating the directory.
func defaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dbDir := filepath.Join(homeDir, ".handrps")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	return filepath.Join(dbDir, "handrps.db")
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.handrps/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".handrps", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

// browserURL turns a listen address into a local URL.
func browserURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
