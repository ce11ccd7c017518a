// Command oxy-demos runs one demo in a window, or every demo headless in batch mode.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/demos"
	"github.com/Carmen-Shannon/oxy-demos/engine"
	"github.com/Carmen-Shannon/oxy-demos/engine/config"
	"github.com/Carmen-Shannon/oxy-demos/engine/diagnostic"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-demos/engine/window"
)

func main() {
	demoName := flag.String("demo", demos.CubeName, "Demo to run ("+strings.Join(demos.Names(), ", ")+")")
	backendName := flag.String("backend", "", "Backend to use: wgpu, opengl or headless (overrides the config file)")
	configPath := flag.String("config", "", "Path to a TOML config file")
	batch := flag.Bool("batch", false, "Run every demo headless and print a summary")
	frames := flag.Int("frames", 120, "Frames per demo in batch or headless mode")
	workers := flag.Int("workers", 0, "Demos run at once in batch mode (0 = one per CPU)")
	profile := flag.Bool("profile", false, "Log frame timing once per second")
	fps := flag.Float64("fps", -1, "Windowed frame rate cap (0 = uncapped, negative uses the config value)")
	list := flag.Bool("list", false, "List the demos and exit")
	flag.Parse()

	if *list {
		for _, d := range demos.All() {
			fmt.Printf("%-18s %s\n", d.Name(), d.Description())
		}
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := installLogger(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	escalate, err := cfg.EscalateKinds()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	backendType, err := cfg.BackendType()
	if *backendName != "" {
		backendType, err = config.ParseBackend(*backendName)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	opts := demos.Options{
		Size:     cfg.Size(),
		Period:   cfg.Period(),
		Validate: cfg.ValidatePrograms(),
	}

	if *batch {
		os.Exit(runBatch(demos.All(), opts, *frames, *workers, escalate))
	}

	d, ok := demos.Lookup(*demoName)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown demo %q (available: %s)\n", *demoName, strings.Join(demos.Names(), ", "))
		os.Exit(2)
	}
	if backendType == backend.BackendTypeHeadless {
		os.Exit(runBatch([]demos.Demo{d}, opts, *frames, 1, escalate))
	}
	if *fps >= 0 {
		cfg.Renderer.FPSLimit = *fps
	}
	opts.Reporter = diagnostic.NewReporter(diagnostic.WithEscalate(escalate...))
	if err := runWindowed(d, cfg, backendType, opts, *profile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func installLogger(cfg config.Config) error {
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// runWindowed opens a window for the backend and runs the demo until the window closes
// or the process is interrupted.
func runWindowed(d demos.Demo, cfg config.Config, backendType backend.BackendType, opts demos.Options, profile bool) error {
	size := cfg.Size()
	windowOptions := append(renderer.WindowOptions(backendType),
		window.WithTitle(cfg.Window.Title+" - "+d.Name()),
		window.WithWidth(size.Width),
		window.WithHeight(size.Height),
		window.WithVSync(cfg.VSync()),
	)
	win := window.NewWindow(windowOptions...)
	b := renderer.NewBackend(backendType, win, renderer.WithVSync(cfg.VSync()))
	defer b.Release()

	e := engine.NewEngine(b,
		engine.WithWindow(win),
		engine.WithProfiling(profile),
		engine.WithRenderFrameLimit(cfg.FrameLimit()),
	)
	opts.Size = win.Size()
	a, err := demos.Launch(d, e, opts)
	if err != nil {
		_ = win.Close()
		return err
	}
	defer a.Pipeline().Release()
	defer a.Release()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		e.Quit()
	}()

	e.Run()
	return nil
}

// runBatch runs demos headless and prints one line per demo. It returns the exit code.
func runBatch(list []demos.Demo, opts demos.Options, frames, workers int, escalate []diagnostic.Kind) int {
	results := demos.RunBatch(list, demos.BatchConfig{
		Options:  opts,
		Frames:   frames,
		Workers:  workers,
		Escalate: escalate,
	})

	code := 0
	for _, res := range results {
		if res.Err != nil {
			fmt.Printf("FAIL %-18s %v\n", res.Name, res.Err)
			code = 1
			continue
		}
		fmt.Printf("ok   %-18s frames=%d draws=%d diagnostics=%d\n", res.Name, res.Frames, res.Draws, len(res.Diagnostics))
	}
	return code
}
