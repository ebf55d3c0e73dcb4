package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/DevMiloo/PhotoSift/internal/cache"
	"github.com/DevMiloo/PhotoSift/internal/decode"
	"github.com/DevMiloo/PhotoSift/internal/imagetypes"
	"github.com/DevMiloo/PhotoSift/internal/loader"
	"github.com/DevMiloo/PhotoSift/internal/logging"

	"github.com/disintegration/imaging"
	"golang.org/x/term"
)

const (
	// JPEG quality for rendered output files
	renderQuality = 95
	// Preview cache capacity for warm runs
	warmCacheCapacity = 512
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	// Keep pipeline logs out of the way unless explicitly requested
	if os.Getenv("LOG_LEVEL") == "" && os.Getenv("DEBUG") == "" {
		logging.SetLevel(logging.LevelWarn)
	}

	// Create a context that cancels on interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	// Bring up libvips once for every command; probing HEIC and RAW
	// headers needs it just as much as decoding does.
	vipsEnabled, shutdownVips := initVips()
	defer shutdownVips()

	switch command {
	case "probe":
		if !runProbe(os.Args[2:]) {
			os.Exit(1)
		}
	case "render":
		if !runRender(ctx, vipsEnabled, os.Args[2:]) {
			os.Exit(1)
		}
	case "warm":
		if !runWarm(ctx, vipsEnabled, os.Args[2:]) {
			os.Exit(1)
		}
	default:
		// Sanitize command input using allowlist to break taint chain
		sanitized := sanitizeCommand(command)
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", sanitized) //nolint:gosec // input is sanitized via allowlist in sanitizeCommand; only [a-zA-Z0-9_-] characters pass through
		printUsage()
		os.Exit(1)
	}
}

// sanitizeCommand returns a safe representation of a command string for display.
// It uses an allowlist approach, replacing any character that is not alphanumeric,
// a hyphen, or an underscore with '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage() {
	fmt.Println("PhotoSift Pipeline Utility")
	fmt.Println("")
	fmt.Println("Usage: siftctl <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  probe   - Read image dimensions from file headers")
	fmt.Println("  render  - Decode one image and write it out as a JPEG")
	fmt.Println("  warm    - Decode previews for every image under a directory")
	fmt.Println("")
	fmt.Println("Environment:")
	fmt.Println("  LOG_LEVEL - debug, info, warn or error (default: warn)")
}

// initVips brings up libvips when it is present. Probing and decoding
// fall back to the pure-Go path when it is not.
func initVips() (bool, func()) {
	if err := decode.InitVips(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: libvips unavailable, using software decode: %v\n", err)
		return false, func() {}
	}
	return true, decode.ShutdownVips
}

// parseProfile maps a CLI flag value onto a decode profile.
func parseProfile(name string) (imagetypes.Profile, error) {
	switch strings.ToLower(name) {
	case "preview":
		return imagetypes.ProfilePreview, nil
	case "final":
		return imagetypes.ProfileFinal, nil
	}
	return "", fmt.Errorf("unknown profile %q (want preview or final)", name)
}

func runProbe(args []string) bool {
	fs := flag.NewFlagSet("probe", flag.ExitOnError)
	verbose := fs.Bool("v", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return false
	}
	if *verbose {
		logging.SetLevel(logging.LevelDebug)
	}

	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Error: probe needs at least one file")
		fmt.Fprintln(os.Stderr, "Usage: siftctl probe [-v] <file> [file...]")
		return false
	}

	ok := true
	for _, path := range files {
		dims, err := loader.ProbeDimensions(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			ok = false
			continue
		}
		fmt.Printf("%s: %s\n", path, dims)
	}
	return ok
}

func runRender(ctx context.Context, vipsEnabled bool, args []string) bool {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	out := fs.String("o", "", "output path (default: <name>_<profile>.jpg beside the source)")
	maxDim := fs.Int("max", 0, "long-edge bound in pixels (0 = profile default)")
	profileName := fs.String("profile", "final", "decode profile: preview or final")
	verbose := fs.Bool("v", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return false
	}
	if *verbose {
		logging.SetLevel(logging.LevelDebug)
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: render takes exactly one source file")
		fmt.Fprintln(os.Stderr, "Usage: siftctl render [-o output] [-max N] [-profile preview|final] <file>")
		return false
	}
	path := fs.Arg(0)

	profile, err := parseProfile(*profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}

	chain := decode.NewDefaultChain(decode.Config{VipsEnabled: vipsEnabled, FFmpegEnabled: true}, nil)
	ldr := loader.New(chain, nil)

	start := time.Now()
	res, err := ldr.Load(ctx, loader.ImageRequest{Path: path, MaxDimension: *maxDim, Profile: profile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to decode %s: %v\n", path, err)
		return false
	}

	img, err := res.NRGBA()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}

	target := *out
	if target == "" {
		target = defaultOutputPath(path, profile)
	}
	if err := imaging.Save(img, target, imaging.JPEGQuality(renderQuality)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write %s: %v\n", target, err)
		return false
	}

	fmt.Printf("Rendered %s -> %s (%dx%d, %s)\n",
		path, target, res.Width, res.Height, time.Since(start).Round(time.Millisecond))
	return true
}

// defaultOutputPath derives a sibling JPEG name from the source path.
func defaultOutputPath(path string, profile imagetypes.Profile) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + string(profile) + ".jpg"
}

func runWarm(ctx context.Context, vipsEnabled bool, args []string) bool {
	fs := flag.NewFlagSet("warm", flag.ExitOnError)
	workerCount := fs.Int("workers", 0, "decode workers (0 = sized from GOMAXPROCS)")
	verbose := fs.Bool("v", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return false
	}
	if *verbose {
		logging.SetLevel(logging.LevelDebug)
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: warm takes exactly one directory")
		fmt.Fprintln(os.Stderr, "Usage: siftctl warm [-workers N] <dir>")
		return false
	}
	dir := fs.Arg(0)

	// The walk swallows per-entry errors, so check the root up front.
	info, err := os.Stat(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}
	if !info.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: %s is not a directory\n", dir)
		return false
	}

	chain := decode.NewDefaultChain(decode.Config{VipsEnabled: vipsEnabled, FFmpegEnabled: true}, nil)
	pc, err := cache.New(warmCacheCapacity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}
	p := loader.NewPrefetcher(loader.New(chain, pc), nil, *workerCount, 0)
	p.Start()

	// A Ctrl-C abandons queued work instead of flushing it
	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	if interactive {
		fmt.Printf("Warming previews under %s with %d workers\n", dir, p.WorkerCount())
	}

	// Live progress only makes sense on a terminal; carriage returns
	// would garble piped output.
	progressDone := make(chan struct{})
	if interactive {
		go func() {
			ticker := time.NewTicker(500 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-progressDone:
					return
				case <-ticker.C:
					completed, failed, _, _ := p.Stats()
					fmt.Printf("\r  %d processed", completed+failed)
				}
			}
		}()
	}

	start := time.Now()
	enqueued, walkErr := p.WarmDirectory(dir)
	p.Drain()
	close(progressDone)
	if interactive {
		fmt.Print("\r")
	}

	completed, failed, canceled, _ := p.Stats()
	fmt.Printf("Warmed %d/%d previews in %s (%d failed, %d canceled)\n",
		completed, enqueued, time.Since(start).Round(time.Millisecond), failed, canceled)
	if walkErr != nil {
		fmt.Fprintf(os.Stderr, "Error: directory walk aborted: %v\n", walkErr)
		return false
	}
	return ctx.Err() == nil && failed == 0 && canceled == 0
}
