package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/gg"

	"github.com/ironsheep/shot-group-mcp/internal/server"
	"github.com/ironsheep/shot-group-mcp/internal/session"
	"github.com/ironsheep/shot-group-mcp/internal/shots"
	"github.com/ironsheep/shot-group-mcp/internal/store"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("shot-group-mcp - MCP server for shooting target group analysis")
	fmt.Println()
	fmt.Println("Usage: shot-group-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v           Print version information")
	fmt.Println("  --help, -h              Print this help message")
	fmt.Println("  -sensitivity N          Default darkness threshold 0-255 (default 155)")
	fmt.Println("  -min-area PX            Default minimum hole area in px² (default 50)")
	fmt.Println("  -reference-width MM     Default photographed width in mm (default 210)")
	fmt.Println("  -db PATH                SQLite file for result history (disabled if empty)")
	fmt.Println("  -log-level LEVEL        info or debug")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  SHOT_GROUP_DB=path           Result history database")
	fmt.Println("  SHOT_GROUP_LOG_LEVEL=debug   Enable debug logging")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("shot-group-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	sensitivity := flag.Int("sensitivity", shots.DefaultSensitivity, "default darkness threshold 0-255")
	minArea := flag.Float64("min-area", shots.DefaultMinAreaPx, "default minimum hole area in px²")
	referenceWidth := flag.Float64("reference-width", shots.DefaultReferenceWidthMm, "default photographed width in mm")
	dbPath := flag.String("db", os.Getenv("SHOT_GROUP_DB"), "SQLite file for result history")
	logLevel := flag.String("log-level", os.Getenv("SHOT_GROUP_LOG_LEVEL"), "info or debug")
	flag.Usage = usage
	flag.Parse()

	debug := strings.EqualFold(*logLevel, "debug")
	if debug {
		log.Printf("Shot Group MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		session.SetLogger(logger)
		gg.SetLogger(logger)
	}

	cfg, err := shots.NewConfig(*sensitivity, *minArea, *referenceWidth)
	if err != nil {
		log.Fatalf("Invalid defaults: %v", err)
	}

	opts := []server.Option{
		server.WithDefaults(cfg),
		server.WithDebug(debug),
	}

	if *dbPath != "" {
		st, err := store.Open(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open result history: %v", err)
		}
		defer st.Close()
		opts = append(opts, server.WithStore(st))
		if debug {
			log.Printf("Result history: %s", *dbPath)
		}
	}

	srv := server.New(opts...)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
