package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/glyphseg-mcp/internal/config"
	"github.com/ironsheep/glyphseg-mcp/internal/ocr"
	"github.com/ironsheep/glyphseg-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("glyphseg-mcp - MCP server for glyph segmentation and recognition")
	fmt.Println()
	fmt.Println("Usage: glyphseg-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config <path>  Load settings from a YAML file")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  GLYPHSEG_CONFIG=<path>       Config file when --config is not given")
	fmt.Println("  GLYPHSEG_LOG_LEVEL=debug     Enable debug logging")
	fmt.Println("  GLYPHSEG_LANGUAGE=eng        Tesseract language")
	fmt.Println("  GLYPHSEG_WORKERS=4           Concurrent images in glyph_recognize_batch")
	fmt.Println("  GLYPHSEG_MERGE_MODE=single   single or fixed")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

func main() {
	configPath := os.Getenv("GLYPHSEG_CONFIG")

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version", "-v", "version":
			fmt.Printf("glyphseg-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		case "--config", "-c":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "--config requires a path")
				os.Exit(2)
			}
			i++
			configPath = args[i]
		default:
			fmt.Fprintf(os.Stderr, "unknown option: %s\n\n", args[i])
			usage()
			os.Exit(2)
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	if cfg.Debug() {
		log.Printf("Glyphseg MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		info := ocr.EngineInfo()
		if info.Available {
			log.Printf("OCR engine: tesseract %s", info.Version)
		} else {
			log.Printf("OCR engine unavailable: %s", info.Error)
		}
		log.Printf("Segmentation: merge radius (%d,%d), mode %s; binarize %t (%s)",
			cfg.XMergeRadius, cfg.YMergeRadius, cfg.MergeMode, cfg.Binarize, cfg.Binarizer.String())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, nil)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Server error: %v", err)
	}
}
