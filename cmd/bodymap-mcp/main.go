package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/claude/bodymap/internal/logging"
	"github.com/claude/bodymap/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	url := flag.String("url", os.Getenv("BODYMAP_URL"), "bodymap server base URL (e.g. http://bodymap.tailnet.ts.net)")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	if *url == "" {
		fmt.Fprintf(os.Stderr, "Usage: bodymap-mcp -url http://bodymap.tailnet.ts.net\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// stdout carries the MCP protocol; logs go to stderr.
	log := logging.New(os.Stderr, level)
	log.Info("bodymap-mcp starting", "version", Version, "url", *url)

	s := mcp.New(mcp.NewHTTPClient(*url), Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("stdio server failed", "error", err)
		os.Exit(1)
	}
}
