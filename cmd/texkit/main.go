// Command texkit compiles LaTeX documents to PDF through texi2dvi.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	texkit "github.com/texkit/texkit"
	"github.com/texkit/texkit/internal/config"
	texmcp "github.com/texkit/texkit/internal/mcp"
	"github.com/texkit/texkit/internal/report"
	"github.com/texkit/texkit/internal/runner"
	"github.com/texkit/texkit/internal/tex"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("texkit: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "compile":
		err = compileMain(args)
	case "probe":
		err = probeMain(args)
	case "runs":
		err = runsMain(args)
	case "inspect":
		err = inspectMain(args)
	case "mcp":
		err = mcpMain(args)
	case "version":
		fmt.Println(texkit.Version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "texkit: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: texkit <command> [flags] [file]

Commands:
  compile     Compile a LaTeX document to PDF
  probe       Report the installed TeX toolchain
  runs        List recent runs
  inspect     Show one run's issues and transcript
  mcp         Start the MCP server
  version     Print the version
  help        Show this help

Use "texkit <command> -h" for command-specific flags.`)
}

// --- compile ---

func compileMain(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	engineFlag := fs.String("engine", "", "toolchain binary name or path (overrides config)")
	timeoutFlag := fs.Duration("timeout", 0, "override configured timeout (e.g. 10m)")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("compile needs exactly one .tex file")
	}
	file := fs.Arg(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	eng, _, err := newEngine(filepath.Dir(file), *engineFlag, *timeoutFlag)
	if err != nil {
		return err
	}

	sink := tex.ConsoleSink{Stdout: os.Stdout, Stderr: os.Stderr}
	rec := eng.Compile(ctx, file, sink)

	if rec.Error != "" {
		os.Exit(1)
	}
	if rec.ExitCode != 0 {
		os.Exit(rec.ExitCode)
	}
	return nil
}

// --- probe ---

func probeMain(args []string) error {
	fs := flag.NewFlagSet("probe", flag.ExitOnError)
	engineFlag := fs.String("engine", "", "toolchain binary name or path (overrides config)")
	_ = fs.Parse(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	workspace, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determining workspace: %w", err)
	}
	eng, _, err := newEngine(workspace, *engineFlag, 0)
	if err != nil {
		return err
	}

	info, err := eng.Probe(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Executable:   %s\n", info.Path)
	fmt.Printf("Distribution: %s\n", info.Distro)
	fmt.Print(info.RawVersion)
	return nil
}

// --- runs / inspect ---

func runsMain(args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	limitFlag := fs.Int("n", 10, "maximum number of runs to list")
	_ = fs.Parse(args)

	recs, err := sharedStore().List()
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(recs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}
	if len(recs) > *limitFlag {
		recs = recs[:*limitFlag]
	}
	for _, rec := range recs {
		fmt.Println(texmcp.SummarizeRecord(rec))
	}
	return nil
}

func inspectMain(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("inspect needs exactly one run ID")
	}

	rec, err := sharedStore().Load(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("loading run: %w", err)
	}
	fmt.Print(texmcp.FormatRecord(rec))
	return nil
}

// --- mcp ---

func mcpMain(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	instructions := fs.Bool("instructions", false, "print model instructions and exit")
	httpAddr := fs.String("http", "", "start HTTP server on address (e.g. :9090)")
	_ = fs.Parse(args)

	if *instructions {
		fmt.Print(texmcp.Instructions)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return serve(ctx, *httpAddr)
}

func serve(ctx context.Context, httpAddr string) error {
	workspace, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determining workspace: %w", err)
	}

	loaded, err := config.Load(workspace)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := loaded.Config

	r := &runner.Runner{
		Workspace: workspace,
		Timeout:   cfg.Timeout(),
		MaxOutput: cfg.MaxOutputBytes(),
	}

	server := texmcp.NewServer(cfg, r, sharedStore())

	if httpAddr != "" {
		return serveHTTP(ctx, server, httpAddr)
	}
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.Printf("listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// --- shared ---

// newEngine loads configuration near dir and wires an engine around it.
func newEngine(dir, engineOverride string, timeoutOverride time.Duration) (*tex.Engine, *config.Config, error) {
	loaded, err := config.Load(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	cfg := loaded.Config
	if engineOverride != "" {
		cfg.RawEngine = engineOverride
	}

	timeout := cfg.Timeout()
	if timeoutOverride > 0 {
		timeout = timeoutOverride
	}

	r := &runner.Runner{
		Timeout:   timeout,
		MaxOutput: cfg.MaxOutputBytes(),
	}

	eng := &tex.Engine{
		Config: cfg,
		Runner: r,
		Store:  sharedStore(),
	}
	return eng, cfg, nil
}

var store report.Store

// sharedStore lazily builds the process-wide run store.
func sharedStore() report.Store {
	if store == nil {
		store = report.NewLRUStore(5, report.NewDiskStore())
	}
	return store
}
