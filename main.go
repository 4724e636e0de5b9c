package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// Version is set at build time via -ldflags
var Version = "dev"

// AppOptions carries parsed command-line flags
type AppOptions struct {
	ConfigFile     string
	ConfigExplicit bool // --config was given on the command line
	InputFile      string
	Threshold      int
	Workers        int
	ReportFile     string
	GeoJSONFile    string
	RenderFile     string
	RenderFormat   string
	MqttMode       bool
	HttpMode       bool
	HttpPort       int
	Verbose        bool
}

// Runner is implemented by App; tests substitute a mock
type Runner interface {
	ApplyOptions(opts AppOptions) error
	RunAssemble(ctx context.Context, in io.Reader, out io.Writer) error
	RunService(ctx context.Context, in io.Reader, out io.Writer) error
}

// usageError marks failures caused by bad command-line arguments
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, NewApp())
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
	case errors.As(err, new(usageError)):
		stop()
		os.Exit(2)
	default:
		stop()
		log.Fatalf("Error: %v", err)
	}
}

// run parses args and dispatches to the app. Results go to stdout; usage
// text goes to stderr so stdout only ever carries answers.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, app Runner) error {
	fs := flag.NewFlagSet("beaconmesh", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts AppOptions
	var showVersion bool
	fs.StringVar(&opts.ConfigFile, "config", "config.yaml", "Path to configuration file (optional)")
	fs.StringVar(&opts.InputFile, "input", "", "Read scanner reports from this file or http(s) URL instead of stdin")
	fs.IntVar(&opts.Threshold, "threshold", 0, "Beacons two scanners must share to overlap (default from config, 12)")
	fs.IntVar(&opts.Workers, "workers", 0, "Concurrent rotation branches per pairwise match (default 24)")
	fs.StringVar(&opts.ReportFile, "report", "", "Write the JSON assembly report to this path")
	fs.StringVar(&opts.GeoJSONFile, "geojson", "", "Write a GeoJSON top-down projection to this path")
	fs.StringVar(&opts.RenderFile, "render", "", "Render a top-down map to this path")
	fs.StringVar(&opts.RenderFormat, "format", "", "Render format: raster, vector, or both")
	fs.BoolVar(&opts.MqttMode, "mqtt", false, "Publish scanner positions and summary to MQTT")
	fs.BoolVar(&opts.HttpMode, "http", false, "Serve the assembled map over HTTP after assembly")
	fs.IntVar(&opts.HttpPort, "http-port", 0, "HTTP server port (default 8080)")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Log every pairwise match attempt")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError{err}
	}
	if fs.NArg() > 0 {
		return usageError{fmt.Errorf("unexpected arguments: %v", fs.Args())}
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			opts.ConfigExplicit = true
		}
	})

	if showVersion {
		fmt.Fprintf(stdout, "beaconmesh version: %s\n", Version)
		return nil
	}

	if err := app.ApplyOptions(opts); err != nil {
		return err
	}

	if opts.HttpMode {
		return app.RunService(ctx, stdin, stdout)
	}
	return app.RunAssemble(ctx, stdin, stdout)
}
