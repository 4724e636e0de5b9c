package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kwv/beaconmesh/mesh"
)

// mqttConnectTimeout bounds broker connection retries for a one-shot run
const mqttConnectTimeout = 30 * time.Second

// App encapsulates the application state and dependencies
type App struct {
	Config       *mesh.Config
	StateTracker *mesh.StateTracker
	MQTTClient   *mesh.MQTTClient
	Publisher    *mesh.Publisher

	// CLI flags (effectively dependencies)
	InputFile   string
	ReportFile  string
	GeoJSONFile string
	RenderFile  string
	MqttMode    bool
	HttpMode    bool
}

// NewApp creates a new App instance
func NewApp() *App {
	return &App{
		Config:       mesh.DefaultConfig(),
		StateTracker: mesh.NewStateTracker(),
	}
}

// ApplyOptions loads the config file, if any, and lays command-line flags
// over it. A missing default config file is not an error.
func (a *App) ApplyOptions(opts AppOptions) error {
	config := mesh.DefaultConfig()
	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err == nil || opts.ConfigExplicit {
			loaded, err := mesh.LoadConfig(opts.ConfigFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config = loaded
			log.Printf("Loaded config from %s", opts.ConfigFile)
		}
	}

	if opts.Threshold != 0 {
		config.Matcher.Threshold = opts.Threshold
	}
	if opts.Workers != 0 {
		config.Matcher.Workers = opts.Workers
	}
	if opts.Verbose {
		config.Matcher.Verbose = true
	}
	if opts.RenderFormat != "" {
		config.Output.Format = opts.RenderFormat
	}
	if opts.HttpPort != 0 {
		config.HTTP.Port = opts.HttpPort
	}
	if opts.ReportFile != "" {
		config.Output.Report = opts.ReportFile
	}
	if opts.GeoJSONFile != "" {
		config.Output.GeoJSON = opts.GeoJSONFile
	}
	if opts.RenderFile != "" {
		config.Output.Render = opts.RenderFile
	}
	if err := config.Validate(); err != nil {
		return usageError{err}
	}

	a.Config = config
	a.InputFile = opts.InputFile
	a.ReportFile = config.Output.Report
	a.GeoJSONFile = config.Output.GeoJSON
	a.RenderFile = config.Output.Render
	a.MqttMode = opts.MqttMode
	a.HttpMode = opts.HttpMode
	return nil
}

// RunAssemble reads scanner reports, assembles them, writes any requested
// artifacts and prints the two result lines. Nothing reaches out unless every
// step succeeded.
func (a *App) RunAssemble(ctx context.Context, in io.Reader, out io.Writer) error {
	_, report, err := a.assemble(ctx, in)
	if err != nil {
		return err
	}
	return printResults(out, report.Metrics)
}

// RunService assembles once, then serves the result over HTTP until ctx is done.
func (a *App) RunService(ctx context.Context, in io.Reader, out io.Writer) error {
	_, report, err := a.assemble(ctx, in)
	if err != nil {
		return err
	}
	if err := printResults(out, report.Metrics); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", a.Config.HTTP.Port),
		Handler:           newHTTPServer(a.StateTracker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[HTTP] Starting server on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Printf("[HTTP] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// assemble runs the pipeline shared by both modes: parse, assemble, export,
// publish, then record the result in the state tracker.
func (a *App) assemble(ctx context.Context, in io.Reader) (*mesh.GlobalMap, *mesh.Report, error) {
	scanners, err := a.readScanners(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	summary := mesh.Summarize(scanners)
	log.Printf("Parsed %d scanners with %d beacon reports", summary.ScannerCount, summary.BeaconCount)

	gm, err := mesh.Assemble(ctx, scanners, a.Config.Matcher)
	if err != nil {
		return nil, nil, err
	}

	report := mesh.BuildReport(gm, a.ReportFile != "")
	if err := a.writeArtifacts(gm, report); err != nil {
		return nil, nil, err
	}
	if a.MqttMode {
		if err := a.publish(ctx, report); err != nil {
			return nil, nil, err
		}
	}

	a.StateTracker.Update(gm, report)
	return gm, report, nil
}

func (a *App) readScanners(ctx context.Context, in io.Reader) ([]*mesh.Scanner, error) {
	switch {
	case mesh.IsRemoteInput(a.InputFile):
		log.Printf("Fetching scanner reports from %s", a.InputFile)
		return mesh.FetchScanners(ctx, a.InputFile)
	case a.InputFile != "":
		return mesh.ParseScannerFile(a.InputFile)
	default:
		return mesh.ParseScanners(in)
	}
}

func (a *App) writeArtifacts(gm *mesh.GlobalMap, report *mesh.Report) error {
	if a.ReportFile != "" {
		if err := mesh.SaveReport(a.ReportFile, report); err != nil {
			return err
		}
		log.Printf("Saved report to %s", a.ReportFile)
	}

	if a.GeoJSONFile != "" {
		if err := mesh.SaveGeoJSON(a.GeoJSONFile, gm); err != nil {
			return err
		}
		log.Printf("Saved GeoJSON to %s", a.GeoJSONFile)
	}

	if a.RenderFile != "" {
		if err := a.render(gm); err != nil {
			return err
		}
	}
	return nil
}

// render writes the top-down map. With format "both" the path's extension is
// replaced by .png and .svg.
func (a *App) render(gm *mesh.GlobalMap) error {
	format := a.Config.Output.Format
	base := a.RenderFile
	if format == mesh.FormatBoth {
		base = strings.TrimSuffix(base, ".png")
		base = strings.TrimSuffix(base, ".svg")
	}

	if format == mesh.FormatRaster || format == mesh.FormatBoth {
		path := a.RenderFile
		if format == mesh.FormatBoth {
			path = base + ".png"
		}
		renderer := mesh.NewCompositeRenderer(gm)
		if a.Config.Output.Scale > 0 {
			renderer.Scale = a.Config.Output.Scale
		}
		if err := renderer.SavePNG(path); err != nil {
			return fmt.Errorf("rendering raster map: %w", err)
		}
		log.Printf("Saved raster map to %s", path)
	}

	if format == mesh.FormatVector || format == mesh.FormatBoth || format == "" {
		path := a.RenderFile
		if format == mesh.FormatBoth {
			path = base + ".svg"
		}
		if err := saveSVG(path, mesh.NewVectorRenderer(gm)); err != nil {
			return fmt.Errorf("rendering vector map: %w", err)
		}
		log.Printf("Saved vector map to %s", path)
	}
	return nil
}

func saveSVG(path string, r *mesh.VectorRenderer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := r.RenderToSVG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// publish sends the report to MQTT, connecting first unless a publisher was
// already provided.
func (a *App) publish(ctx context.Context, report *mesh.Report) error {
	if a.Publisher == nil {
		connectCtx, cancel := context.WithTimeout(ctx, mqttConnectTimeout)
		defer cancel()

		client, err := mesh.InitMQTT(connectCtx, a.Config.MQTT)
		if err != nil {
			return fmt.Errorf("initializing MQTT: %w", err)
		}
		a.MQTTClient = client
		defer func() {
			client.Disconnect()
			a.MQTTClient = nil
			a.Publisher = nil
		}()
		a.Publisher = mesh.NewPublisher(client.Client(), client.Prefix())
	}

	if err := a.Publisher.PublishReport(report); err != nil {
		return fmt.Errorf("publishing report: %w", err)
	}
	return nil
}

func printResults(out io.Writer, m mesh.Metrics) error {
	_, err := fmt.Fprintf(out, "Part 1: %d\nPart 2: %d\n", m.BeaconCount, m.MaxScannerDistance)
	return err
}
