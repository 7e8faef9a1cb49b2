package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/peekdata/datagateway-go/internal/config"
	"github.com/peekdata/datagateway-go/internal/logging"
	"github.com/peekdata/datagateway-go/internal/requests"
	"github.com/peekdata/datagateway-go/pkg/datagateway"
	"github.com/peekdata/datagateway-go/pkg/models"
)

var separator = strings.Repeat("-", 40)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	sample := flag.String("sample", "dimensions", "Sample request: dimensions or graph")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directories: %v\n", err)
		os.Exit(1)
	}

	logFile, err := os.Create(cfg.Output.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", cfg.Output.LogFile, err)
		os.Exit(1)
	}
	defer func() { _ = logFile.Close() }()

	logger, err := logging.NewFromConfig(cfg.Logging, logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		_ = logFile.Close()
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	out := io.MultiWriter(os.Stdout, logFile)
	if err := run(context.Background(), cfg, logger, out, *sample); err != nil {
		fmt.Fprintln(out, err)
		_ = logFile.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger, out io.Writer, sample string) error {
	request, err := sampleRequest(sample)
	if err != nil {
		return err
	}

	fmt.Fprint(out, "Peekdata Data API Gateway examples:\n\n")

	opts := []datagateway.Option{
		datagateway.WithTimeout(cfg.Gateway.Timeout),
		datagateway.WithLogger(logger),
	}
	if cfg.Gateway.APIKey != "" {
		opts = append(opts, datagateway.WithHeader("X-API-Key", cfg.Gateway.APIKey))
	}
	api := datagateway.NewClient(cfg.Gateway.Host, cfg.Gateway.Port, cfg.Gateway.Scheme, opts...)

	start := time.Now()
	healthy, err := api.HealthCheck(ctx)
	elapsed := millis(start)
	if !healthy {
		logging.Debug("Healthcheck failed", "url", api.BaseURL(), "error", err)
		fmt.Fprint(out, "Service is not available. Press <Enter> to continue...")
		_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
		if err == nil {
			err = errors.New("gateway reported unhealthy")
		}
		return fmt.Errorf("healthcheck failed: %w", err)
	}
	fmt.Fprintf(out, "Healthcheck ok (%.2fms).\n\n", elapsed)

	doc, err := models.Serialize(request)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Request serialized to JSON:\n%s\n%s\n%s\n\n", separator, doc, separator)

	start = time.Now()
	sql, err := api.GetSelect(ctx, request)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Got SELECT statement in (%.2fms):\n%s\n%s\n%s\n\n", millis(start), separator, sql, separator)

	start = time.Now()
	data, err := api.GetData(ctx, request)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Got DATA (%.2fms):\n%s\n%s\n%s\n\n", millis(start), separator, data, separator)

	start = time.Now()
	if _, err := api.GetCSV(ctx, request, cfg.Output.CSVFile); err != nil {
		return err
	}
	fmt.Fprintf(out, "DATA stored to file (%.2fms):\n%s\n%s\n%s\n\n", millis(start), separator, cfg.Output.CSVFile, separator)

	fmt.Fprintln(out, "END")
	return nil
}

func sampleRequest(name string) (*models.Request, error) {
	switch name {
	case "dimensions":
		return requests.TwoDimensionsTwoMetricsFilterAndSorting(), nil
	case "graph":
		return requests.TwoMetricsAndTwoFiltersFromSpecifiedGraph()
	}
	return nil, fmt.Errorf("unknown sample %q, use dimensions or graph", name)
}

func millis(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
