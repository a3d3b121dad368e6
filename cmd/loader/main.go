package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/partdesk/parts-assistant/internal/bootstrap"
	"github.com/partdesk/parts-assistant/internal/config"
	"github.com/partdesk/parts-assistant/internal/core/ports"
	"github.com/partdesk/parts-assistant/internal/infrastructure/importer/excel"
	"github.com/partdesk/parts-assistant/internal/observability/logging"
	"github.com/partdesk/parts-assistant/internal/observability/metrics"
)

const serviceName = "parts-loader"

func main() {
	file := flag.String("file", "", "load a single catalog file and exit")
	kind := flag.String("kind", "parts", "catalog file kind: parts, repairs or articles")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	loaderMetrics := metrics.NewLoaderMetrics(serviceName)

	if *file != "" {
		if err := loadFile(ctx, app, loaderMetrics, *kind, *file); err != nil {
			log.Fatalf("load %s: %v", *file, err)
		}
		logger.Info("catalog_file_loaded", "kind", *kind, "path", *file)
		return
	}

	go serveMetrics(cfg.LoaderMetricsPort, loaderMetrics, logger)

	logger.Info("loader_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeCatalogEvents(ctx, func(handlerCtx context.Context, event ports.CatalogEvent) error {
		loadCtx, cancel := context.WithTimeout(handlerCtx, 10*time.Minute)
		defer cancel()
		return loadFile(loadCtx, app, loaderMetrics, event.Kind, event.Path)
	})
	if err != nil {
		log.Fatalf("loader subscribe error: %v", err)
	}
}

// loadFile routes xlsx price sheets through the workbook importer; anything
// else is treated as a scraped JSON file.
func loadFile(ctx context.Context, app *bootstrap.App, m *metrics.LoaderMetrics, kind, path string) error {
	start := time.Now()
	m.StartLoad()

	var err error
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		parts, parseErr := excel.New().ParseWorkbook(path)
		if parseErr != nil {
			err = parseErr
		} else {
			err = app.Ingest.IngestParts(ctx, parts)
		}
	} else {
		err = app.Ingest.IngestFile(ctx, ports.CatalogEvent{Kind: kind, Path: path})
	}

	m.FinishLoad(serviceName, kind, time.Since(start), err)
	return err
}

func serveMetrics(port string, m *metrics.LoaderMetrics, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("loader_metrics_server_error", "error", err)
	}
}
