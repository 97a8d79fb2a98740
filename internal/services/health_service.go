package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"pulseapi/internal/dataset"
	"pulseapi/pkg/contracts/domain"
)

// HealthService reports process and dataset health.
type HealthService struct {
	version   string
	buildTime string
	store     *dataset.Store
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Datasets  map[string]interface{} `json:"datasets,omitempty"`
}

// VersionInfo represents the version response
type VersionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// NewHealthService creates a new health service
func NewHealthService(version, buildTime string, store *dataset.Store, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		store:     store,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck reports overall health. The service is degraded when a dataset
// file is missing from the data directory.
func (s *HealthService) HealthCheck(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   s.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(s.startTime).Seconds(),
			"goroutines":     runtime.NumGoroutine(),
			"go_version":     runtime.Version(),
		},
		Datasets: map[string]interface{}{},
	}

	for _, id := range domain.AllDatasets() {
		schema, ok := dataset.SchemaFor(id)
		if !ok {
			continue
		}
		path := filepath.Join(s.store.DataDir(), schema.File)
		if _, err := os.Stat(path); err != nil {
			status.Status = "degraded"
			status.Datasets[string(id)] = map[string]interface{}{
				"status":  "missing",
				"message": fmt.Sprintf("file not found: %s", schema.File),
			}
			continue
		}
		status.Datasets[string(id)] = map[string]interface{}{"status": "available"}
	}

	if status.Status != "healthy" {
		s.logger.WarnContext(ctx, "health check degraded",
			slog.String("status", status.Status))
	}
	return status
}

// LivenessCheck reports that the process is alive.
func (s *HealthService) LivenessCheck(ctx context.Context) *HealthStatus {
	return &HealthStatus{
		Status:    "alive",
		Timestamp: time.Now().UTC(),
		Version:   s.version,
	}
}

// ReadinessCheck reports whether the service can serve dashboard views, i.e.
// the transactions dataset loads.
func (s *HealthService) ReadinessCheck(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    "ready",
		Timestamp: time.Now().UTC(),
		Version:   s.version,
	}
	if _, err := s.store.Transactions(ctx); err != nil {
		status.Status = "not_ready"
		status.Datasets = map[string]interface{}{
			string(domain.DatasetTransactions): map[string]interface{}{
				"status": "error", "message": err.Error(),
			},
		}
	}
	return status
}

// Version returns build and runtime information.
func (s *HealthService) Version() *VersionInfo {
	return &VersionInfo{
		Version:   s.version,
		BuildTime: s.buildTime,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}
