package telemetry

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"

	"github.com/sitepulse/backend/internal/infrastructure/config"
)

// Profiler manages the continuous profiling session
type Profiler struct {
	profiler *pyroscope.Profiler
	cfg      config.TelemetryConfig
	logger   *zap.Logger

	mu      sync.Mutex
	stopped bool
}

// NewProfiler starts continuous profiling when enabled in config
func NewProfiler(cfg config.TelemetryConfig, logger *zap.Logger) (*Profiler, error) {
	p := &Profiler{cfg: cfg, logger: logger.Named("profiler")}

	if !cfg.ProfilingEnabled {
		p.logger.Info("Continuous profiling disabled")
		return p, nil
	}
	if cfg.ProfilingEndpoint == "" {
		return nil, fmt.Errorf("profiling enabled but no endpoint configured")
	}

	// Mutex and block profiling are off by default; a modest sampling
	// fraction keeps the overhead acceptable for production.
	runtime.SetMutexProfileFraction(5)
	runtime.SetBlockProfileRate(5)

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ServiceName,
		ServerAddress:   cfg.ProfilingEndpoint,
		Logger:          &pyroscopeLogger{sugar: p.logger.Sugar()},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexCount,
			pyroscope.ProfileMutexDuration,
			pyroscope.ProfileBlockCount,
			pyroscope.ProfileBlockDuration,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("starting profiler: %w", err)
	}

	p.profiler = profiler
	p.logger.Info("Continuous profiling started",
		zap.String("endpoint", cfg.ProfilingEndpoint),
		zap.String("service_name", cfg.ServiceName))
	return p, nil
}

// Stop flushes and stops the profiling session. Safe to call more than once.
func (p *Profiler) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.profiler == nil || p.stopped {
		return nil
	}
	p.stopped = true

	if err := p.profiler.Stop(); err != nil {
		p.logger.Error("Error stopping profiler", zap.Error(err))
		return fmt.Errorf("stopping profiler: %w", err)
	}
	p.logger.Info("Profiler stopped")
	return nil
}

// pyroscopeLogger adapts zap to the pyroscope logger interface
type pyroscopeLogger struct {
	sugar *zap.SugaredLogger
}

func (l *pyroscopeLogger) Infof(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

func (l *pyroscopeLogger) Debugf(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

func (l *pyroscopeLogger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}
