package pprof

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"sync"

	"github.com/codefionn/calcschnell/internal/logger"
)

// Config selects the profiles written by a Profiler. Empty paths are skipped.
type Config struct {
	CPUProfile  string // written while the profiler runs
	HeapProfile string // snapshot taken on Stop
}

// Enabled reports whether any profile is requested
func (c Config) Enabled() bool {
	return c.CPUProfile != "" || c.HeapProfile != ""
}

// Profiler writes CPU and heap profiles for one command run
type Profiler struct {
	config  Config
	cpuFile *os.File

	mu      sync.Mutex
	stopped bool
}

// Start begins CPU profiling when configured and returns the running profiler
func Start(config Config) (*Profiler, error) {
	p := &Profiler{config: config}
	if config.CPUProfile == "" {
		return p, nil
	}

	f, err := createFile(config.CPUProfile)
	if err != nil {
		return nil, fmt.Errorf("failed to create CPU profile file: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to start CPU profiling: %w", err)
	}
	p.cpuFile = f
	logger.Debug("pprof: writing CPU profile to %s", config.CPUProfile)
	return p, nil
}

// Stop finishes the CPU profile and writes the heap profile. Calling Stop
// more than once is a no-op.
func (p *Profiler) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil
	}
	p.stopped = true

	var errs []error
	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		if err := p.cpuFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close CPU profile: %w", err))
		}
		p.cpuFile = nil
	}

	if p.config.HeapProfile != "" {
		if err := writeHeapProfile(p.config.HeapProfile); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func writeHeapProfile(path string) error {
	f, err := createFile(path)
	if err != nil {
		return fmt.Errorf("failed to create heap profile file: %w", err)
	}
	defer f.Close()

	// Up-to-date allocation statistics
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("failed to write heap profile: %w", err)
	}
	logger.Debug("pprof: wrote heap profile to %s", path)
	return nil
}

func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.Create(path)
}
