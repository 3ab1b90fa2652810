// SPDX-License-Identifier: Apache-2.0

package profiling

import (
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
)

type Config struct {
	// Address where the /debug/pprof endpoint is served. Empty disables it.
	Address string
	CPUFile string
	MemFile string
}

// Session is an in progress CPU profile. Stop writes the memory profile once
// the CPU profile has been flushed.
type Session struct {
	cpuFile *os.File
	memFile string
}

const (
	defaultCPUFile = "cpu.prof"
	defaultMemFile = "mem.prof"
)

// Start exposes the pprof endpoint, if configured, and starts the CPU
// profile.
func Start(cfg *Config) (*Session, error) {
	if cfg.Address != "" {
		go func() {
			http.ListenAndServe(cfg.Address, nil) //nolint:gosec
		}()
	}

	cpuFileName := cfg.CPUFile
	if cpuFileName == "" {
		cpuFileName = defaultCPUFile
	}
	cpuFile, err := os.Create(cpuFileName)
	if err != nil {
		return nil, fmt.Errorf("could not create CPU profile file: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		cpuFile.Close()
		return nil, fmt.Errorf("could not start CPU profile: %w", err)
	}

	memFile := cfg.MemFile
	if memFile == "" {
		memFile = defaultMemFile
	}
	return &Session{cpuFile: cpuFile, memFile: memFile}, nil
}

func (s *Session) Stop() error {
	pprof.StopCPUProfile()
	cpuErr := s.cpuFile.Close()
	return errors.Join(cpuErr, writeMemoryProfile(s.memFile))
}

func writeMemoryProfile(fileName string) error {
	memFile, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("could not create memory profile file: %w", err)
	}
	defer memFile.Close()

	runtime.GC()
	// allocs matches the output of go test -memprofile
	if err := pprof.Lookup("allocs").WriteTo(memFile, 0); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}
	return nil
}
