package stresstest

import (
	"os"

	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// ProcessMemoryMB returns the resident set size of this process in MB, or 0
// when it cannot be read.
func ProcessMemoryMB() float64 {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		zap.S().Debugf("failed to inspect process: %v", err)
		return 0
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		zap.S().Debugf("failed to read memory info: %v", err)
		return 0
	}
	return float64(mem.RSS) / 1024 / 1024
}
