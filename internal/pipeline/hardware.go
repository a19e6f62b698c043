// Package pipeline implements the Orchestrator and WorkerPool of spec.md
// §4.1: a bounded-parallelism dispatcher that walks a corpus, joins each
// file against metadata, and runs one case per worker end-to-end.
package pipeline

import (
	"github.com/shirou/gopsutil/v3/cpu"
)

// DefaultWorkerCount picks W when the worker count is 0 (--workers 0 or
// WORKERS=0; an unset WORKERS means 4),
// grounded in the teacher's pkg/api/health.go use of gopsutil for runtime
// sizing decisions. It leaves headroom for the OS and other processes by
// using physical core count rather than logical (hyperthreaded) count.
func DefaultWorkerCount() int {
	cores, err := cpu.Counts(false)
	if err != nil || cores < 1 {
		return 4
	}
	if cores > 16 {
		return 16
	}
	return cores
}
