package services

import (
	"fmt"
	"latencyviz/internal/models"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

const (
	MB = 1024 * 1024
	GB = 1024 * 1024 * 1024
)

var processStart = time.Now()

// GetRuntimeStatus samples the simulator process and its host
func GetRuntimeStatus() (*models.RuntimeStatus, error) {
	pid := int32(os.Getpid())
	proc, err := process.NewProcess(pid)
	if err != nil {
		return nil, fmt.Errorf("open process %d: %w", pid, err)
	}

	status := &models.RuntimeStatus{
		PID:         pid,
		Goroutines:  runtime.NumGoroutine(),
		Uptime:      time.Since(processStart).Round(time.Second).String(),
		CollectedAt: time.Now(),
	}

	if pct, err := proc.CPUPercent(); err == nil {
		status.CPUPercent = pct
	} else {
		log.Printf("Warning: Could not get process CPU usage: %v", err)
	}

	memInfo, err := proc.MemoryInfo()
	if err != nil {
		return nil, fmt.Errorf("process memory: %w", err)
	}
	status.RSSMB = float64(memInfo.RSS) / MB

	if threads, err := proc.NumThreads(); err == nil {
		status.Threads = threads
	}

	if cores, err := cpu.Counts(true); err == nil {
		status.HostCores = cores
	} else {
		log.Printf("Warning: Could not get CPU core count: %v", err)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		status.HostMemoryPercent = vm.UsedPercent
		status.HostMemoryTotalGB = float64(vm.Total) / GB
	} else {
		log.Printf("Warning: Could not get host memory: %v", err)
	}

	return status, nil
}
