package systeminfo

import (
	"fmt"
	"os"
	"runtime"

	"photodup/config"
	"photodup/logger"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
)

// SystemInfo identifies the machine a report was produced on.
type SystemInfo struct {
	Hostname      string `json:"hostname"`
	OSVersion     string `json:"os_version"`
	Platform      string `json:"platform,omitempty"`
	KernelVersion string `json:"kernel_version,omitempty"`
	CPUModel      string `json:"cpu_model,omitempty"`
	LogicalCores  int    `json:"logical_cores"`
	PhysicalCores int    `json:"physical_cores,omitempty"`
	GoVersion     string `json:"go_version"`
}

func GetSystemInfo(cfg *config.Config) (*SystemInfo, error) {
	sysInfo := &SystemInfo{
		OSVersion:    runtime.GOOS + "/" + runtime.GOARCH,
		LogicalCores: runtime.NumCPU(),
		GoVersion:    runtime.Version(),
	}
	if name, err := os.Hostname(); err == nil {
		sysInfo.Hostname = name
	}
	if cfg == nil || !cfg.CollectHostInfo {
		return sysInfo, nil
	}

	if err := gatherHost(sysInfo); err != nil {
		logger.Warnf("Failed to gather host information: %v", err)
	}
	if err := gatherCPU(sysInfo); err != nil {
		logger.Warnf("Failed to gather CPU information: %v", err)
	}
	return sysInfo, nil
}

func gatherHost(sysInfo *SystemInfo) error {
	info, err := host.Info()
	if err != nil {
		return fmt.Errorf("failed to get host info: %v", err)
	}
	if info.Hostname != "" {
		sysInfo.Hostname = info.Hostname
	}
	if info.Platform != "" {
		sysInfo.OSVersion = fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
		sysInfo.Platform = info.Platform
	}
	sysInfo.KernelVersion = info.KernelVersion
	return nil
}

func gatherCPU(sysInfo *SystemInfo) error {
	if physical, err := cpu.Counts(false); err == nil && physical > 0 {
		sysInfo.PhysicalCores = physical
	}
	infos, err := cpu.Info()
	if err != nil {
		return fmt.Errorf("failed to get cpu info: %v", err)
	}
	if len(infos) > 0 {
		sysInfo.CPUModel = infos[0].ModelName
	}
	return nil
}
