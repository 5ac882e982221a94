package sysinfo

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"

	"guessmac/internal/device"
	"guessmac/internal/hwaddr"
)

// Report describes the host for identification purposes.
type Report struct {
	Hostname        string `json:"hostname,omitempty"`
	OS              string `json:"os,omitempty"`
	Platform        string `json:"platform,omitempty"`
	PlatformVersion string `json:"platform_version,omitempty"`
	KernelVersion   string `json:"kernel_version,omitempty"`
	Arch            string `json:"arch,omitempty"`
	HostID          string `json:"host_id,omitempty"`

	MAC       string `json:"mac,omitempty"`
	DeviceID  string `json:"device_id,omitempty"`
	Stage     string `json:"stage,omitempty"`
	Interface string `json:"interface,omitempty"`
	Hint      string `json:"hint,omitempty"`
	// MACError is set when no MAC could be found; the rest of the report
	// is still filled in.
	MACError string `json:"mac_error,omitempty"`

	GoVersion string `json:"go_version"`
}

// Resolver runs a MAC guess and reports how it was found.
type Resolver interface {
	Resolve(ctx context.Context) (hwaddr.Result, error)
}

var hostInfo = host.InfoWithContext

// Collect gathers host facts and the primary MAC. Host facts the OS does not
// expose are left empty.
func Collect(ctx context.Context, r Resolver) Report {
	rep := Report{GoVersion: runtime.Version()}

	if info, err := hostInfo(ctx); err == nil && info != nil {
		rep.Hostname = info.Hostname
		rep.OS = info.OS
		rep.Platform = info.Platform
		rep.PlatformVersion = info.PlatformVersion
		rep.KernelVersion = info.KernelVersion
		rep.Arch = info.KernelArch
		rep.HostID = info.HostID
	}

	res, err := r.Resolve(ctx)
	if err != nil {
		rep.MACError = err.Error()
		return rep
	}
	rep.MAC = res.MAC
	rep.Stage = string(res.Stage)
	rep.Interface = res.Interface
	rep.Hint = res.Hint
	if id, err := device.FromMAC(res.MAC); err == nil {
		rep.DeviceID = id
	}
	return rep
}
