// Package env provides host identity for receivers.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// appID scopes the hashed machine ID so it differs from other applications.
const appID = "ht12d"

// MachineID retrieves an ID unique to the host, hashed with the application
// ID so the raw machine ID isn't published. It falls back to the hostname.
func MachineID() string {
	id, err := machineid.ProtectedID(appID)
	if err == nil {
		return id[:16]
	}
	glog.Warningf("machine id unavailable: %v", err)
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "unknown"
}
