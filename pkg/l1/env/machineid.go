package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID salts the machine id so the raw id is never published.
const AppID = "movebase"

// MachineID retrieves the unique ID identifying the machine, falling back
// to the hostname when the machine id is unavailable.
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err == nil {
		return id[:16]
	}
	glog.V(2).Infof("machine id unavailable: %v", err)
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "localhost"
}
