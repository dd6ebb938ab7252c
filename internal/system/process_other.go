//go:build !unix

package system

import "fmt"

// osStarter is unavailable off unix: the native desktop stack needs
// process groups and an X server.
type osStarter struct{}

func (s *osStarter) Start(spec ProcessSpec) (Process, error) {
	return nil, fmt.Errorf("start %s: process supervision is only supported on unix", spec.Name)
}
