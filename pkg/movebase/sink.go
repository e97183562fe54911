package movebase

import (
	"context"

	"github.com/golang/glog"

	"github.com/robotalks/movebase.go/pkg/l1"
)

// ConnSink sends velocity commands as Twist to a base controller.
type ConnSink struct {
	Conn l1.ControllerConn
}

// SendVelocity implements VelocitySink. The command result is only logged.
func (s *ConnSink) SendVelocity(ctx context.Context, cmd VelocityCommand) error {
	f := s.Conn.DoCommand(cmd.Twist())
	go func() {
		if res, ok := <-f.ResultChan(); ok && res.Err != nil {
			glog.V(2).Infof("twist %s: %v", cmd, res.Err)
		}
	}()
	return nil
}
