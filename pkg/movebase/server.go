package movebase

import (
	"context"
	"sync"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	fx "github.com/robotalks/movebase.go/pkg/framework"
	"github.com/robotalks/movebase.go/pkg/l1"
	"github.com/robotalks/movebase.go/pkg/l1/msgs"
)

type pendingGoal struct {
	goal    Goal
	preempt *PreemptToken
}

// Server accepts goals through L1 commands and executes them one at a time.
// A new goal preempts the current one, and only the latest pending goal is
// kept. A MoveBaseResult event is sent when a goal terminates.
type Server struct {
	Executor  *Executor
	Registrar l1.Registrar

	lock    sync.Mutex
	active  *pendingGoal
	pending *pendingGoal
	status  msgs.GoalStatus
	wakeCh  chan struct{}
}

// NewServer creates a Server.
func NewServer(executor *Executor, registrar l1.Registrar) *Server {
	s := &Server{
		Executor:  executor,
		Registrar: registrar,
		wakeCh:    make(chan struct{}, 1),
	}
	executor.Feedback = s.feedback
	return s
}

// Submit queues a goal and preempts the active one. A goal id is assigned
// if empty.
func (s *Server) Submit(ctx context.Context, goal Goal) string {
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	s.lock.Lock()
	if s.active != nil {
		s.active.preempt.Preempt()
	}
	replaced := s.pending
	s.pending = &pendingGoal{goal: goal, preempt: NewPreemptToken()}
	s.lock.Unlock()

	glog.Infof("goal %s accepted", goal.ID)
	if replaced != nil {
		s.publish(ctx, Result{GoalID: replaced.goal.ID, State: GoalPreempted, Err: ErrPreempted})
	}
	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
	return goal.ID
}

// Cancel preempts the goal with the id, or whichever goal is active or
// pending if id is empty. It returns false if no such goal exists.
func (s *Server) Cancel(ctx context.Context, id string) bool {
	s.lock.Lock()
	var dropped *pendingGoal
	if p := s.pending; p != nil && (id == "" || p.goal.ID == id) {
		dropped, s.pending = p, nil
	}
	found := dropped != nil
	if a := s.active; a != nil && (id == "" || a.goal.ID == id) {
		a.preempt.Preempt()
		found = true
	}
	s.lock.Unlock()

	if dropped != nil {
		s.publish(ctx, Result{GoalID: dropped.goal.ID, State: GoalPreempted, Err: ErrPreempted})
	}
	return found
}

// Status returns the status of the active goal, or the last finished one.
func (s *Server) Status() *msgs.GoalStatus {
	s.lock.Lock()
	defer s.lock.Unlock()
	st := s.status
	return &st
}

func (s *Server) feedback(fb Feedback) {
	s.lock.Lock()
	if s.active != nil && s.active.goal.ID == fb.GoalID {
		s.status.Distance, s.status.YawError = fb.Distance, fb.YawError
	}
	s.lock.Unlock()
}

func (s *Server) publish(ctx context.Context, result Result) {
	glog.Infof("goal %s %s", result.GoalID, result.State)
	if s.Registrar == nil {
		return
	}
	if err := s.Registrar.SendEvent(ctx, &msgs.MoveBaseResult{Status: result.Status()}); err != nil {
		glog.Errorf("send result of goal %s error: %v", result.GoalID, err)
	}
}

// Run implements Runnable and executes goals sequentially.
func (s *Server) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wakeCh:
		}
		s.lock.Lock()
		g := s.pending
		s.pending, s.active = nil, g
		if g != nil {
			s.status = msgs.GoalStatus{GoalId: g.goal.ID, State: uint32(GoalRunning)}
		}
		s.lock.Unlock()
		if g == nil {
			continue
		}

		result := s.Executor.Execute(ctx, g.goal, g.preempt)

		s.lock.Lock()
		s.active = nil
		s.status = *result.Status()
		more := s.pending != nil
		s.lock.Unlock()
		s.publish(context.WithoutCancel(ctx), result)
		if more {
			select {
			case s.wakeCh <- struct{}{}:
			default:
			}
		}
	}
}

// Control implements Controller and handles move base commands.
func (s *Server) Control(cc fx.ControlContext) error {
	ctx := cc.Context()
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		cmdMsg, ok := mctx.CurrentMessage().(*l1.CommandMsg)
		if !ok {
			return
		}
		var reply fx.Message
		switch m := cmdMsg.Command.Msg().(type) {
		case *msgs.MoveBaseGoal:
			goal, err := GoalFromMsg(m.GoalId, m.TargetPose)
			if err != nil {
				reply = msgs.NewCommandErr(errors.Wrap(err, "invalid goal"))
				break
			}
			reply = &msgs.MoveBaseAccepted{GoalId: s.Submit(ctx, goal)}
		case *msgs.MoveBaseCancel:
			if s.Cancel(ctx, m.GoalId) {
				reply = msgs.NewCommandOK()
			} else {
				reply = msgs.NewCommandErrFromMsg("no such goal")
			}
		case *msgs.MoveBaseStatusQuery:
			reply = &msgs.MoveBaseStatus{Status: s.Status()}
		default:
			return
		}
		mctx.MessageTaken()
		if err := cmdMsg.Command.Done(reply); err != nil {
			glog.Errorf("reply command error: %v", err)
		}
	}))
	return nil
}

// AddToLoop implements LoopAdder.
func (s *Server) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvControl, s)
	l.AddRunnable(fx.NamedRun("movebase", s))
}
