package movebase

import (
	"context"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/robotalks/movebase.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/movebase.go/pkg/l1/msgs"
)

// GoalSubmitter accepts goals.
type GoalSubmitter interface {
	Submit(context.Context, Goal) string
}

// Relay subscribes a topic of PoseStamped messages and submits each as a
// new goal, without waiting for results.
type Relay struct {
	Queue     *mqtt.Queue
	Topic     string
	Submitter GoalSubmitter

	ctx context.Context
}

// NewRelay creates a Relay.
func NewRelay(q *mqtt.Queue, topic string, submitter GoalSubmitter) *Relay {
	return &Relay{Queue: q, Topic: topic, Submitter: submitter}
}

// Run implements Runnable.
func (r *Relay) Run(ctx context.Context) error {
	r.ctx = ctx
	token := r.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return errors.Wrap(err, "relay connect")
	}
	defer r.Queue.Close()
	sub := r.Queue.Sub(r.Topic, mqtt.Handler(r.handleMsg))
	defer sub.Close()
	glog.Infof("relaying goals from %s", r.Topic)
	<-ctx.Done()
	return ctx.Err()
}

func (r *Relay) handleMsg(topic string, payload []byte) {
	ctx := r.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := r.relay(ctx, payload); err != nil {
		glog.Warningf("relay %s: %v", topic, err)
	}
}

func (r *Relay) relay(ctx context.Context, payload []byte) error {
	msg, err := msgs.DecodeMessage(payload)
	if err != nil {
		return err
	}
	pose, ok := msg.(*msgs.PoseStamped)
	if !ok {
		return errors.Errorf("unexpected message %T", msg)
	}
	goal, err := GoalFromMsg("", pose)
	if err != nil {
		return err
	}
	r.Submitter.Submit(ctx, goal)
	return nil
}
