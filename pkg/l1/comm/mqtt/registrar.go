package mqtt

import (
	"context"
	"encoding/json"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	fx "github.com/robotalks/movebase.go/pkg/framework"
	"github.com/robotalks/movebase.go/pkg/l1"
	"github.com/robotalks/movebase.go/pkg/l1/comm"
)

// Registrar publishes an L1 controller on an MQTT broker. The controller
// announces itself with a retained TYPE/ID/meta message which is cleared
// on shutdown, or by the broker through the will when the connection is
// lost.
type Registrar struct {
	Queue *Queue
	Info  l1.ControllerInfo

	meta      []byte
	registrar comm.Registrar
}

// NewRegistrar creates a Registrar.
func NewRegistrar(brokerURL string, info l1.ControllerInfo) (*Registrar, error) {
	if !info.Ref.IsValid() {
		return nil, errors.Errorf("invalid controller ref %q", info.Ref)
	}
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, errors.Wrap(err, "encode meta")
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid broker URL %q", brokerURL)
	}
	opts.SetBinaryWill(topicPrefix+metaTopic(info.Ref), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("l1:" + info.Ref.Name())
	}
	r := &Registrar{Queue: NewQueue(opts, topicPrefix), Info: info, meta: meta}
	r.Queue.QoS, _ = QoSFromURL(brokerURL)
	r.Queue.OnConnect = r.announce
	r.registrar.Init(NewPacketReadWriter(r.Queue).ForController(info.Ref))
	return r, nil
}

func metaTopic(ref l1.ControllerRef) string {
	return ref.Name() + "/meta"
}

// SendEvent implements Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.registrar.SendEvent(ctx, msg)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.registrar)
	loop.AddRunnable(fx.NamedRun("mqtt-registrar", r))
}

// Run implements Runnable. It stays connected until ctx is done.
func (r *Registrar) Run(ctx context.Context) error {
	r.Queue.Connect()
	<-ctx.Done()
	r.Queue.PubWith(metaTopic(r.Info.Ref), nil, 1, true).Wait()
	glog.Infof("unregistered %s", r.Info.Ref)
	return r.Queue.Close()
}

// announce runs on every connect as a retained message can be cleared by
// the will while disconnected.
func (r *Registrar) announce(*Queue) {
	glog.Infof("registered %s", r.Info.Ref)
	r.Queue.PubWith(metaTopic(r.Info.Ref), r.meta, 1, true)
}
