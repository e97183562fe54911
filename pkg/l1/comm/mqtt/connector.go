package mqtt

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/robotalks/movebase.go/pkg/l1"
	"github.com/robotalks/movebase.go/pkg/l1/comm"
)

// DefaultDiscoverTimeout is how long Discover collects retained metas.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// Connector finds controllers registered on an MQTT broker.
type Connector struct {
	DiscoverTimeout time.Duration

	options     *paho.ClientOptions
	topicPrefix string
	qos         byte
}

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	qos, _ := QoSFromURL(brokerURL)
	return &Connector{
		DiscoverTimeout: DefaultDiscoverTimeout,
		options:         opts,
		topicPrefix:     topicPrefix,
		qos:             qos,
	}, nil
}

func (c *Connector) newQueue() *Queue {
	q := NewQueue(c.options, c.topicPrefix)
	q.QoS = c.qos
	return q
}

// Discover implements Connector. It returns the controllers with a
// retained meta, sorted by name.
func (c *Connector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	timeout := c.DiscoverTimeout
	if timeout <= 0 {
		timeout = DefaultDiscoverTimeout
	}
	q := c.newQueue()
	if err := waitToken(ctx, q.Connect()); err != nil {
		return nil, errors.Wrap(err, "connect broker")
	}
	defer q.Close()

	var lock sync.Mutex
	found := make(map[string]l1.ControllerInfo)
	sub := q.Sub("+/+/meta", Handler(func(topic string, payload []byte) {
		if info, ok := parseMeta(topic, payload); ok {
			lock.Lock()
			found[info.Ref.Name()] = info
			lock.Unlock()
		}
	}))
	defer sub.Close()

	select {
	case <-time.After(timeout):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	lock.Lock()
	defer lock.Unlock()
	infos := make([]l1.ControllerInfo, 0, len(found))
	for _, name := range slices.Sorted(maps.Keys(found)) {
		infos = append(infos, found[name])
	}
	return infos, nil
}

// parseMeta parses the retained meta of a controller. An empty payload is
// published when the controller goes offline.
func parseMeta(topic string, payload []byte) (info l1.ControllerInfo, ok bool) {
	name, found := strings.CutSuffix(topic, "/meta")
	if !found || len(payload) == 0 {
		return
	}
	ref, err := l1.ParseControllerRef(name)
	if err != nil {
		glog.V(2).Infof("ignore meta on %q: %v", topic, err)
		return
	}
	info.Ref = ref
	if err := json.Unmarshal(payload, &info.Meta); err != nil {
		glog.V(2).Infof("invalid meta of %s: %v", ref, err)
	}
	return info, true
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	if !ref.IsValid() {
		return nil, errors.Errorf("invalid controller ref %q", ref)
	}
	conn := &ControllerConn{Queue: c.newQueue()}
	conn.Init(NewPacketReadWriter(conn.Queue).ForConnector(ref))
	if err := waitToken(ctx, conn.Queue.Connect()); err != nil {
		conn.Queue.Close()
		return nil, errors.Wrap(err, "connect broker")
	}
	return conn, nil
}

func waitToken(ctx context.Context, token paho.Token) error {
	done := make(chan struct{})
	go func() {
		token.Wait()
		close(done)
	}()
	select {
	case <-done:
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ControllerConn is a ControllerConn over a dedicated MQTT client.
type ControllerConn struct {
	comm.ControllerConn
	Queue *Queue
}

// Close fails pending commands and disconnects.
func (c *ControllerConn) Close() error {
	err := c.ControllerConn.Close()
	c.Queue.Close()
	return err
}
