package mqtt

import (
	"slices"
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// Handler is the callback when a message is received. topic is relative
// to the topic prefix of the Queue.
type Handler func(topic string, payload []byte)

// ConnectHandler is to handle connect/disconnect events.
type ConnectHandler func(*Queue)

// Queue wraps an MQTT client, scoping all topics under TopicPrefix and
// fanning out messages to local subscriptions. A topic filter is only
// subscribed on the broker once regardless of the local subscriptions.
type Queue struct {
	Client       paho.Client
	TopicPrefix  string
	QoS          byte
	OnConnect    ConnectHandler
	OnDisconnect ConnectHandler

	lock    sync.RWMutex
	filters map[string][]*Subscription
}

// Subscription is a local subscription to a topic filter.
type Subscription struct {
	Token paho.Token

	queue   *Queue
	filter  string
	handler Handler
}

// NewQueue creates Queue.
func NewQueue(options *paho.ClientOptions, topicPrefix string) *Queue {
	q := &Queue{TopicPrefix: topicPrefix, filters: make(map[string][]*Subscription)}
	options.SetOnConnectHandler(q.OnConnectHandler)
	options.SetConnectionLostHandler(q.ConnectionLostHandler)
	q.Client = paho.NewClient(options)
	return q
}

// NewQueueFromURL creates Queue from a broker URL.
func NewQueueFromURL(brokerURL string) (*Queue, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	q := NewQueue(opts, topicPrefix)
	q.QoS, _ = QoSFromURL(brokerURL)
	return q, nil
}

// MatchTopic matches a topic against a filter with + and # wildcards.
func MatchTopic(topic, filter string) bool {
	levels, patterns := strings.Split(topic, "/"), strings.Split(filter, "/")
	for i, p := range patterns {
		if p == "#" {
			return i == len(patterns)-1
		}
		if i >= len(levels) {
			return false
		}
		if p != "+" && p != levels[i] {
			return false
		}
	}
	return len(levels) == len(patterns)
}

// Connect connects the client.
func (q *Queue) Connect() paho.Token {
	return q.Client.Connect()
}

// Close implements io.Closer.
func (q *Queue) Close() error {
	q.Client.Disconnect(0)
	return nil
}

// Sub subscribes a topic filter.
func (q *Queue) Sub(filter string, handler Handler) *Subscription {
	sub := &Subscription{queue: q, filter: filter, handler: handler}
	q.lock.Lock()
	subs := q.filters[filter]
	q.filters[filter] = append(subs, sub)
	q.lock.Unlock()

	if len(subs) == 0 {
		glog.V(2).Infof("SUB %q", q.TopicPrefix+filter)
		sub.Token = q.Client.Subscribe(q.TopicPrefix+filter, q.QoS, q.dispatch)
	} else {
		sub.Token = &paho.DummyToken{}
	}
	return sub
}

// Pub publishes to a topic with the QoS of the Queue.
func (q *Queue) Pub(topic string, payload []byte) paho.Token {
	return q.PubWith(topic, payload, q.QoS, false)
}

// PubWith publishes with QoS and retain settings.
func (q *Queue) PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token {
	return q.Client.Publish(q.TopicPrefix+topic, qos, retain, payload)
}

// Resubscribe subscribes all topic filters on the broker, after the
// session is lost.
func (q *Queue) Resubscribe() paho.Token {
	q.lock.RLock()
	filters := make(map[string]byte, len(q.filters))
	for filter := range q.filters {
		filters[q.TopicPrefix+filter] = q.QoS
		glog.V(2).Infof("SUB %q", q.TopicPrefix+filter)
	}
	q.lock.RUnlock()
	if len(filters) == 0 {
		return &paho.DummyToken{}
	}
	return q.Client.SubscribeMultiple(filters, q.dispatch)
}

// OnConnectHandler implements paho.OnConnectHandler.
func (q *Queue) OnConnectHandler(paho.Client) {
	glog.Info("connected")
	q.Resubscribe()
	if h := q.OnConnect; h != nil {
		h(q)
	}
}

// ConnectionLostHandler implements paho.ConnectionLostHandler.
func (q *Queue) ConnectionLostHandler(_ paho.Client, err error) {
	glog.Warningf("connection lost: %v", err)
	if h := q.OnDisconnect; h != nil {
		h(q)
	}
}

func (q *Queue) dispatch(_ paho.Client, msg paho.Message) {
	topic, ok := strings.CutPrefix(msg.Topic(), q.TopicPrefix)
	if !ok {
		return
	}
	glog.V(4).Infof("RCV %q", topic)
	for _, h := range q.handlersOf(topic) {
		h(topic, msg.Payload())
	}
}

func (q *Queue) handlersOf(topic string) []Handler {
	q.lock.RLock()
	defer q.lock.RUnlock()
	var handlers []Handler
	for filter, subs := range q.filters {
		if !MatchTopic(topic, filter) {
			continue
		}
		for _, sub := range subs {
			handlers = append(handlers, sub.handler)
		}
	}
	return handlers
}

// Close removes the subscription, and unsubscribes the topic filter on the
// broker when it's the last one.
func (s *Subscription) Close() error {
	q := s.queue
	q.lock.Lock()
	subs := slices.DeleteFunc(q.filters[s.filter], func(sub *Subscription) bool { return sub == s })
	if len(subs) > 0 {
		q.filters[s.filter] = subs
	} else {
		delete(q.filters, s.filter)
	}
	q.lock.Unlock()
	if len(subs) > 0 {
		return nil
	}
	glog.V(2).Infof("UNSUB %q", q.TopicPrefix+s.filter)
	token := q.Client.Unsubscribe(q.TopicPrefix + s.filter)
	token.Wait()
	return token.Error()
}
