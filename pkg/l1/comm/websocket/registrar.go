package websocket

import (
	"context"
	"net"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/movebase.go/pkg/framework"
	"github.com/robotalks/movebase.go/pkg/l1/comm"
)

// DefaultPath is the HTTP path serving L1 connections.
const DefaultPath = "/l1"

// Registrar serves an L1 controller to direct websocket connections.
// Events are broadcast to all connected peers.
type Registrar struct {
	Addr string
	Path string

	lock     sync.Mutex
	peers    map[*comm.Registrar]struct{}
	listener net.Listener
	ready    chan struct{}
}

// NewRegistrar creates a Registrar listening on addr.
func NewRegistrar(addr string) *Registrar {
	return &Registrar{
		Addr:  addr,
		Path:  DefaultPath,
		peers: make(map[*comm.Registrar]struct{}),
		ready: make(chan struct{}),
	}
}

// SendEvent implements Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	r.lock.Lock()
	peers := make([]*comm.Registrar, 0, len(r.peers))
	for peer := range r.peers {
		peers = append(peers, peer)
	}
	r.lock.Unlock()
	var errs fx.AggregatedError
	for _, peer := range peers {
		errs.Add(peer.SendEvent(ctx, msg))
	}
	return errs.Aggregate()
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(l *fx.Loop) {
	l.AddRunnable(fx.NamedRun("websocket", r))
}

// ListenAddr returns the actual listening address once serving.
func (r *Registrar) ListenAddr() net.Addr {
	<-r.ready
	return r.listener.Addr()
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", r.Addr)
	}
	r.listener = ln
	close(r.ready)
	glog.Infof("serving websocket on %s%s", ln.Addr(), r.Path)

	mux := http.NewServeMux()
	mux.Handle(r.Path, websocket.Handler(func(conn *websocket.Conn) {
		r.serve(ctx, conn)
	}))
	server := &http.Server{Handler: mux}
	return fx.RunWithContextCloser(ctx, server, func() error {
		return server.Serve(ln)
	})
}

func (r *Registrar) serve(ctx context.Context, conn *websocket.Conn) {
	peer := &comm.Registrar{}
	peer.Init(New(conn))
	r.lock.Lock()
	r.peers[peer] = struct{}{}
	r.lock.Unlock()
	glog.V(2).Infof("websocket peer %s connected", conn.Request().RemoteAddr)
	err := peer.Run(ctx)
	r.lock.Lock()
	delete(r.peers, peer)
	r.lock.Unlock()
	glog.V(2).Infof("websocket peer %s disconnected: %v", conn.Request().RemoteAddr, err)
}
