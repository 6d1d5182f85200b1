package server

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kivisql/kivi/store"
)

var ErrServerClosed = errors.New("server: closed")

// Client is a console session attached to a server, for example over ssh.
type Client struct {
	RuneReader io.RuneReader
	Writer     io.Writer
	User       string
	Type       string
	Addr       string
}

type Handler interface {
	Serve(c *Client)
}

type HandlerFunc func(c *Client)

func (f HandlerFunc) Serve(c *Client) {
	f(c)
}

type subServer interface {
	Close() error
	Shutdown(ctx context.Context) error
}

// Server serves SQL statements against a store, over the PostgreSQL wire
// protocol and optionally over ssh console sessions.
type Server[K any] struct {
	Store   store.Store[K]
	Handler Handler // console sessions

	mutex     sync.Mutex
	listeners map[net.Listener]struct{}
	conns     map[net.Conn]struct{}
	servers   map[subServer]struct{}
	connCount int32
	shutdown  bool
	closed    bool
}

func (svr *Server[K]) addListener(l net.Listener) {
	svr.mutex.Lock()
	defer svr.mutex.Unlock()

	if svr.listeners == nil {
		svr.listeners = map[net.Listener]struct{}{}
	}
	svr.listeners[l] = struct{}{}
}

func (svr *Server[K]) addServer(ss subServer) {
	svr.mutex.Lock()
	defer svr.mutex.Unlock()

	if svr.servers == nil {
		svr.servers = map[subServer]struct{}{}
	}
	svr.servers[ss] = struct{}{}
}

func (svr *Server[K]) trackConn(conn net.Conn, add bool) bool {
	svr.mutex.Lock()
	defer svr.mutex.Unlock()

	if svr.closed {
		return false
	}
	if add {
		if svr.conns == nil {
			svr.conns = map[net.Conn]struct{}{}
		}
		svr.conns[conn] = struct{}{}
	} else {
		delete(svr.conns, conn)
	}
	return true
}

func (svr *Server[K]) closeListeners() error {
	var err error
	if !svr.shutdown {
		for l := range svr.listeners {
			cerr := l.Close()
			if err == nil {
				err = cerr
			}
		}
		svr.shutdown = true
	}
	return err
}

// Close stops listening and closes all active connections.
func (svr *Server[K]) Close() error {
	svr.mutex.Lock()
	defer svr.mutex.Unlock()

	if svr.closed {
		return nil
	}
	svr.closed = true

	err := svr.closeListeners()
	for conn := range svr.conns {
		conn.Close()
		delete(svr.conns, conn)
	}
	for ss := range svr.servers {
		cerr := ss.Close()
		if err == nil {
			err = cerr
		}
	}
	return err
}

// Shutdown stops listening and waits for active connections to finish or
// for the context to be done.
func (svr *Server[K]) Shutdown(ctx context.Context) error {
	svr.mutex.Lock()
	if svr.closed {
		svr.mutex.Unlock()
		return nil
	}
	err := svr.closeListeners()
	servers := make([]subServer, 0, len(svr.servers))
	for ss := range svr.servers {
		servers = append(servers, ss)
	}
	svr.mutex.Unlock()

	for _, ss := range servers {
		serr := ss.Shutdown(ctx)
		if err == nil {
			err = serr
		}
	}

	for atomic.LoadInt32(&svr.connCount) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return err
}
