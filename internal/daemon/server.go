package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/triskellib/vscode/internal/host"
	"github.com/triskellib/vscode/internal/log"
	"github.com/triskellib/vscode/pkg/cache"
	"github.com/triskellib/vscode/pkg/layout"
)

// ServerOptions configures a Server.
type ServerOptions struct {
	SocketPath string
	Version    string
	CacheSize  int
	Logger     log.Logger
	Sizer      layout.TextSizer
	Space      layout.LayeredOptions
	// Clipboard is handed to every session; see host.Options.
	Clipboard func(text string) error
}

// Server accepts connections on a Unix socket and gives each one its own
// host session. Sessions share one parse cache; a stop command on any
// connection shuts the whole server down.
type Server struct {
	opts  ServerOptions
	cache *cache.Modules

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a server; call ListenAndServe to start it.
func NewServer(opts ServerOptions) *Server {
	if opts.SocketPath == "" {
		opts.SocketPath = DefaultSocketPath
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		opts:   opts,
		cache:  cache.NewModules(opts.CacheSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Done is closed once Shutdown has been called.
func (s *Server) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Cache returns the parse cache shared by all connections.
func (s *Server) Cache() *cache.Modules {
	return s.cache
}

// Listen binds the socket, replacing a stale socket file.
func (s *Server) Listen() error {
	if err := os.Remove(s.opts.SocketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing existing socket: %w", err)
	}
	l, err := net.Listen("unix", s.opts.SocketPath)
	if err != nil {
		return fmt.Errorf("listening on socket: %w", err)
	}
	if err := os.Chmod(s.opts.SocketPath, 0700); err != nil {
		l.Close()
		return fmt.Errorf("setting socket permissions: %w", err)
	}

	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	s.opts.Logger.Info("listening", "socket", s.opts.SocketPath)
	return nil
}

// Serve accepts connections until Shutdown. Listen must have succeeded.
func (s *Server) Serve() error {
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l == nil {
		return errors.New("server is not listening")
	}

	var tempDelay time.Duration
	for {
		conn, err := l.Accept()
		if err != nil {
			if s.ctx.Err() != nil {
				s.wg.Wait()
				return nil
			}
			if tempDelay == 0 {
				tempDelay = time.Millisecond
			} else {
				tempDelay *= 2
			}
			if tempDelay > time.Second {
				tempDelay = time.Second
			}
			s.opts.Logger.Warn("accept failed", "error", err, "retry", tempDelay)
			select {
			case <-time.After(tempDelay):
				continue
			case <-s.ctx.Done():
				s.wg.Wait()
				return nil
			}
		}
		tempDelay = 0

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// ListenAndServe binds the socket and serves until Shutdown.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	sess := host.NewSession(host.Options{
		Version:   s.opts.Version,
		Logger:    s.opts.Logger,
		Cache:     s.cache,
		Sizer:     s.opts.Sizer,
		Space:     s.opts.Space,
		Clipboard: s.opts.Clipboard,
		OnStop:    s.Shutdown,
	})
	s.opts.Logger.Debug("connection opened")
	if err := host.Serve(s.ctx, sess, conn, conn); err != nil {
		s.opts.Logger.Debug("connection ended", "error", err)
		return
	}
	s.opts.Logger.Debug("connection closed")
}

// Shutdown stops accepting and removes the socket file. Open connections
// finish their current response and close. Safe to call more than once.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return
	}
	s.cancel()
	s.opts.Logger.Info("shutting down")
	if s.listener != nil {
		s.listener.Close()
		os.Remove(s.opts.SocketPath)
	}
}
