package session

import (
	"context"
	"fmt"
	"net"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Sean-Khorasani/net-copy/internal/channel"
	"github.com/Sean-Khorasani/net-copy/internal/crypto"
	"github.com/Sean-Khorasani/net-copy/internal/logging"
	"github.com/Sean-Khorasani/net-copy/internal/pathpolicy"
	"github.com/Sean-Khorasani/net-copy/internal/protocol"
	"github.com/Sean-Khorasani/net-copy/internal/transfer/server"
)

// ServerConfig is the immutable state shared, read-only, by every
// worker: no mutable state is ever shared between connections except
// this config and the pre-shared key.
type ServerConfig struct {
	ListenAddress string
	PresharedKey  []byte
	RequireAuth   bool
	Policy        *pathpolicy.Policy
	Version       string
}

// Server accepts connections and spawns one worker goroutine per
// connection.
type Server struct {
	cfg ServerConfig
	log logging.Logger
}

// NewServer builds a Server from cfg.
func NewServer(cfg ServerConfig) *Server {
	return &Server{cfg: cfg, log: logging.For("session.server")}
}

// Serve binds cfg.ListenAddress and accepts connections until ctx is
// cancelled or the listener errors. Each connection is handled by its
// own goroutine inside an errgroup, so a single worker's panic-free
// error never brings down the listener.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("session: listen on %s: %w", s.cfg.ListenAddress, err)
	}
	return s.ServeOn(ctx, ln)
}

// ServeOn accepts connections on an already-bound listener until ctx
// is cancelled or the listener errors. Split out from Serve so tests
// can bind an ephemeral port and learn its address before connecting.
func (s *Server) ServeOn(ctx context.Context, ln net.Listener) error {
	s.log.Infof("listening on %s", ln.Addr())
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	group, groupCtx := errgroup.WithContext(ctx)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return fmt.Errorf("session: accept: %w", err)
		}
		group.Go(func() error {
			s.handleConnection(groupCtx, conn)
			return nil
		})
	}
	return group.Wait()
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	// Closing the connection on cancellation unblocks a pending
	// ReceiveMessage so the worker returns and Serve can finish.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	sessionID := uuid.New().String()
	log := logging.For("session.worker")

	ch, result, err := channel.ServerHandshake(conn, s.cfg.PresharedKey, s.cfg.Version, s.cfg.RequireAuth)
	if err != nil {
		log.Errorf("session %s: handshake failed: %v", sessionID, err)
		return
	}
	log.Infof("session %s: handshake complete, peer=%s level=%s", sessionID, result.PeerVersion, result.AcceptedLevel)

	eng := server.New(s.cfg.Policy)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		msg, err := ch.ReceiveMessage()
		if err != nil {
			log.Infof("session %s: connection closed: %v", sessionID, err)
			return
		}
		switch m := msg.(type) {
		case *protocol.FileRequest:
			if err := ch.SendMessage(eng.HandleFileRequest(m)); err != nil {
				log.Errorf("session %s: send FileResponse: %v", sessionID, err)
				return
			}
		case *protocol.FileData:
			if err := ch.SendMessage(eng.HandleFileData(m)); err != nil {
				log.Errorf("session %s: send FileAck: %v", sessionID, err)
				return
			}
		default:
			log.Infof("session %s: ignoring unexpected message type %s", sessionID, m.Type())
		}
	}
}

// ClientSession is the client-side counterpart: a single outbound
// connection, handshaken and ready for a transfer/client.Engine.
type ClientSession struct {
	Conn    net.Conn
	Channel *channel.Channel
	Result  *channel.Result
}

// Connect dials addr and runs the client handshake, returning a ready
// secure channel. The client makes a single outbound connection per
// invocation.
func Connect(ctx context.Context, addr string, presharedKey []byte, level crypto.Level, clientVersion string, dialOpts DialOptions) (*ClientSession, error) {
	conn, err := Dial(ctx, addr, dialOpts)
	if err != nil {
		return nil, err
	}
	ch, result, err := channel.ClientHandshake(conn, presharedKey, clientVersion, level)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("session: client handshake: %w", err)
	}
	return &ClientSession{Conn: conn, Channel: ch, Result: result}, nil
}
