package dispatch

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"net"

	"github.com/dmitrijs2005/boardkeeper/internal/common"
	"github.com/dmitrijs2005/boardkeeper/internal/logging"
	"github.com/dmitrijs2005/boardkeeper/internal/protocol"
	"github.com/google/uuid"
)

// maxLineSize bounds one request line. Sealed posts travel base64-encoded,
// so this comfortably fits messages up to a few megabytes of plaintext.
const maxLineSize = 8 * 1024 * 1024

const msgInvalidRequest = "Invalid request."

// Server accepts connections and runs the one-request-one-response exchange
// on each. Transport concerns end here: TLS is optional and configured by
// the caller, timeouts are left to the deployment.
type Server struct {
	address    string
	tlsConfig  *tls.Config // nil means plain TCP
	dispatcher *Dispatcher
	logger     logging.Logger
}

func NewServer(address string, tlsConfig *tls.Config, d *Dispatcher, logger logging.Logger) *Server {
	return &Server{
		address:    address,
		tlsConfig:  tlsConfig,
		dispatcher: d,
		logger:     logger.With("module", "server"),
	}
}

// Run listens on the configured address and serves until ctx is canceled.
// A failure on any single connection never stops the accept loop.
func (s *Server) Run(ctx context.Context) error {
	var (
		listener net.Listener
		err      error
	)
	if s.tlsConfig != nil {
		listener, err = tls.Listen("tcp", s.address, s.tlsConfig)
	} else {
		listener, err = net.Listen("tcp", s.address)
	}
	if err != nil {
		return err
	}

	return s.Serve(ctx, listener)
}

// Serve accepts on an existing listener until ctx is canceled. Run wraps it;
// tests hand in a loopback listener bound to a free port.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping server...")
		_ = listener.Close()
	}()

	s.logger.Info(ctx, "Starting server", "address", listener.Addr().String())

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn(ctx, "accept failed", "error", err.Error())
			continue
		}

		go s.handleConn(ctx, conn)
	}
}

// handleConn runs the single-shot exchange: read one request line, dispatch
// it, write one response line, close. Both success and failure paths release
// the connection the same way.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	log := s.logger.With("conn_id", uuid.NewString(), "remote", conn.RemoteAddr().String())
	log.Debug(ctx, "client connected")

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			log.Warn(ctx, "read failed", "error", err.Error())
		}
		return
	}

	var resp protocol.Response

	req, err := protocol.ParseRequest(scanner.Bytes())
	switch {
	case errors.Is(err, common.ErrorValidation):
		log.Warn(ctx, "invalid request", "error", err.Error())
		resp = protocol.Status{OK: false, Payload: msgInvalidRequest}
	case err != nil:
		log.Error(ctx, "parse failed", "error", err.Error())
		resp = protocol.Status{OK: false, Payload: msgInvalidRequest}
	default:
		resp = s.dispatcher.Dispatch(ctx, req)
	}

	out, err := protocol.EncodeResponse(resp)
	if err != nil {
		log.Error(ctx, "encode failed", "error", err.Error())
		return
	}

	if _, err := conn.Write(append(out, '\n')); err != nil {
		// The store mutation, if any, is already durable; losing the
		// response only affects this client.
		log.Warn(ctx, "write failed", "error", err.Error())
	}
}
