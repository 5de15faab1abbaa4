package server

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

const maxSentenceLength = 1024

// SentenceHandler receives every framed sentence read from a device connection.
type SentenceHandler interface {
	HandleSentence(remoteAddr, sentence string)
}

type SentenceHandlerFunc func(remoteAddr, sentence string)

func (f SentenceHandlerFunc) HandleSentence(remoteAddr, sentence string) {
	f(remoteAddr, sentence)
}

type TCPServer struct {
	addr        string
	readTimeout time.Duration
	handler     SentenceHandler
	logger      *zap.Logger

	listener net.Listener
	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	closed   bool
	wg       sync.WaitGroup
}

func NewTCPServer(addr string, readTimeout time.Duration, handler SentenceHandler, logger *zap.Logger) *TCPServer {
	return &TCPServer{
		addr:        addr,
		readTimeout: readTimeout,
		handler:     handler,
		logger:      logger,
		conns:       make(map[net.Conn]struct{}),
	}
}

func (s *TCPServer) Start() error {
	var err error
	s.listener, err = net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to start TCP server: %w", err)
	}

	s.logger.Info("TCP server listening", zap.String("addr", s.listener.Addr().String()))

	s.wg.Add(1)
	go s.acceptConnections()
	return nil
}

// Addr returns the bound listener address, useful when listening on port 0.
func (s *TCPServer) Addr() net.Addr {
	return s.listener.Addr()
}

// Stop closes the listener and every open connection, then waits for the
// connection goroutines to return.
func (s *TCPServer) Stop() {
	if s.listener != nil {
		s.listener.Close()
	}

	s.mu.Lock()
	s.closed = true
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *TCPServer) acceptConnections() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("Error accepting connection", zap.Error(err))
			continue
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()

		go s.handleConnection(conn)
	}
}

func (s *TCPServer) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	remote := conn.RemoteAddr().String()
	s.logger.Info("New connection", zap.String("remote", remote))

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 256), maxSentenceLength)
	scanner.Split(ScanSentences)

	for {
		if s.readTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		}
		if !scanner.Scan() {
			break
		}
		s.handler.HandleSentence(remote, scanner.Text())
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Warn("Error reading from connection", zap.String("remote", remote), zap.Error(err))
	}
	s.logger.Info("Connection closed", zap.String("remote", remote))
}

// ScanSentences is a bufio.SplitFunc yielding sentences terminated by '\n'
// or '\r'. Empty sentences are skipped; a trailing unterminated sentence is
// returned at EOF.
func ScanSentences(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) && (data[start] == '\n' || data[start] == '\r') {
		start++
	}
	if i := bytes.IndexAny(data[start:], "\r\n"); i >= 0 {
		return start + i + 1, data[start : start+i], nil
	}
	if atEOF && start < len(data) {
		return len(data), data[start:], nil
	}
	return start, nil, nil
}
