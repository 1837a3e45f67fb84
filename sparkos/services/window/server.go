package window

import (
	"fmt"

	"spark/logging"
)

// Server holds every connected session's Client state. A real deployment
// wires one Server into a sparkos/kernel Server object and drives it from
// WaitForMessage/NextMessage; this type has no kernel dependency so it can
// be exercised directly in tests.
type Server struct {
	log     logging.Logger
	clients map[uint32]*Client
	nextID  uint32
}

// New returns an empty window Server.
func New(log logging.Logger) *Server {
	if log == nil {
		log = logging.Discard{}
	}
	return &Server{log: log, clients: make(map[uint32]*Client)}
}

// Init allocates a Client for a newly connected session (EWservMessInit)
// and returns it; the session's unique id is mirrored as the Client's
// numeric id.
func (s *Server) Init() *Client {
	s.nextID++
	c := newClient(s.nextID, s.log.Named("window"))
	s.clients[c.id] = c
	return c
}

// Client returns the session state for id, if still connected.
func (s *Server) Client(id uint32) (*Client, bool) {
	c, ok := s.clients[id]
	return c, ok
}

// CommandBuffer and SyncMsgBuf both route to the same command-buffer
// parser; the distinction between the two request codes is which IPC slot
// carries the byte stream, not the dispatch behavior, so both map here.
func (s *Server) CommandBuffer(id uint32, buf []byte) ([]Reply, error) {
	c, ok := s.clients[id]
	if !ok {
		return nil, fmt.Errorf("window: no client with id %d", id)
	}
	return c.Dispatch(buf)
}
