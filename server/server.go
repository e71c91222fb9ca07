package server

import (
	"evgate/internal"
	"evgate/internal/config"
	"evgate/utility"
	"fmt"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"net"
	"net/http"
	"sync"
)

const (
	wsEndpoint = "/ws/:id"
)

type Server struct {
	conf           *config.Config
	httpServer     *http.Server
	upgrader       websocket.Upgrader
	registry       *Registry
	messageHandler func(ws Connection, data []byte) error
	logger         internal.LogHandler
}

type WebSocket struct {
	conn   *websocket.Conn
	id     string
	mu     sync.Mutex
	closed bool
}

func (ws *WebSocket) ID() string {
	return ws.id
}

func (ws *WebSocket) IsClosed() bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.closed
}

func (ws *WebSocket) WriteMessage(data []byte) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.closed {
		return utility.Err(fmt.Sprintf("connection %s is closed", ws.id))
	}
	return ws.conn.WriteMessage(websocket.TextMessage, data)
}

func (ws *WebSocket) markClosed() {
	ws.mu.Lock()
	ws.closed = true
	ws.mu.Unlock()
}

func NewServer(conf *config.Config, logger internal.LogHandler) *Server {
	server := Server{
		conf:     conf,
		logger:   logger,
		registry: NewRegistry(),
		upgrader: websocket.Upgrader{Subprotocols: []string{}},
	}
	// register itself as a router for httpServer handler
	router := httprouter.New()
	server.Register(router)
	server.httpServer = &http.Server{
		Handler: router,
	}
	return &server
}

func (s *Server) AddSupportedSupProtocol(proto string) {
	for _, sub := range s.upgrader.Subprotocols {
		if sub == proto {
			return
		}
	}
	s.upgrader.Subprotocols = append(s.upgrader.Subprotocols, proto)
}

func (s *Server) SetMessageHandler(handler func(ws Connection, data []byte) error) {
	s.messageHandler = handler
}

func (s *Server) Registry() *Registry {
	return s.registry
}

func (s *Server) Register(router *httprouter.Router) {
	router.GET(wsEndpoint, s.handleWsRequest)
}

func (s *Server) handleWsRequest(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	id := params.ByName("id")
	s.logger.Debug(fmt.Sprintf("connection initiated from remote %s", r.RemoteAddr))

	s.upgrader.CheckOrigin = func(r *http.Request) bool {
		return true
	}

	clientSubProto := websocket.Subprotocols(r)
	requestedProto := ""
	for _, proto := range clientSubProto {
		if len(s.upgrader.Subprotocols) == 0 {
			// supporting all protocols
			requestedProto = proto
			break
		}
		if utility.Contains(s.upgrader.Subprotocols, proto) {
			requestedProto = proto
			break
		}
	}
	responseHeader := http.Header{}
	if requestedProto != "" {
		responseHeader.Add("Sec-WebSocket-Protocol", requestedProto)
	}

	conn, err := s.upgrader.Upgrade(w, r, responseHeader)
	if err != nil {
		s.logger.Error("upgrade failed: ", err)
		return
	}

	s.logger.Debug(fmt.Sprintf("upgraded socket for %s and ready to receive data", id))
	ws := WebSocket{
		conn: conn,
		id:   id,
	}
	s.registry.Touch(id, &ws)

	go s.messageReader(&ws)
}

func (s *Server) messageReader(ws *WebSocket) {
	conn := ws.conn
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, 3001) {
				s.logger.Debug(fmt.Sprintf("id %s leaving session", ws.id))
			} else {
				s.logger.Debug(fmt.Sprintf("id %s is closing session %s", ws.id, err))
			}
			ws.markClosed()
			s.registry.Drop(ws.id, ws)
			err = conn.Close()
			if err != nil {
				s.logger.Warn(fmt.Sprintf("error while closing socket %s %s", ws.id, err))
			}
			return
		}
		s.registry.Touch(ws.id, ws)
		s.logger.RawDataEvent("IN", string(message))
		if s.messageHandler != nil {
			err = s.messageHandler(ws, message)
			if err != nil {
				s.logger.Error(fmt.Sprintf("handling message from %s", ws.id), err)
				continue
			}
		}
	}
}

func (s *Server) Start() error {
	if s.conf == nil {
		return utility.Err("configuration not loaded")
	}
	serverAddress := fmt.Sprintf("%s:%s", s.conf.Listen.BindIP, s.conf.Listen.Port)
	s.logger.Debug(fmt.Sprintf("starting server on %s", serverAddress))
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}
	if s.conf.Listen.TLS {
		s.logger.Debug("starting https TLS server")
		err = s.httpServer.ServeTLS(listener, s.conf.Listen.CertFile, s.conf.Listen.KeyFile)
	} else {
		s.logger.Debug("starting http server")
		err = s.httpServer.Serve(listener)
	}
	return err
}

func (s *Server) SendResponse(ws Connection, response *CallResult) error {
	data, err := response.MarshalJSON()
	if err != nil {
		s.logger.Error("error encoding response", err)
		return err
	}
	s.logger.RawDataEvent("OUT", string(data))
	if err = ws.WriteMessage(data); err != nil {
		s.logger.Error("error sending response", err)
	}
	return err
}

func (s *Server) SendError(ws Connection, callError *CallError) error {
	data, err := callError.MarshalJSON()
	if err != nil {
		s.logger.Error("error encoding call error", err)
		return err
	}
	s.logger.RawDataEvent("OUT", string(data))
	if err = ws.WriteMessage(data); err != nil {
		s.logger.Error("error sending call error", err)
	}
	return err
}

// SendRequest resolves the charge point's connection and transmits a fresh
// call with its own correlation id. Returns the id the caller must wait on.
func (s *Server) SendRequest(chargePointId string, callRequest *CallRequest) error {
	connection, ok := s.registry.Resolve(chargePointId)
	if !ok {
		return utility.Err(fmt.Sprintf("charge point %s is not connected", chargePointId))
	}
	data, err := callRequest.MarshalJSON()
	if err != nil {
		return err
	}
	s.logger.RawDataEvent("OUT", string(data))
	return connection.WriteMessage(data)
}
