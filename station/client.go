package station

import (
	"evgate/internal"
	"evgate/types"
	"evgate/utility"
	"fmt"
	"github.com/gorilla/websocket"
	"net/http"
	"sync"
	"time"
)

// Client keeps the charge point's websocket connection to the central
// system. Reconnection policy is left to the caller; a closed client
// reports failure on every write until Connect is called again.
type Client struct {
	endpoint       string
	chargePointId  string
	username       string
	password       string
	conn           *websocket.Conn
	mux            sync.Mutex
	closed         bool
	messageHandler func(data []byte) error
	logger         internal.LogHandler
}

func NewClient(endpoint string, chargePointId string, logger internal.LogHandler) *Client {
	return &Client{
		endpoint:      endpoint,
		chargePointId: chargePointId,
		closed:        true,
		logger:        logger,
	}
}

func (c *Client) SetBasicAuth(username, password string) {
	c.username = username
	c.password = password
}

func (c *Client) SetMessageHandler(handler func(data []byte) error) {
	c.messageHandler = handler
}

func (c *Client) ID() string {
	return c.chargePointId
}

func (c *Client) Connect() error {
	dialer := websocket.Dialer{
		Subprotocols:     []string{types.SubProtocol16},
		HandshakeTimeout: 30 * time.Second,
	}
	header := http.Header{}
	if c.username != "" {
		request, _ := http.NewRequest(http.MethodGet, c.endpoint, nil)
		request.SetBasicAuth(c.username, c.password)
		header.Set("Authorization", request.Header.Get("Authorization"))
	}
	url := fmt.Sprintf("%s/ws/%s", c.endpoint, c.chargePointId)
	conn, _, err := dialer.Dial(url, header)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", url, err)
	}
	c.mux.Lock()
	c.conn = conn
	c.closed = false
	c.mux.Unlock()
	c.logger.Debug(fmt.Sprintf("connected to central system at %s", url))

	go c.messageReader(conn)
	return nil
}

func (c *Client) messageReader(conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			c.logger.Debug(fmt.Sprintf("connection closed: %s", err))
			c.markClosed(conn)
			return
		}
		c.logger.RawDataEvent("IN", string(message))
		if c.messageHandler != nil {
			if err = c.messageHandler(message); err != nil {
				c.logger.Error("handling message from central system", err)
			}
		}
	}
}

func (c *Client) markClosed(conn *websocket.Conn) {
	c.mux.Lock()
	if c.conn == conn {
		c.closed = true
	}
	c.mux.Unlock()
	_ = conn.Close()
}

func (c *Client) IsConnected() bool {
	c.mux.Lock()
	defer c.mux.Unlock()
	return !c.closed
}

func (c *Client) WriteMessage(data []byte) error {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.closed || c.conn == nil {
		return utility.Err("not connected to central system")
	}
	c.logger.RawDataEvent("OUT", string(data))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) Close() {
	c.mux.Lock()
	conn := c.conn
	c.closed = true
	c.mux.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}
