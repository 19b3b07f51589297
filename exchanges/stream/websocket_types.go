package stream

import (
	"sync"

	"github.com/gorilla/websocket"
)

// WebsocketConnection wraps a single gorilla websocket connection
type WebsocketConnection struct {
	Verbose   bool
	connected int32

	// Gorilla websocket does not allow more than one goroutine to utilise
	// writes methods
	writeControl sync.Mutex
	closeOnce    sync.Once

	ExchangeName string
	URL          string
	ProxyURL     string
	Connection   *websocket.Conn
}

// Response defines generalised data from the stream connection
type Response struct {
	Type int
	Raw  []byte
	// CloseCode is set when Type is websocket.CloseMessage
	CloseCode int
}
