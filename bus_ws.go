package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const dialTimeout = 5 * time.Second

// WSBus is a peer's connection to a relay
type WSBus struct {
	conn   *websocket.Conn
	send   chan []byte
	frames chan []byte
	done   chan struct{}
	once   sync.Once
}

// DialWSBus connects to a relay's /ws endpoint
func DialWSBus(url string) (*WSBus, error) {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", url, err)
	}
	b := &WSBus{
		conn:   conn,
		send:   make(chan []byte, busBufSize),
		frames: make(chan []byte, busBufSize),
		done:   make(chan struct{}),
	}
	go b.writePump()
	go b.readPump()
	return b, nil
}

// Send queues a frame for the relay, dropping it if the queue is full
func (b *WSBus) Send(frame []byte) error {
	select {
	case <-b.done:
		return ErrBusClosed
	default:
	}
	select {
	case b.send <- frame:
	default:
		// Relay too slow, drop frame
	}
	return nil
}

// Frames returns frames relayed from other peers
func (b *WSBus) Frames() <-chan []byte {
	return b.frames
}

// Close sends a close message and tears the connection down
func (b *WSBus) Close() error {
	b.once.Do(func() {
		close(b.done)
		b.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		b.conn.Close()
	})
	return nil
}

// readPump is the only writer of frames and closes it on exit
func (b *WSBus) readPump() {
	defer func() {
		close(b.frames)
		b.Close()
	}()

	b.conn.SetReadLimit(maxMessageSize)
	b.conn.SetReadDeadline(time.Now().Add(pongWait))
	b.conn.SetPongHandler(func(string) error {
		b.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := b.conn.ReadMessage()
		if err != nil {
			select {
			case <-b.done:
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn("bus: relay read", "err", err)
				}
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		select {
		case b.frames <- message:
		default:
		}
	}
}

func (b *WSBus) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message := <-b.send:
			b.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := b.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				b.Close()
				return
			}
		case <-ticker.C:
			b.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := b.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				b.Close()
				return
			}
		case <-b.done:
			return
		}
	}
}
