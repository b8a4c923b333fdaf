package main

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 16384
	sendBufSize       = 256
	maxMessagesPerSec = 240 // one update per tick plus shots and chat
)

// Peer is one engine connected to the relay
type Peer struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
	msgCount   int
	msgResetAt time.Time
}

// NewPeer creates a new Peer
func NewPeer(hub *Hub, conn *websocket.Conn, remoteAddr string) *Peer {
	return &Peer{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump forwards binary frames from the connection to the hub
func (p *Peer) ReadPump() {
	defer func() {
		p.hub.TrackDisconnect(p.remoteAddr)
		p.hub.Unregister(p)
		p.conn.Close()
	}()

	p.conn.SetReadLimit(maxMessageSize)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		p.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("relay: ws read", "peer", p.remoteAddr, "err", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(p.msgResetAt) {
			p.msgCount = 0
			p.msgResetAt = now.Add(time.Second)
		}
		p.msgCount++
		if p.msgCount > maxMessagesPerSec {
			log.Warn("relay: rate limit exceeded, disconnecting", "peer", p.remoteAddr)
			break
		}

		if msgType != websocket.BinaryMessage || len(message) == 0 {
			continue
		}
		p.hub.Publish(p, message)
	}
}

// WritePump writes queued frames to the connection
func (p *Peer) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()

	for {
		select {
		case message, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
