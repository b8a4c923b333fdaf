package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SetupRoutes configures the relay's HTTP routes
func SetupRoutes(hub *Hub) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("relay: upgrade", "err", err)
			return
		}

		hub.TrackConnect(ip)

		peer := NewPeer(hub, conn, ip)
		if !hub.Register(peer) {
			hub.TrackDisconnect(ip)
			conn.Close()
			return
		}

		go peer.WritePump()
		go peer.ReadPump()
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		json.NewEncoder(w).Encode(hub.Stats())
	})

	return mux
}

// JoinURL is the bus URL peers pass to connect to a relay at host
func JoinURL(host string) string {
	return (&url.URL{Scheme: "ws", Host: host, Path: "/ws"}).String()
}

// PrintJoinQR writes the join URL and a terminal QR code for it
func PrintJoinQR(w io.Writer, joinURL string) error {
	qr, err := qrcode.New(joinURL, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("qr for %s: %w", joinURL, err)
	}
	fmt.Fprintf(w, "Join with: tank-arena play -bus %s\n", joinURL)
	_, err = io.WriteString(w, qr.ToSmallString(false))
	return err
}
