package api

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"pokemon-arena/internal/logger"
	"pokemon-arena/internal/mapgen"
	"pokemon-arena/internal/netsync"
	"pokemon-arena/internal/observability"
)

// Hub errors
var (
	ErrLobbyFull    = errors.New("lobby is full")
	ErrMemberExists = errors.New("uid already connected")
	ErrHubClosed    = errors.New("lobby closed")
)

const (
	// clientSendBuffer bounds frames queued for one member.
	clientSendBuffer = 256

	// writeWait bounds a single frame write.
	writeWait = 5 * time.Second

	// maxMessageSize caps a single inbound frame.
	maxMessageSize = 64 * 1024
)

// wsClient is one lobby member's connection.
type wsClient struct {
	uid  string
	name string
	ip   string
	conn *websocket.Conn
	send chan []byte
}

// LobbyHub fans messages out between the members of one lobby. It keeps
// the owner identity and each member's last player state so late joiners
// see everyone immediately.
type LobbyHub struct {
	lobbyID    string
	record     mapgen.Record
	codec      netsync.Codec
	maxMembers int
	log        *logrus.Entry

	mu        sync.RWMutex
	clients   map[string]*wsClient
	owner     string
	lastState map[string][]byte
	closed    bool
}

// NewLobbyHub creates an empty hub.
func NewLobbyHub(lobbyID string, record mapgen.Record, codec netsync.Codec, maxMembers int) *LobbyHub {
	return &LobbyHub{
		lobbyID:    lobbyID,
		record:     record,
		codec:      codec,
		maxMembers: maxMembers,
		log:        logger.Log.WithField("lobby", lobbyID),
		clients:    make(map[string]*wsClient),
		lastState:  make(map[string][]byte),
	}
}

func (h *LobbyHub) messageType() int {
	if h.codec.Binary() {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// join registers a member, sends it the welcome and the cached states of
// everyone else, and announces it. The first member becomes owner.
func (h *LobbyHub) join(c *wsClient) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}
	if _, ok := h.clients[c.uid]; ok {
		return ErrMemberExists
	}
	if h.maxMembers > 0 && len(h.clients) >= h.maxMembers {
		return ErrLobbyFull
	}
	h.clients[c.uid] = c
	if h.owner == "" {
		h.owner = c.uid
	}

	now := time.Now()
	h.deliverLocked(c, netsync.KindWelcome, netsync.Welcome{
		LobbyID: h.lobbyID,
		Map:     h.record,
		Owner:   h.owner,
		Members: h.membersLocked(),
	}, now)
	for uid, state := range h.lastState {
		if uid != c.uid {
			enqueue(c, state)
		}
	}
	for uid, other := range h.clients {
		if uid != c.uid {
			h.deliverLocked(other, netsync.KindMemberJoined, netsync.Member{UID: c.uid, Username: c.name}, now)
		}
	}

	h.log.WithFields(logrus.Fields{
		"uid":     c.uid,
		"ip":      c.ip,
		"members": len(h.clients),
		"owner":   h.owner,
	}).Info("📱 Member joined")
	return nil
}

// leave unregisters a member. If it owned the lobby, the lowest remaining
// uid is promoted and announced.
func (h *LobbyHub) leave(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.clients[c.uid]; !ok || cur != c {
		return
	}
	delete(h.clients, c.uid)
	delete(h.lastState, c.uid)
	close(c.send)

	now := time.Now()
	for _, other := range h.clients {
		h.deliverLocked(other, netsync.KindMemberLeft, netsync.Member{UID: c.uid, Username: c.name}, now)
	}

	fields := logrus.Fields{"uid": c.uid, "members": len(h.clients)}
	if h.owner == c.uid {
		uids := make([]string, 0, len(h.clients))
		for uid := range h.clients {
			uids = append(uids, uid)
		}
		h.owner = netsync.PromoteLowest(uids)
		for _, other := range h.clients {
			h.deliverLocked(other, netsync.KindOwner, netsync.Owner{UID: h.owner}, now)
		}
		fields["owner"] = h.owner
		if h.owner != "" {
			h.log.WithFields(fields).Info("👑 Owner left, promoted successor")
			return
		}
	}
	h.log.WithFields(fields).Info("📱 Member left")
}

// relay routes one inbound frame from c.
func (h *LobbyHub) relay(c *wsClient, data []byte) {
	env, err := netsync.Decode(h.codec, data)
	if err != nil {
		observability.RecordInbound("relay_decode_error")
		return
	}
	if env.Kind.FromRelay() {
		observability.RecordInbound("relay_forged")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if env.Kind.OwnerOnly() && c.uid != h.owner {
		observability.RecordInbound("relay_not_owner")
		return
	}
	if env.From != c.uid {
		env.From = c.uid
		if data, err = netsync.Reencode(h.codec, env); err != nil {
			return
		}
	}
	if env.Kind == netsync.KindPlayerState {
		h.lastState[c.uid] = data
	}

	if env.To != "" {
		if target, ok := h.clients[env.To]; ok {
			enqueue(target, data)
		}
	} else {
		for uid, other := range h.clients {
			if uid != c.uid {
				enqueue(other, data)
			}
		}
	}
	observability.IncrementWSMessages()
}

func (h *LobbyHub) deliverLocked(c *wsClient, kind netsync.Kind, payload interface{}, now time.Time) {
	data, err := netsync.Encode(h.codec, kind, "", c.uid, payload, now)
	if err != nil {
		h.log.WithError(err).Error("encode relay message")
		return
	}
	enqueue(c, data)
}

// enqueue never blocks; a member that cannot keep up loses frames.
func enqueue(c *wsClient, data []byte) {
	select {
	case c.send <- data:
	default:
		observability.RecordSyncDropped("relay_backpressure")
	}
}

// writePump is the only writer for c.conn. It closes the connection
// when the send channel is closed.
func (h *LobbyHub) writePump(c *wsClient) {
	msgType := h.messageType()
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(msgType, data); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump relays frames until the connection fails.
func (h *LobbyHub) readPump(c *wsClient) {
	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		h.relay(c, data)
	}
}

func (h *LobbyHub) membersLocked() []netsync.Member {
	out := make([]netsync.Member, 0, len(h.clients))
	for uid, c := range h.clients {
		out = append(out, netsync.Member{UID: uid, Username: c.name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out
}

// Owner returns the uid that simulates enemies.
func (h *LobbyHub) Owner() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.owner
}

// Members returns the connected members ordered by uid.
func (h *LobbyHub) Members() []netsync.Member {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.membersLocked()
}

// ClientCount returns the number of connected members.
func (h *LobbyHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every member and refuses new ones.
func (h *LobbyHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for uid, c := range h.clients {
		delete(h.clients, uid)
		close(c.send)
	}
	h.lastState = make(map[string][]byte)
	h.owner = ""
}
