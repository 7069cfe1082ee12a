package netsync

import (
	"sort"
	"sync"
	"time"

	"pokemon-arena/internal/mapgen"
)

// Loopback is an in-process lobby. It routes envelopes between connected
// clients the way the relay does, which makes it suitable for offline
// play and tests.
type Loopback struct {
	mu      sync.Mutex
	codec   Codec
	lobbyID string
	record  mapgen.Record
	owner   string
	conns   map[string]*LoopbackConn
	buffer  int
}

// NewLoopback creates an empty lobby hub.
func NewLoopback(codec Codec, lobbyID string, record mapgen.Record, buffer int) *Loopback {
	if buffer <= 0 {
		buffer = 256
	}
	return &Loopback{
		codec:   codec,
		lobbyID: lobbyID,
		record:  record,
		conns:   make(map[string]*LoopbackConn),
		buffer:  buffer,
	}
}

// LoopbackConn is one client's end of a Loopback.
type LoopbackConn struct {
	hub  *Loopback
	uid  string
	name string
	ch   chan []byte

	mu      sync.Mutex
	fail    error
	closed  bool
	sent    int
}

// Connect joins uid to the lobby. The first member becomes the owner.
func (l *Loopback) Connect(uid, username string) *LoopbackConn {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := &LoopbackConn{hub: l, uid: uid, name: username, ch: make(chan []byte, l.buffer)}
	l.conns[uid] = c
	if l.owner == "" {
		l.owner = uid
	}

	now := time.Now()
	l.deliver(c, KindWelcome, "", Welcome{
		LobbyID: l.lobbyID,
		Map:     l.record,
		Owner:   l.owner,
		Members: l.membersLocked(),
	}, now)
	for id, other := range l.conns {
		if id != uid {
			l.deliver(other, KindMemberJoined, id, Member{UID: uid, Username: username}, now)
		}
	}
	return c
}

// Disconnect removes uid and announces it. If uid owned the lobby, the
// lowest remaining uid is promoted and announced.
func (l *Loopback) Disconnect(uid string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.conns[uid]
	if !ok {
		return
	}
	delete(l.conns, uid)
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
	c.mu.Unlock()

	now := time.Now()
	for id, other := range l.conns {
		l.deliver(other, KindMemberLeft, id, Member{UID: uid}, now)
	}
	if l.owner == uid {
		uids := make([]string, 0, len(l.conns))
		for id := range l.conns {
			uids = append(uids, id)
		}
		l.owner = PromoteLowest(uids)
		for id, other := range l.conns {
			l.deliver(other, KindOwner, id, Owner{UID: l.owner}, now)
		}
	}
}

// Owner returns the hub's current owner.
func (l *Loopback) Owner() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.owner
}

func (l *Loopback) membersLocked() []Member {
	out := make([]Member, 0, len(l.conns))
	for id, c := range l.conns {
		out = append(out, Member{UID: id, Username: c.name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out
}

func (l *Loopback) deliver(c *LoopbackConn, kind Kind, to string, payload interface{}, now time.Time) {
	data, err := Encode(l.codec, kind, "", to, payload, now)
	if err != nil {
		return
	}
	c.push(data)
}

func (l *Loopback) route(from string, data []byte) {
	env, err := Decode(l.codec, data)
	if err != nil || env.Kind.FromRelay() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if env.Kind.OwnerOnly() && from != l.owner {
		return
	}
	if env.From != from {
		env.From = from
		if data, err = Reencode(l.codec, env); err != nil {
			return
		}
	}
	if env.To != "" {
		if c, ok := l.conns[env.To]; ok {
			c.push(data)
		}
		return
	}
	for id, c := range l.conns {
		if id != from {
			c.push(data)
		}
	}
}

func (c *LoopbackConn) push(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.ch <- data:
	default:
	}
}

// Send routes data through the hub.
func (c *LoopbackConn) Send(data []byte) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.fail != nil {
		err := c.fail
		c.mu.Unlock()
		return err
	}
	c.sent++
	c.mu.Unlock()
	c.hub.route(c.uid, data)
	return nil
}

// Messages returns the inbound queue.
func (c *LoopbackConn) Messages() <-chan []byte { return c.ch }

// Close leaves the lobby.
func (c *LoopbackConn) Close() error {
	c.hub.Disconnect(c.uid)
	return nil
}

// FailWith makes subsequent sends return err. Nil restores delivery.
func (c *LoopbackConn) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail = err
}

// Sent returns how many sends were accepted.
func (c *LoopbackConn) Sent() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent
}
