package api

import (
	"errors"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pokemon-arena/internal/mapgen"
	"pokemon-arena/internal/netsync"
	"pokemon-arena/internal/observability"
)

// Lobby errors
var (
	ErrLobbyExists   = errors.New("lobby already exists")
	ErrLobbyNotFound = errors.New("lobby not found")
	ErrLobbyLimit    = errors.New("lobby limit reached")
	ErrInvalidLobby  = errors.New("invalid lobby id")
)

// Lobby is what the relay persists: the map record and the wire codec.
// The relay never simulates; it only fans messages out.
type Lobby struct {
	ID        string        `json:"id"`
	Map       mapgen.Record `json:"map"`
	Codec     string        `json:"codec"`
	CreatedAt time.Time     `json:"createdAt"`

	hub *LobbyHub
}

// Hub returns the lobby's connection hub.
func (l *Lobby) Hub() *LobbyHub { return l.hub }

// LobbyRequest is the body of a create call. Zero fields take defaults.
type LobbyRequest struct {
	ID     string `json:"id"`
	Width  int    `json:"w"`
	Height int    `json:"h"`
	Seed   uint32 `json:"seed"`
	Type   string `json:"type"`
	Codec  string `json:"codec"`
}

// Default lobby map size.
const (
	DefaultMapWidth  = 48
	DefaultMapHeight = 32
)

// LobbyStore holds lobbies in memory.
type LobbyStore struct {
	mu         sync.RWMutex
	lobbies    map[string]*Lobby
	maxLobbies int
	maxMembers int
}

// NewLobbyStore creates an empty store.
func NewLobbyStore(maxLobbies, maxMembers int) *LobbyStore {
	return &LobbyStore{
		lobbies:    make(map[string]*Lobby),
		maxLobbies: maxLobbies,
		maxMembers: maxMembers,
	}
}

// Create validates the request and stores a new lobby.
func (s *LobbyStore) Create(req LobbyRequest) (*Lobby, error) {
	codec, err := netsync.CodecByName(req.Codec)
	if err != nil {
		return nil, err
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}
	if len(id) > 64 || strings.ContainsAny(id, "/?# ") {
		return nil, ErrInvalidLobby
	}
	if req.Width <= 0 {
		req.Width = DefaultMapWidth
	}
	if req.Height <= 0 {
		req.Height = DefaultMapHeight
	}
	if req.Seed == 0 {
		req.Seed = rand.Uint32()
	}

	lobby := &Lobby{
		ID: id,
		Map: mapgen.Record{
			Width:  max(req.Width, mapgen.MinSize),
			Height: max(req.Height, mapgen.MinSize),
			Seed:   req.Seed,
			Type:   mapgen.ParseType(req.Type),
		},
		Codec:     codec.Name(),
		CreatedAt: time.Now().UTC(),
	}
	lobby.hub = NewLobbyHub(lobby.ID, lobby.Map, codec, s.maxMembers)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lobbies[id]; ok {
		return nil, ErrLobbyExists
	}
	if s.maxLobbies > 0 && len(s.lobbies) >= s.maxLobbies {
		return nil, ErrLobbyLimit
	}
	s.lobbies[id] = lobby
	observability.SetRelayLobbies(len(s.lobbies))
	return lobby, nil
}

// Get returns a lobby by id.
func (s *LobbyStore) Get(id string) (*Lobby, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lobbies[id]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	return l, nil
}

// Delete removes a lobby and disconnects its members.
func (s *LobbyStore) Delete(id string) error {
	s.mu.Lock()
	l, ok := s.lobbies[id]
	if ok {
		delete(s.lobbies, id)
	}
	n := len(s.lobbies)
	s.mu.Unlock()
	if !ok {
		return ErrLobbyNotFound
	}
	l.hub.Close()
	observability.SetRelayLobbies(n)
	return nil
}

// List returns lobbies ordered by id.
func (s *LobbyStore) List() []*Lobby {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Lobby, 0, len(s.lobbies))
	for _, l := range s.lobbies {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CloseAll disconnects every member of every lobby.
func (s *LobbyStore) CloseAll() {
	for _, l := range s.List() {
		l.hub.Close()
	}
}
