// Package netsync reconciles the local simulation with lobby peers. It
// turns queued world events into wire messages, merges peer messages back
// into the world, and decides which client simulates enemies.
package netsync

import (
	"pokemon-arena/internal/game"
	"pokemon-arena/internal/mapgen"
)

// Kind identifies the payload carried by an Envelope.
type Kind string

// Peer message kinds. Event kinds share their names with game.KindOf.
const (
	KindPlayerState Kind = "playerState"
	KindAbility     Kind = "ability"
	KindStatus      Kind = "status"
	KindPlayerHit   Kind = "playerHit"
	KindEnemyHit    Kind = "enemyHit"
	KindEnemySpawn  Kind = "enemySpawn"
	KindEnemyState  Kind = "enemyState"
	KindEnemyRemove Kind = "enemyRemove"
	KindProjectile  Kind = "projectile"
)

// Relay message kinds. Only the relay sends these.
const (
	KindWelcome      Kind = "welcome"
	KindMemberJoined Kind = "memberJoined"
	KindMemberLeft   Kind = "memberLeft"
	KindOwner        Kind = "owner"
)

// OwnerOnly reports whether only the enemy owner may send the kind.
func (k Kind) OwnerOnly() bool {
	return k == KindEnemySpawn || k == KindEnemyState || k == KindEnemyRemove
}

// FromRelay reports whether the kind is reserved for the relay.
func (k Kind) FromRelay() bool {
	return k == KindWelcome || k == KindMemberJoined || k == KindMemberLeft || k == KindOwner
}

// Envelope is the unit exchanged with the relay. Payload is encoded with
// the same codec as the envelope. An empty To broadcasts to the lobby.
type Envelope struct {
	ID      string `json:"id" msgpack:"id"`
	Kind    Kind   `json:"kind" msgpack:"kind"`
	From    string `json:"from" msgpack:"from"`
	To      string `json:"to,omitempty" msgpack:"to,omitempty"`
	Sent    int64  `json:"sent" msgpack:"sent"` // unix ms
	Payload []byte `json:"payload,omitempty" msgpack:"payload,omitempty"`
}

// PlayerState is the mirror record a client keeps publishing about its
// own player. The sender's uid travels in the envelope.
type PlayerState struct {
	Username  string         `json:"username" msgpack:"username"`
	Character string         `json:"character" msgpack:"character"`
	X         float64        `json:"x" msgpack:"x"`
	Y         float64        `json:"y" msgpack:"y"`
	Dir       game.Direction `json:"dir" msgpack:"dir"`
	Anim      string         `json:"anim" msgpack:"anim"`
	Typing    bool           `json:"typing" msgpack:"typing"`
	Scale     float64        `json:"scale" msgpack:"scale"`
	Timestamp int64          `json:"timestamp" msgpack:"timestamp"`
}

// FromRemoteState builds the record for the local player.
func FromRemoteState(s game.RemoteState) PlayerState {
	return PlayerState{
		Username:  s.Name,
		Character: s.Character,
		X:         s.X,
		Y:         s.Y,
		Dir:       s.Dir,
		Anim:      s.Anim,
		Typing:    s.Typing,
		Scale:     s.Scale,
		Timestamp: s.Timestamp,
	}
}

// RemoteState converts the record for the world.
func (p PlayerState) RemoteState(uid string) game.RemoteState {
	return game.RemoteState{
		ID:        uid,
		Name:      p.Username,
		Character: p.Character,
		X:         p.X,
		Y:         p.Y,
		Dir:       p.Dir,
		Anim:      p.Anim,
		Typing:    p.Typing,
		Scale:     p.Scale,
		Timestamp: p.Timestamp,
	}
}

// EnemyState carries the owner's periodic enemy snapshots.
type EnemyState struct {
	Enemies []game.EnemySnapshot `json:"enemies" msgpack:"enemies"`
}

// Member identifies a lobby member.
type Member struct {
	UID      string `json:"uid" msgpack:"uid"`
	Username string `json:"username,omitempty" msgpack:"username,omitempty"`
}

// Owner announces the member that simulates enemies.
type Owner struct {
	UID string `json:"uid" msgpack:"uid"`
}

// Welcome is the first message a joining client receives.
type Welcome struct {
	LobbyID string        `json:"lobbyId" msgpack:"lobbyId"`
	Map     mapgen.Record `json:"map" msgpack:"map"`
	Owner   string        `json:"owner" msgpack:"owner"`
	Members []Member      `json:"members" msgpack:"members"`
}
