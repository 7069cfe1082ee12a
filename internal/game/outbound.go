package game

// Outbound is a simulation event that must cross the network boundary.
// The world queues them during a frame; the sync layer drains and encodes
// them at flush time. Nothing in this package talks to a transport.
type Outbound interface {
	outboundKind() string
}

// AbilityCast is broadcast to every lobby peer. Receivers switch on Name.
type AbilityCast struct {
	Name            string  `json:"name" msgpack:"name"`
	From            string  `json:"from" msgpack:"from"`
	TileX           int     `json:"tileX" msgpack:"tileX"`
	TileY           int     `json:"tileY" msgpack:"tileY"`
	X               float64 `json:"x,omitempty" msgpack:"x,omitempty"`
	Y               float64 `json:"y,omitempty" msgpack:"y,omitempty"`
	Target          string  `json:"target,omitempty" msgpack:"target,omitempty"`
	TargetCharacter string  `json:"targetCharacter,omitempty" msgpack:"targetCharacter,omitempty"`
	IsRevert        bool    `json:"isRevert,omitempty" msgpack:"isRevert,omitempty"`
	Flag            string  `json:"flag,omitempty" msgpack:"flag,omitempty"`
	Active          bool    `json:"active,omitempty" msgpack:"active,omitempty"`
	Duration        float64 `json:"duration,omitempty" msgpack:"duration,omitempty"`
	Range           float64 `json:"range,omitempty" msgpack:"range,omitempty"`
}

// Ability broadcast names understood by receivers.
const (
	CastSandSnare      = "sandSnare"
	CastPoisonTrail    = "poisonTrail"
	CastTransform      = "transform"
	CastIllusion       = "illusion"
	CastRevertIllusion = "revertIllusion"
	CastConfusionDance = "confusionDance"
	CastDarkRoom       = "darkRoom"
	CastBubble         = "bubble"
	CastSketch         = "sketch"
	CastToggle         = "toggle"
)

// StatusApply targets a single player with a timed status.
type StatusApply struct {
	Target   string     `json:"target" msgpack:"target"`
	Type     StatusType `json:"type" msgpack:"type"`
	Duration float64    `json:"duration" msgpack:"duration"`
	From     string     `json:"from" msgpack:"from"`
}

// PlayerHit reports damage dealt to a player owned by another client.
type PlayerHit struct {
	Target string  `json:"target" msgpack:"target"`
	Amount float64 `json:"amount" msgpack:"amount"`
	From   string  `json:"from" msgpack:"from"`
}

// EnemyHit reports damage a non-owner dealt to an owner-simulated enemy.
type EnemyHit struct {
	EnemyID         string  `json:"enemyId" msgpack:"enemyId"`
	Amount          float64 `json:"amount" msgpack:"amount"`
	SourceCharacter string  `json:"sourceCharacter" msgpack:"sourceCharacter"`
	From            string  `json:"from" msgpack:"from"`
}

// EnemySpawned announces a new owner-simulated enemy.
type EnemySpawned struct {
	Enemy EnemySnapshot `json:"enemy" msgpack:"enemy"`
}

// EnemyRemoved announces that an enemy left the world.
type EnemyRemoved struct {
	ID     string `json:"id" msgpack:"id"`
	Reason string `json:"reason" msgpack:"reason"`
}

// ProjectileFired lets peers draw a projectile they do not simulate.
type ProjectileFired struct {
	ID        string  `json:"id" msgpack:"id"`
	OwnerID   string  `json:"ownerId" msgpack:"ownerId"`
	X         float64 `json:"x" msgpack:"x"`
	Y         float64 `json:"y" msgpack:"y"`
	VX        float64 `json:"vx" msgpack:"vx"`
	VY        float64 `json:"vy" msgpack:"vy"`
	Lifetime  float64 `json:"lifetime" msgpack:"lifetime"`
	FromEnemy bool    `json:"fromEnemy" msgpack:"fromEnemy"`
}

func (AbilityCast) outboundKind() string     { return "ability" }
func (StatusApply) outboundKind() string     { return "status" }
func (PlayerHit) outboundKind() string       { return "playerHit" }
func (EnemyHit) outboundKind() string        { return "enemyHit" }
func (EnemySpawned) outboundKind() string    { return "enemySpawn" }
func (EnemyRemoved) outboundKind() string    { return "enemyRemove" }
func (ProjectileFired) outboundKind() string { return "projectile" }

// KindOf returns the wire kind for an outbound event.
func KindOf(o Outbound) string {
	return o.outboundKind()
}
