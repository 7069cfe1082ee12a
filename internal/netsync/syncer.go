package netsync

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"pokemon-arena/internal/config"
	"pokemon-arena/internal/game"
	"pokemon-arena/internal/logger"
	"pokemon-arena/internal/observability"
)

// Syncer is the world's Reconciler. Apply merges peer messages at the
// start of a frame; Flush publishes local changes at the end.
type Syncer struct {
	cfg       config.SyncConfig
	codec     Codec
	transport Transport
	authority *Authority
	clock     game.Clock
	log       *logrus.Entry

	playerLimiter *rate.Limiter
	enemyLimiter  *rate.Limiter

	lastSent     *PlayerState
	backoffUntil time.Time
}

// SyncerOptions configures a Syncer. Clock defaults to the system clock.
type SyncerOptions struct {
	Config    config.SyncConfig
	Codec     Codec
	Transport Transport
	Authority *Authority
	Clock     game.Clock
}

// NewSyncer builds a syncer for one client.
func NewSyncer(opts SyncerOptions) *Syncer {
	if opts.Codec == nil {
		opts.Codec = JSONCodec{}
	}
	if opts.Clock == nil {
		opts.Clock = game.SystemClock{}
	}
	if opts.Config.InboundBuffer <= 0 {
		opts.Config.InboundBuffer = config.DefaultSync().InboundBuffer
	}
	return &Syncer{
		cfg:           opts.Config,
		codec:         opts.Codec,
		transport:     opts.Transport,
		authority:     opts.Authority,
		clock:         opts.Clock,
		log:           logger.Log.WithField("uid", opts.Authority.Self()),
		playerLimiter: rate.NewLimiter(rate.Every(opts.Config.SendInterval), 1),
		enemyLimiter:  rate.NewLimiter(rate.Every(opts.Config.EnemySyncInterval), 1),
	}
}

// Authority returns the membership tracker.
func (s *Syncer) Authority() *Authority { return s.authority }

// BackingOff reports whether writes are currently suppressed.
func (s *Syncer) BackingOff() bool {
	return s.clock.Now().Before(s.backoffUntil)
}

// Apply drains queued peer messages into the world without blocking.
func (s *Syncer) Apply(w *game.World) {
	msgs := s.transport.Messages()
	for i := 0; i < s.cfg.InboundBuffer; i++ {
		var data []byte
		var ok bool
		select {
		case data, ok = <-msgs:
		default:
		}
		if !ok {
			break
		}
		s.handle(w, data)
	}
	if owner := s.authority.Owner(); owner != w.EnemyOwner() {
		w.SetEnemyOwner(owner)
	}
}

func (s *Syncer) handle(w *game.World, data []byte) {
	env, err := Decode(s.codec, data)
	if err != nil {
		observability.RecordInbound("decode_error")
		s.log.WithError(err).Debug("dropping undecodable message")
		return
	}
	if env.From == s.authority.Self() && !env.Kind.FromRelay() {
		observability.RecordInbound("self")
		return
	}
	if env.Kind.OwnerOnly() && !s.authority.IsOwner(env.From) {
		observability.RecordInbound("not_owner")
		return
	}
	err = s.dispatch(w, env)
	switch {
	case err == nil:
		observability.RecordInbound("applied")
	case errors.Is(err, game.ErrStale):
		observability.RecordInbound("stale")
	default:
		observability.RecordInbound("rejected")
		s.log.WithFields(logrus.Fields{
			"kind":  env.Kind,
			"from":  env.From,
			"error": err,
		}).Debug("peer message rejected")
	}
}

func (s *Syncer) dispatch(w *game.World, env Envelope) error {
	switch env.Kind {
	case KindPlayerState:
		var ps PlayerState
		if err := DecodePayload(s.codec, env, &ps); err != nil {
			return err
		}
		return w.UpsertRemotePlayer(ps.RemoteState(env.From))
	case KindAbility:
		var cast game.AbilityCast
		if err := DecodePayload(s.codec, env, &cast); err != nil {
			return err
		}
		cast.From = env.From
		return w.ApplyAbilityCast(cast)
	case KindStatus:
		var st game.StatusApply
		if err := DecodePayload(s.codec, env, &st); err != nil {
			return err
		}
		st.From = env.From
		return w.ApplyStatus(st)
	case KindPlayerHit:
		var hit game.PlayerHit
		if err := DecodePayload(s.codec, env, &hit); err != nil {
			return err
		}
		hit.From = env.From
		return w.ApplyPlayerHit(hit)
	case KindEnemyHit:
		var hit game.EnemyHit
		if err := DecodePayload(s.codec, env, &hit); err != nil {
			return err
		}
		hit.From = env.From
		return w.ApplyEnemyHit(hit)
	case KindEnemySpawn:
		var sp game.EnemySpawned
		if err := DecodePayload(s.codec, env, &sp); err != nil {
			return err
		}
		return w.ApplyEnemySpawn(sp)
	case KindEnemyState:
		var st EnemyState
		if err := DecodePayload(s.codec, env, &st); err != nil {
			return err
		}
		return w.ApplyEnemyState(st.Enemies)
	case KindEnemyRemove:
		var rm game.EnemyRemoved
		if err := DecodePayload(s.codec, env, &rm); err != nil {
			return err
		}
		return w.ApplyEnemyRemove(rm)
	case KindProjectile:
		var pf game.ProjectileFired
		if err := DecodePayload(s.codec, env, &pf); err != nil {
			return err
		}
		if pf.FromEnemy {
			if !s.authority.IsOwner(env.From) {
				return game.ErrNotOwner
			}
		} else {
			pf.OwnerID = env.From
		}
		return w.ApplyProjectileFired(pf)
	case KindWelcome:
		var wel Welcome
		if err := DecodePayload(s.codec, env, &wel); err != nil {
			return err
		}
		// A welcome follows every (re)connect; anyone missing from it left
		// while we were away.
		gone := s.authority.Replace(wel.Members, wel.Owner)
		for _, uid := range gone {
			w.RemovePlayer(uid)
		}
		s.lastSent = nil
		s.log.WithFields(logrus.Fields{
			"lobby":   wel.LobbyID,
			"owner":   wel.Owner,
			"members": len(wel.Members),
			"stale":   len(gone),
		}).Info("🔗 Joined lobby")
		return nil
	case KindMemberJoined:
		var m Member
		if err := DecodePayload(s.codec, env, &m); err != nil {
			return err
		}
		s.authority.Join(m.UID, m.Username)
		// Newcomers need our state even if we stand still.
		s.lastSent = nil
		return nil
	case KindMemberLeft:
		var m Member
		if err := DecodePayload(s.codec, env, &m); err != nil {
			return err
		}
		w.RemovePlayer(m.UID)
		if s.authority.Leave(m.UID) {
			observability.RecordOwnerPromotion()
			s.log.WithFields(logrus.Fields{
				"left":  m.UID,
				"owner": s.authority.Owner(),
			}).Info("👑 Enemy owner promoted")
		}
		return nil
	case KindOwner:
		var o Owner
		if err := DecodePayload(s.codec, env, &o); err != nil {
			return err
		}
		s.authority.SetOwner(o.UID)
		return nil
	}
	return fmt.Errorf("unknown kind %q", env.Kind)
}

// Flush publishes the frame's outbound events, then the throttled player
// and enemy state.
func (s *Syncer) Flush(w *game.World) {
	now := s.clock.Now()
	self := s.authority.Self()

	for _, ev := range w.DrainOutbox() {
		s.send(now, Kind(game.KindOf(ev)), s.routeOf(ev), ev)
	}

	if local, ok := w.LocalState(now.UnixMilli()); ok {
		state := FromRemoteState(local)
		if !s.changed(state) {
			observability.RecordSyncSuppressed()
		} else if s.playerLimiter.AllowN(now, 1) {
			if s.send(now, KindPlayerState, "", state) {
				s.lastSent = &state
			}
		}
	}

	if w.IsEnemyOwner() && s.authority.IsOwner(self) && w.EnemyCount() > 0 &&
		s.enemyLimiter.AllowN(now, 1) {
		s.send(now, KindEnemyState, "", EnemyState{Enemies: w.EnemySnapshots()})
	}
}

// routeOf picks the recipient for targeted events. Empty broadcasts.
func (s *Syncer) routeOf(ev game.Outbound) string {
	switch e := ev.(type) {
	case game.StatusApply:
		return e.Target
	case game.PlayerHit:
		return e.Target
	case game.EnemyHit:
		return s.authority.Owner()
	}
	return ""
}

func (s *Syncer) changed(next PlayerState) bool {
	prev := s.lastSent
	if prev == nil {
		return true
	}
	eps := s.cfg.PositionEpsilon
	return math.Abs(next.X-prev.X) > eps ||
		math.Abs(next.Y-prev.Y) > eps ||
		next.Dir != prev.Dir ||
		next.Anim != prev.Anim ||
		next.Typing != prev.Typing ||
		next.Scale != prev.Scale ||
		next.Character != prev.Character
}

// send writes one envelope. During backoff writes are dropped; there is
// no retry queue.
func (s *Syncer) send(now time.Time, kind Kind, to string, payload interface{}) bool {
	if now.Before(s.backoffUntil) {
		observability.RecordSyncDropped("backoff")
		return false
	}
	data, err := Encode(s.codec, kind, s.authority.Self(), to, payload, now)
	if err != nil {
		observability.RecordSyncDropped("encode")
		s.log.WithError(err).Warn("encode failed")
		return false
	}
	if err := s.transport.Send(data); err != nil {
		if shouldBackOff(err) {
			s.backoffUntil = now.Add(s.cfg.BackoffWindow)
			observability.RecordBackoff()
			s.log.WithFields(logrus.Fields{
				"kind":  kind,
				"until": s.backoffUntil.Format(time.RFC3339),
			}).Warn("⏸️ Transport saturated, backing off")
		} else {
			observability.RecordSyncDropped("error")
			s.log.WithError(err).Debug("send failed")
		}
		return false
	}
	observability.RecordSyncSent(string(kind))
	return true
}
