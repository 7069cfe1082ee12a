package netsync

import (
	"sort"
	"sync"
)

// Authority tracks lobby membership and which member simulates enemies.
// When the owner leaves, the member with the lowest uid takes over, so
// every client reaches the same answer without a vote.
type Authority struct {
	mu      sync.RWMutex
	self    string
	owner   string
	members map[string]string // uid -> username
}

// NewAuthority creates an authority for the local client.
func NewAuthority(self string) *Authority {
	return &Authority{
		self:    self,
		members: map[string]string{self: ""},
	}
}

// Join adds a member. Joining an empty-owner lobby makes nobody owner;
// the relay's welcome or owner message decides.
func (a *Authority) Join(uid, username string) {
	if uid == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.members[uid] = username
}

// Replace rebuilds membership from a relay welcome. Members missing from
// the list are dropped and returned in ascending order; self is always
// kept.
func (a *Authority) Replace(members []Member, owner string) []string {
	next := make(map[string]string, len(members)+1)
	for _, m := range members {
		if m.UID != "" {
			next[m.UID] = m.Username
		}
	}
	if _, ok := next[a.self]; !ok {
		next[a.self] = ""
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	var gone []string
	for uid := range a.members {
		if _, ok := next[uid]; !ok {
			gone = append(gone, uid)
		}
	}
	sort.Strings(gone)
	a.members = next
	a.owner = owner
	if owner != "" {
		if _, ok := next[owner]; !ok {
			next[owner] = ""
		}
	}
	return gone
}

// Leave removes a member and promotes a successor if it was the owner.
// It returns true when ownership changed.
func (a *Authority) Leave(uid string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.members[uid]; !ok {
		return false
	}
	delete(a.members, uid)
	if a.owner != uid {
		return false
	}
	a.owner = lowest(a.members)
	return true
}

// SetOwner records the owner announced by the relay.
func (a *Authority) SetOwner(uid string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.owner == uid {
		return false
	}
	a.owner = uid
	if uid != "" {
		if _, ok := a.members[uid]; !ok {
			a.members[uid] = ""
		}
	}
	return true
}

// Owner returns the current owner uid.
func (a *Authority) Owner() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.owner
}

// IsOwner reports whether uid is the owner.
func (a *Authority) IsOwner(uid string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return uid != "" && a.owner == uid
}

// Self returns the local uid.
func (a *Authority) Self() string { return a.self }

// Members returns the member uids in ascending order.
func (a *Authority) Members() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.members))
	for uid := range a.members {
		out = append(out, uid)
	}
	sort.Strings(out)
	return out
}

// Username returns the known username for a member.
func (a *Authority) Username(uid string) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.members[uid]
}

// PromoteLowest picks the lowest uid among members. Relays use it with
// their own membership sets.
func PromoteLowest(uids []string) string {
	if len(uids) == 0 {
		return ""
	}
	best := uids[0]
	for _, uid := range uids[1:] {
		if uid < best {
			best = uid
		}
	}
	return best
}

func lowest(members map[string]string) string {
	uids := make([]string, 0, len(members))
	for uid := range members {
		uids = append(uids, uid)
	}
	return PromoteLowest(uids)
}
