package hub

import (
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Presence is the live directory of online users. It maps a username to the
// single connection currently speaking for it; a fresh login for the same
// username supersedes the previous slot. Mutations happen only on the hub's
// run goroutine; lookups are safe from any goroutine.
type Presence struct {
	mu     sync.RWMutex
	online map[string]*Client
}

func newPresence() *Presence {
	return &Presence{
		online: make(map[string]*Client),
	}
}

// register inserts or overwrites the slot for the client's username and
// returns the superseded connection, if any.
func (p *Presence) register(c *Client) *Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	old := p.online[c.userName]
	if old == c {
		old = nil
	}
	p.online[c.userName] = c
	return old
}

// deregister removes the slot for the client's username only while the
// stored handle is still this client. A stale close from a superseded
// session must not evict the session that replaced it.
func (p *Presence) deregister(c *Client) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if current, ok := p.online[c.userName]; ok && current == c {
		delete(p.online, c.userName)
		return true
	}
	return false
}

// Lookup returns the connection currently registered for the username.
func (p *Presence) Lookup(userName string) (*Client, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c, ok := p.online[userName]
	return c, ok
}

// LookupOther returns the connection for the username only when it exists
// and is not the given connection. All "is the peer reachable, and is it
// someone else" checks go through here.
func (p *Presence) LookupOther(userName string, than *Client) (*Client, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c, ok := p.online[userName]
	if !ok || c == than {
		return nil, false
	}
	return c, true
}

// Snapshot returns the online usernames in sorted order.
func (p *Presence) Snapshot() []string {
	p.mu.RLock()
	names := lo.Keys(p.online)
	p.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Clients returns every registered connection.
func (p *Presence) Clients() []*Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return lo.Values(p.online)
}
