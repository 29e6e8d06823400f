package service

import (
	"container/list"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/omriasta/core/internal/core/domain"
	"github.com/omriasta/core/pkg/cmap"
	"github.com/omriasta/core/pkg/token"
)

// AuthService authenticates bearer credentials against the configured
// access tokens and recognises requests from trusted networks.
type AuthService struct {
	mu              sync.RWMutex
	tokens          map[string]*domain.AccessToken
	trustedNetworks []*net.IPNet
	cache           *CredentialCache
}

// AuthServiceConfig holds configuration for AuthService.
type AuthServiceConfig struct {
	// Tokens are the access tokens accepted by the hub.
	Tokens []domain.AccessToken

	// TrustedNetworks are CIDRs (or single IPs) whose requests are
	// authenticated as the system user without a credential.
	TrustedNetworks []string

	// CacheTTL is how long a verified credential is remembered (default: 60s).
	CacheTTL time.Duration

	// CacheSize is the maximum number of remembered credentials (default: 10,000).
	CacheSize int
}

// DefaultAuthServiceConfig returns default configuration.
func DefaultAuthServiceConfig() *AuthServiceConfig {
	return &AuthServiceConfig{
		CacheTTL:  60 * time.Second,
		CacheSize: 10000,
	}
}

// NewAuthService creates a new AuthService.
func NewAuthService(config *AuthServiceConfig) (*AuthService, error) {
	if config == nil {
		config = DefaultAuthServiceConfig()
	}

	s := &AuthService{
		cache: NewCredentialCache(config.CacheSize, config.CacheTTL),
	}
	if err := s.Reload(config.Tokens, config.TrustedNetworks); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the accepted tokens and trusted networks and forgets every
// cached credential.
func (s *AuthService) Reload(tokens []domain.AccessToken, trusted []string) error {
	nets, err := ParseNetworks(trusted)
	if err != nil {
		return err
	}

	byID := make(map[string]*domain.AccessToken, len(tokens))
	for i := range tokens {
		t := tokens[i]
		if _, dup := byID[t.ID]; dup {
			return domain.ErrConfiguration.WithDetails("duplicate access token id " + t.ID)
		}
		byID[t.ID] = &t
	}

	s.mu.Lock()
	s.tokens = byID
	s.trustedNetworks = nets
	s.mu.Unlock()

	s.cache.Clear()
	return nil
}

// Authenticate validates a bearer credential of the form "<id>:<secret>" and
// returns the user it belongs to.
func (s *AuthService) Authenticate(ctx context.Context, credential string) (*domain.User, error) {
	id, secret, err := domain.ParseBearer(credential)
	if err != nil {
		return nil, err
	}

	if user := s.cache.Get(id, secret); user != nil {
		return user, nil
	}

	s.mu.RLock()
	t, ok := s.tokens[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrTokenInvalid.WithDetails("unknown token id")
	}

	// Argon2 - expensive, result is cached
	if !t.VerifySecret(secret) {
		return nil, domain.ErrTokenInvalid.WithDetails("invalid secret")
	}

	user := t.User()
	s.cache.Set(id, token.Fingerprint(secret), user)
	return user, nil
}

// IsTrustedNetwork reports whether ip belongs to a configured trusted network.
func (s *AuthService) IsTrustedNetwork(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.trustedNetworks {
		if n.Contains(parsed) {
			return true
		}
	}
	return false
}

// InvalidateCache forgets the cached credential for a token ID.
func (s *AuthService) InvalidateCache(id string) {
	s.cache.Delete(id)
}

// ParseNetworks parses CIDRs and single IPs into networks. A single IP is
// treated as a /32 (or /128) network.
func ParseNetworks(entries []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.Contains(entry, "/") {
			_, ipNet, err := net.ParseCIDR(entry)
			if err != nil {
				return nil, domain.ErrConfiguration.WithDetails(fmt.Sprintf("invalid network %q", entry)).WithCause(err)
			}
			nets = append(nets, ipNet)
			continue
		}

		ip := net.ParseIP(entry)
		if ip == nil {
			return nil, domain.ErrConfiguration.WithDetails(fmt.Sprintf("invalid network %q", entry))
		}
		bits := 128
		if ip4 := ip.To4(); ip4 != nil {
			ip = ip4
			bits = 32
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets, nil
}

// ============================================================================
// CredentialCache - LRU Cache for verified credentials
// ============================================================================

// CredentialCache implements an LRU cache with TTL for verified credentials.
// Entries are keyed by token ID and only match the secret fingerprint they
// were stored with.
type CredentialCache struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	order    *list.List // LRU order, front = most recently used
	capacity int
	ttl      time.Duration
}

type cacheEntry struct {
	id          string
	fingerprint string
	user        *domain.User
	expiresAt   time.Time
}

// NewCredentialCache creates a new CredentialCache with LRU eviction.
func NewCredentialCache(capacity int, ttl time.Duration) *CredentialCache {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &CredentialCache{
		items:    make(map[string]*list.Element),
		order:    list.New(),
		capacity: capacity,
		ttl:      ttl,
	}
}

// Get returns the cached user when the entry exists, has not expired and
// was stored with the fingerprint of secret.
func (c *CredentialCache) Get(id, secret string) *domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[id]
	if !exists {
		return nil
	}

	entry := elem.Value.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.order.Remove(elem)
		delete(c.items, id)
		return nil
	}
	if !token.Matches(secret, entry.fingerprint) {
		return nil
	}

	c.order.MoveToFront(elem)
	return entry.user
}

// Set remembers a verified credential, evicting the least recently used
// entries when at capacity.
func (c *CredentialCache) Set(id, fingerprint string, user *domain.User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[id]; exists {
		entry := elem.Value.(*cacheEntry)
		entry.fingerprint = fingerprint
		entry.user = user
		entry.expiresAt = time.Now().Add(c.ttl)
		c.order.MoveToFront(elem)
		return
	}

	for c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		delete(c.items, oldest.Value.(*cacheEntry).id)
		c.order.Remove(oldest)
	}

	c.items[id] = c.order.PushFront(&cacheEntry{
		id:          id,
		fingerprint: fingerprint,
		user:        user,
		expiresAt:   time.Now().Add(c.ttl),
	})
}

// Delete removes a cached credential.
func (c *CredentialCache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[id]; exists {
		c.order.Remove(elem)
		delete(c.items, id)
	}
}

// Clear removes all entries from the cache.
func (c *CredentialCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
}

// Size returns the current number of cached credentials.
func (c *CredentialCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// ============================================================================
// RateLimiterRegistry - per-client rate limiting
// ============================================================================

// RateLimiterRegistry keeps one token bucket per client key. Buckets of
// clients that stay quiet are dropped by Prune.
type RateLimiterRegistry struct {
	limiters *cmap.Map[string, *clientLimiter]
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// NewRateLimiterRegistry creates a registry allowing perSecond requests per
// second per key with the given burst. A non-positive burst defaults to
// perSecond.
func NewRateLimiterRegistry(perSecond float64, burst int) *RateLimiterRegistry {
	if burst <= 0 {
		burst = int(perSecond)
		if burst < 1 {
			burst = 1
		}
	}
	return &RateLimiterRegistry{
		limiters: cmap.NewStrings[*clientLimiter](cmap.DefaultShardCount),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		now:      time.Now,
	}
}

// GetOrCreate retrieves the limiter for key, creating it on first use.
func (r *RateLimiterRegistry) GetOrCreate(key string) *rate.Limiter {
	cl, _ := r.limiters.GetOrCreate(key, func() *clientLimiter {
		return &clientLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
	})
	cl.lastSeen.Store(r.now().UnixNano())
	return cl.limiter
}

// Allow consumes one token for key. It returns domain.ErrRateLimited with
// the suggested retry delay when the bucket is empty.
func (r *RateLimiterRegistry) Allow(key string) error {
	limiter := r.GetOrCreate(key)
	if limiter.Allow() {
		return nil
	}

	reservation := limiter.Reserve()
	delay := reservation.Delay()
	reservation.Cancel()

	return domain.ErrRateLimited.WithDetails("rate limit exceeded, retry after " + delay.String())
}

// Prune drops the buckets of keys not seen for idle and returns how many
// were dropped. A dropped client starts again with a full bucket.
func (r *RateLimiterRegistry) Prune(idle time.Duration) int {
	cutoff := r.now().Add(-idle).UnixNano()
	return r.limiters.DeleteFunc(func(_ string, cl *clientLimiter) bool {
		return cl.lastSeen.Load() < cutoff
	})
}

// RunPruner calls Prune(idle) every interval until ctx is done.
func (r *RateLimiterRegistry) RunPruner(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Prune(idle)
		}
	}
}

// Delete removes the limiter for key.
func (r *RateLimiterRegistry) Delete(key string) {
	r.limiters.Delete(key)
}

// Clear removes all limiters.
func (r *RateLimiterRegistry) Clear() {
	r.limiters.Clear()
}

// Len returns the number of tracked keys.
func (r *RateLimiterRegistry) Len() int {
	return r.limiters.Count()
}
