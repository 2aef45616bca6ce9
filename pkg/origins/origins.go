// Package origins decides whether a web origin may embed an account's
// widget. The decision is an exact set-membership check against the
// persisted allow-list; every failure mode denies.
package origins

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"dammi/pkg/accounts"
)

// ErrBadOrigin is returned by Normalize for input that does not reduce to
// a scheme://host[:port] origin.
var ErrBadOrigin = errors.New("origins: not a valid web origin")

// Normalize reduces a URL (typically an Origin or Referer header value) to
// its origin component. Only http and https are accepted.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrBadOrigin
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrBadOrigin
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", ErrBadOrigin
	}
	if u.Host == "" {
		return "", ErrBadOrigin
	}
	return scheme + "://" + strings.ToLower(u.Host), nil
}

// Resolver answers "may this origin load the widget for this account".
// Lookups are bounded by a timeout and retried once on transient store
// error; anything that still fails denies. An optional Redis client caches
// the origin set per account for a short TTL.
type Resolver struct {
	provider accounts.Provider
	rdb      *redis.Client
	log      *zap.SugaredLogger
	timeout  time.Duration
	cacheTTL time.Duration
}

func NewResolver(provider accounts.Provider, rdb *redis.Client, log *zap.SugaredLogger, timeout, cacheTTL time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Resolver{provider: provider, rdb: rdb, log: log, timeout: timeout, cacheTTL: cacheTTL}
}

// IsAllowed reports whether origin is an exact member of the account's
// allow-list. origin must already be normalized (see Normalize). Fails
// closed: lookup errors, timeouts, an empty allow-list, or a malformed
// origin all return false. It never panics past the handler boundary.
func (r *Resolver) IsAllowed(ctx context.Context, accountID, origin string) bool {
	if accountID == "" || origin == "" {
		return false
	}
	if norm, err := Normalize(origin); err != nil || norm != origin {
		return false
	}

	allowed, err := r.lookup(ctx, accountID)
	if err != nil {
		// One bounded retry on transient store failure, then deny.
		allowed, err = r.lookup(ctx, accountID)
		if err != nil {
			r.log.Warnw("origin allow-list lookup failed; denying", "account_id", accountID, "err", err)
			return false
		}
	}
	for _, a := range allowed {
		if a == origin {
			return true
		}
	}
	return false
}

func (r *Resolver) lookup(ctx context.Context, accountID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cacheKey := "widget_origins:" + accountID
	if r.rdb != nil {
		if members, err := r.rdb.SMembers(ctx, cacheKey).Result(); err == nil && len(members) > 0 {
			if len(members) == 1 && members[0] == emptyMarker {
				return nil, nil
			}
			return members, nil
		}
	}

	allowed, err := r.provider.ListWidgetOrigins(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if r.rdb != nil && r.cacheTTL > 0 {
		members := allowed
		if len(members) == 0 {
			// Cache the empty result too, so accounts with no registered
			// origins don't hammer the store.
			members = []string{emptyMarker}
		}
		vals := make([]interface{}, len(members))
		for i, m := range members {
			vals[i] = m
		}
		pipe := r.rdb.Pipeline()
		pipe.Del(ctx, cacheKey)
		pipe.SAdd(ctx, cacheKey, vals...)
		pipe.Expire(ctx, cacheKey, r.cacheTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			r.log.Debugw("origin cache write failed", "err", err)
		}
	}
	return allowed, nil
}

// emptyMarker is stored in Redis for accounts whose allow-list is empty.
// It can never collide with a real origin (no scheme).
const emptyMarker = "-"
