package directory

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/yukikurage/task-tracker-api/internal/logging"
)

const keyPrefix = "directory:"

// Cached is a read-through redis cache in front of another Directory. Redis
// calls go through a circuit breaker; when redis is down or the breaker is
// open, lookups go straight to the next Directory.
type Cached struct {
	next    Directory
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker
	ttl     time.Duration
}

func NewCached(next Directory, client *redis.Client, ttl time.Duration) *Cached {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "directory-cache",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})

	return &Cached{
		next:    next,
		client:  client,
		breaker: breaker,
		ttl:     ttl,
	}
}

// BreakerState reports the state of the redis circuit breaker.
func (c *Cached) BreakerState() gobreaker.State {
	return c.breaker.State()
}

func (c *Cached) ResolveByEmail(ctx context.Context, email string) (Entry, error) {
	return c.resolve(ctx, keyPrefix+"email:"+email, func() (Entry, error) {
		return c.next.ResolveByEmail(ctx, email)
	})
}

func (c *Cached) ResolveByID(ctx context.Context, id string) (Entry, error) {
	return c.resolve(ctx, keyPrefix+"id:"+id, func() (Entry, error) {
		return c.next.ResolveByID(ctx, id)
	})
}

func (c *Cached) ResolveEmails(ctx context.Context, emails []string) (map[string]Entry, error) {
	found := make(map[string]Entry, len(emails))
	for _, email := range emails {
		entry, err := c.ResolveByEmail(ctx, email)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		found[strings.ToLower(email)] = entry
	}
	return found, nil
}

func (c *Cached) resolve(ctx context.Context, key string, load func() (Entry, error)) (Entry, error) {
	if entry, ok := c.get(ctx, key); ok {
		return entry, nil
	}

	entry, err := load()
	if err != nil {
		return Entry{}, err
	}

	c.set(ctx, entry)
	return entry, nil
}

func (c *Cached) get(ctx context.Context, key string) (Entry, bool) {
	raw, err := c.breaker.Execute(func() (interface{}, error) {
		data, err := c.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		logging.Logger.WithError(err).WithField("key", key).Debug("directory cache read skipped")
		return Entry{}, false
	}

	data, ok := raw.([]byte)
	if !ok || data == nil {
		return Entry{}, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false
	}
	return entry, true
}

func (c *Cached) set(ctx context.Context, entry Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, err = c.breaker.Execute(func() (interface{}, error) {
		pipe := c.client.TxPipeline()
		pipe.Set(ctx, keyPrefix+"email:"+entry.Email, data, c.ttl)
		pipe.Set(ctx, keyPrefix+"id:"+entry.ID, data, c.ttl)
		_, err := pipe.Exec(ctx)
		return nil, err
	})
	if err != nil {
		logging.Logger.WithError(err).WithField("user_id", entry.ID).Debug("directory cache write skipped")
	}
}
