package tenants

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const invalidateChannel = "memberhub:tenant-cache:clear"

// Invalidator fans administrator-triggered cache clears out to every running
// instance over redis pub/sub. The local cache is process-private, so a
// clear issued on one instance would otherwise leave the others serving
// stale tenants until the TTL elapses. Nil-safe: with no redis configured,
// clears stay local.
type Invalidator struct {
	rdb      *redis.Client
	resolver *Resolver
	log      *zap.SugaredLogger
}

func NewInvalidator(rdb *redis.Client, resolver *Resolver, log *zap.SugaredLogger) *Invalidator {
	return &Invalidator{rdb: rdb, resolver: resolver, log: log}
}

// Clear invalidates locally and broadcasts to peers. host=="" clears all.
func (i *Invalidator) Clear(ctx context.Context, host string) {
	i.resolver.ClearCache(host)
	if i.rdb == nil {
		return
	}
	if err := i.rdb.Publish(ctx, invalidateChannel, host).Err(); err != nil {
		i.log.Warnw("cache invalidation publish failed", "err", err)
	}
}

// Listen subscribes for peer-issued clears and applies them locally until
// ctx is cancelled. Run it in its own goroutine.
func (i *Invalidator) Listen(ctx context.Context) {
	if i.rdb == nil {
		return
	}
	sub := i.rdb.Subscribe(ctx, invalidateChannel)
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			i.resolver.ClearCache(msg.Payload)
			i.log.Infow("tenant cache cleared by peer", "host", msg.Payload)
		}
	}
}
