package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SAYREKAS/CryptoSphereAPI/internal/config"
	"github.com/SAYREKAS/CryptoSphereAPI/internal/models"
)

// StatsChannel carries TransactionAppliedEvent payloads from the apply path
// to the websocket manager.
const StatsChannel = "statistics.updates"

// Client is the statistics snapshot cache plus the pub/sub fan-out. All
// methods are best-effort: a cache or publish failure is logged, never
// propagated, so redis being down degrades the service to DB-only reads.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func New(cfg config.RedisConfig, log *slog.Logger) *Client {
	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: cfg.CacheTTL,
		log: log,
	}
}

func statsKey(userID, coinID uint) string {
	return fmt.Sprintf("stats:%d:%d", userID, coinID)
}

// GetStatistics returns the cached snapshot for a (user, coin) pair, or
// false on miss or any redis failure.
func (c *Client) GetStatistics(ctx context.Context, userID, coinID uint) (*models.StatisticsView, bool) {
	payload, err := c.rdb.Get(ctx, statsKey(userID, coinID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("statistics cache read failed", "error", err)
		}
		return nil, false
	}

	var view models.StatisticsView
	if err := json.Unmarshal(payload, &view); err != nil {
		c.log.Warn("dropping malformed statistics cache entry", "error", err)
		c.rdb.Del(ctx, statsKey(userID, coinID))
		return nil, false
	}

	return &view, true
}

func (c *Client) SetStatistics(ctx context.Context, userID, coinID uint, view models.StatisticsView) {
	payload, err := json.Marshal(view)
	if err != nil {
		c.log.Error("failed to marshal statistics snapshot", "error", err)
		return
	}

	if err := c.rdb.Set(ctx, statsKey(userID, coinID), payload, c.ttl).Err(); err != nil {
		c.log.Warn("statistics cache write failed", "error", err)
	}
}

func (c *Client) InvalidateStatistics(ctx context.Context, userID, coinID uint) {
	if err := c.rdb.Del(ctx, statsKey(userID, coinID)).Err(); err != nil {
		c.log.Warn("statistics cache invalidation failed", "error", err)
	}
}

// PublishStatsUpdate fans an applied-transaction event out to subscribers.
func (c *Client) PublishStatsUpdate(ctx context.Context, event models.TransactionAppliedEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		c.log.Error("failed to marshal statistics update event", "error", err)
		return
	}

	if err := c.rdb.Publish(ctx, StatsChannel, payload).Err(); err != nil {
		c.log.Warn("failed to publish statistics update", "error", err)
	}
}

// SubscribeStatsUpdates delivers raw event payloads until ctx is canceled.
func (c *Client) SubscribeStatsUpdates(ctx context.Context) <-chan []byte {
	out := make(chan []byte, 256)
	pubsub := c.rdb.Subscribe(ctx, StatsChannel)

	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				default:
					c.log.Warn("statistics update channel full, dropping message")
				}
			}
		}
	}()

	return out
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
