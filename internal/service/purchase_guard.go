package service

import (
	"context"
	"course_market_backend/internal/util"
	"course_market_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PurchaseGuard 防止同一 transactionId 的购买请求被并发处理
type PurchaseGuard interface {
	Acquire(ctx context.Context, transactionID string) (release func(), err error)
}

const purchaseLockPrefix = "purchase_lock:"

// 仅当锁仍归自己持有时才删除
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisPurchaseGuard struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewRedisPurchaseGuard(rdb *redis.Client, ttl time.Duration) *RedisPurchaseGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisPurchaseGuard{Redis: rdb, TTL: ttl}
}

func (g *RedisPurchaseGuard) Acquire(ctx context.Context, transactionID string) (func(), error) {
	key := purchaseLockPrefix + transactionID
	token := uuid.New().String()

	ok, err := g.Redis.SetNX(ctx, key, token, g.TTL).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrPurchaseInProgress
	}

	return func() {
		if err := releaseScript.Run(context.Background(), g.Redis, []string{key}, token).Err(); err != nil {
			logger.Log.Warn("failed to release purchase lock", zap.String("transactionId", transactionID), zap.Error(err))
		}
	}, nil
}

// NoopPurchaseGuard 未启用 Redis 时使用
type NoopPurchaseGuard struct{}

func (NoopPurchaseGuard) Acquire(ctx context.Context, transactionID string) (func(), error) {
	return func() {}, nil
}
