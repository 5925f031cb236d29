package emit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"kvsnap/internal/rdb"
)

func msToTime(ms uint64) time.Time {
	return time.UnixMilli(int64(ms))
}

// Live applies decoded events directly to a running Redis-protocol
// server via go-redis, throttled by a rate.Limiter the way FlowWriter
// throttles its batch writes. It is a supplemental emitter (SPEC_FULL
// §12.4): a consumer of decoded events, not a producer of the snapshot
// format.
type Live struct {
	rdb.NopEmitter
	client  *redis.Client
	ctx     context.Context
	limiter *rate.Limiter

	pendingExpiry uint64
	haveExpiry    bool
}

// NewLive connects to addr and returns a Live emitter. qps <= 0 means
// unthrottled.
func NewLive(ctx context.Context, addr, password string, qps int) (*Live, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("connect to live target %s: %w", addr, err)
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if qps > 0 {
		limiter = rate.NewLimiter(rate.Limit(qps), qps)
	}
	return &Live{client: client, ctx: ctx, limiter: limiter}, nil
}

func (l *Live) Close() error { return l.client.Close() }

func (l *Live) wait() error {
	if l.limiter.Limit() == rate.Inf {
		return nil
	}
	return l.limiter.Wait(l.ctx)
}

func (l *Live) preExpire(expiry uint64) {
	l.pendingExpiry = expiry
	l.haveExpiry = expiry != 0
}

func (l *Live) postExpire(key []byte) error {
	if !l.haveExpiry {
		return nil
	}
	l.haveExpiry = false
	if err := l.wait(); err != nil {
		return err
	}
	return l.client.PExpireAt(l.ctx, string(key), msToTime(l.pendingExpiry)).Err()
}

func (l *Live) StartDatabase(id uint64) error {
	if err := l.wait(); err != nil {
		return err
	}
	return l.client.Do(l.ctx, "SELECT", strconv.FormatUint(id, 10)).Err()
}

func (l *Live) Set(key, value []byte, expiry uint64) error {
	l.preExpire(expiry)
	if err := l.wait(); err != nil {
		return err
	}
	if err := l.client.Set(l.ctx, string(key), value, 0).Err(); err != nil {
		return err
	}
	return l.postExpire(key)
}

func (l *Live) StartHash(key []byte, _ uint64, expiry uint64, _ rdb.Encoding) error {
	l.preExpire(expiry)
	return nil
}
func (l *Live) EndHash(key []byte) error { return l.postExpire(key) }
func (l *Live) HashElement(key, field, value []byte) error {
	if err := l.wait(); err != nil {
		return err
	}
	return l.client.HSet(l.ctx, string(key), string(field), value).Err()
}

func (l *Live) StartSet(key []byte, _ uint64, expiry uint64, _ rdb.Encoding) error {
	l.preExpire(expiry)
	return nil
}
func (l *Live) EndSet(key []byte) error { return l.postExpire(key) }
func (l *Live) SetElement(key, member []byte) error {
	if err := l.wait(); err != nil {
		return err
	}
	return l.client.SAdd(l.ctx, string(key), member).Err()
}

func (l *Live) StartList(key []byte, _ uint64, expiry uint64, _ rdb.Encoding) error {
	l.preExpire(expiry)
	return nil
}
func (l *Live) EndList(key []byte) error { return l.postExpire(key) }
func (l *Live) ListElement(key, value []byte) error {
	if err := l.wait(); err != nil {
		return err
	}
	return l.client.RPush(l.ctx, string(key), value).Err()
}

func (l *Live) StartSortedSet(key []byte, _ uint64, expiry uint64, _ rdb.Encoding) error {
	l.preExpire(expiry)
	return nil
}
func (l *Live) EndSortedSet(key []byte) error { return l.postExpire(key) }
func (l *Live) SortedSetElement(key []byte, score float64, member []byte) error {
	if err := l.wait(); err != nil {
		return err
	}
	return l.client.ZAdd(l.ctx, string(key), redis.Z{Score: score, Member: string(member)}).Err()
}
