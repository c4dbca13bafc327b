package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/repository"
	"learning-access/internal/infra/metrics"
	red "learning-access/internal/infra/redis"
)

var _ repository.ProgramRepository = (*programRepoCacheDecorator)(nil)

const programListKey = "programs:all"

// programRepoCacheDecorator serves catalogue reads from Redis. Reads inside a
// transaction always go to the inner repository.
type programRepoCacheDecorator struct {
	inner repository.ProgramRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewProgramRepoCacheDecorator(inner repository.ProgramRepository, cache red.RedisClient) repository.ProgramRepository {
	return &programRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   1 * time.Hour,
	}
}

func programKey(id string) string { return fmt.Sprintf("program:%s", id) }

func (d *programRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Program, error) {
	if isTx(tx) {
		return d.inner.FindByID(ctx, tx, id)
	}
	key := programKey(id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		var p model.Program
		if json.Unmarshal([]byte(val), &p) == nil {
			metrics.IncCacheRequest("program", "hit")
			return &p, nil
		}
	}

	metrics.IncCacheRequest("program", "miss")
	p, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(p); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return p, nil
}

// Save drops the cached program and the cached list.
func (d *programRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, p *model.Program) error {
	_ = d.cache.Del(ctx, programKey(p.ID), programListKey)
	return d.inner.Save(ctx, tx, p)
}

func (d *programRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Program, error) {
	if val, err := d.cache.Get(ctx, programListKey); err == nil {
		var ps []*model.Program
		if json.Unmarshal([]byte(val), &ps) == nil {
			metrics.IncCacheRequest("program_list", "hit")
			return ps, nil
		}
	}

	metrics.IncCacheRequest("program_list", "miss")
	ps, err := d.inner.ListAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(ps) > 0 {
		if b, err := json.Marshal(ps); err == nil {
			_ = d.cache.Set(ctx, programListKey, b, d.ttl)
		}
	}
	return ps, nil
}
