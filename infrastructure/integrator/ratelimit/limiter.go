// Package ratelimit limita a concorrência e o espaçamento das chamadas a cada plataforma externa.
// Existe uma instância por plataforma no processo, compartilhada por todas as organizações.
package ratelimit

import (
	"context"
	"time"

	"github.com/vfg2006/ads-sync-api/pkg/metrics"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Limiter garante no máximo N chamadas simultâneas e um intervalo mínimo entre o início de duas chamadas.
// Não faz retry nem interpreta falhas.
type Limiter struct {
	name          string
	maxConcurrent int64
	minInterval   time.Duration
	slots         *semaphore.Weighted
	pacer         *rate.Limiter
}

// New cria um Limiter. minInterval <= 0 desliga o espaçamento.
func New(name string, maxConcurrent int, minInterval time.Duration) *Limiter {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}

	return &Limiter{
		name:          name,
		maxConcurrent: int64(maxConcurrent),
		minInterval:   minInterval,
		slots:         semaphore.NewWeighted(int64(maxConcurrent)),
		pacer:         rate.NewLimiter(limit, 1),
	}
}

func (l *Limiter) Name() string {
	return l.name
}

// Do executa fn quando houver vaga e o espaçamento mínimo tiver sido respeitado.
// O erro de fn é devolvido sem alteração.
func (l *Limiter) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	started := time.Now()

	if err := l.slots.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.slots.Release(1)

	if err := l.pacer.Wait(ctx); err != nil {
		return err
	}

	metrics.LimiterWait.WithLabelValues(l.name).Observe(time.Since(started).Seconds())
	metrics.LimiterInFlight.WithLabelValues(l.name).Inc()
	defer metrics.LimiterInFlight.WithLabelValues(l.name).Dec()

	return fn(ctx)
}

// Schedule é a versão com resultado de Do
func Schedule[T any](ctx context.Context, l *Limiter, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := l.Do(ctx, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = fn(ctx)
		return innerErr
	})
	return result, err
}
