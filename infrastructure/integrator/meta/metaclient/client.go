package metaclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"
	metadomain "github.com/vfg2006/ads-sync-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/ads-sync-api/infrastructure/integrator/ratelimit"
	"github.com/vfg2006/ads-sync-api/internal/config"
	"github.com/vfg2006/ads-sync-api/internal/domain"
	"github.com/vfg2006/ads-sync-api/pkg/metrics"
)

// Platform é o nome usado em logs, métricas e erros
const Platform = "meta"

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

type Client interface {
	ListCampaigns(ctx context.Context, token, accountID string) ([]metadomain.Campaign, error)
	ListAdSets(ctx context.Context, token, accountID string, campaignIDs []string) ([]metadomain.AdSet, error)
	ListAds(ctx context.Context, token, accountID string, adSetIDs []string) ([]metadomain.Ad, error)
	ListAllAdSets(ctx context.Context, token, accountID string) ([]metadomain.AdSet, error)
	ListAllAds(ctx context.Context, token, accountID string) ([]metadomain.Ad, error)
	GetInsights(ctx context.Context, token string, query InsightsQuery) ([]metadomain.Insight, error)
	ExchangeToken(ctx context.Context, token string) (*TokenResponse, error)
}

type MetaClient struct {
	url          string
	appID        string
	appSecret    string
	pageLimit    int
	maxBatchSize int
	httpClient   *http.Client
	limiter      *ratelimit.Limiter
	breaker      *gobreaker.CircuitBreaker[[]byte]
}

// NewClient cria o cliente da Graph API. Toda chamada passa pelo limiter compartilhado
// da plataforma e pelo circuit breaker.
func NewClient(cfg *config.Config, limiter *ratelimit.Limiter) Client {
	timeout := cfg.Meta.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &MetaClient{
		url:          strings.TrimSuffix(cfg.Meta.URL, "/"),
		appID:        cfg.Meta.AppID,
		appSecret:    cfg.Meta.AppSecret,
		pageLimit:    cfg.Meta.PageLimit,
		maxBatchSize: cfg.Meta.MaxBatchSize,
		httpClient:   &http.Client{Timeout: timeout},
		limiter:      limiter,
		breaker:      newBreaker(Platform + "-graph-api"),
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		// Falhas de credencial, permissão e limite são da conta, não da plataforma
		IsSuccessful: func(err error) bool {
			return err == nil || domain.ClassOf(err) != domain.ErrorClassTransient
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logrus.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("meta: circuit breaker mudou de estado")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// do executa um GET e devolve o corpo de uma resposta 200.
// Qualquer falha sai daqui já traduzida para *domain.SyncError.
func (c *MetaClient) do(ctx context.Context, endpoint, requestURL string) ([]byte, error) {
	body, err := ratelimit.Schedule(ctx, c.limiter, func(ctx context.Context) ([]byte, error) {
		return c.breaker.Execute(func() ([]byte, error) {
			return c.roundTrip(ctx, endpoint, requestURL)
		})
	})
	if err != nil {
		var syncErr *domain.SyncError
		if !errors.As(err, &syncErr) {
			syncErr = TranslateError(endpoint, 0, nil, err)
		}
		metrics.PlatformCalls.WithLabelValues(Platform, endpoint, string(syncErr.Class)).Inc()
		return nil, syncErr
	}

	metrics.PlatformCalls.WithLabelValues(Platform, endpoint, "ok").Inc()
	return body, nil
}

func (c *MetaClient) roundTrip(ctx context.Context, endpoint, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, TranslateError(endpoint, 0, nil, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, TranslateError(endpoint, 0, nil, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, TranslateError(endpoint, resp.StatusCode, nil, fmt.Errorf("erro ao ler resposta: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, TranslateError(endpoint, resp.StatusCode, body, nil)
	}

	return body, nil
}

// accountNode aceita o id com ou sem o prefixo act_
func accountNode(accountID string) string {
	if strings.HasPrefix(accountID, "act_") {
		return accountID
	}
	return "act_" + accountID
}

// ChunkIDs divide ids em lotes de no máximo size elementos, preservando a ordem
func ChunkIDs(ids []string, size int) [][]string {
	if len(ids) == 0 {
		return nil
	}
	if size < 1 {
		size = len(ids)
	}

	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
