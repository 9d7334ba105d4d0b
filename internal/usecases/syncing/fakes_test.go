package syncing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/vfg2006/ads-sync-api/internal/domain"
)

// memoryStore reproduz a semântica dos upserts do Postgres para os testes do pipeline
type memoryStore struct {
	mu              sync.Mutex
	clock           func() time.Time
	seq             int
	rows            map[domain.EntityKind]map[string]*domain.Entity
	upserts         map[domain.EntityKind]int
	failWrite       map[string]int
	analytics       map[domain.AnalyticsKey]*domain.AnalyticsRecord
	analyticsWrites int
}

func newMemoryStore(clock func() time.Time) *memoryStore {
	return &memoryStore{
		clock:     clock,
		rows:      make(map[domain.EntityKind]map[string]*domain.Entity),
		upserts:   make(map[domain.EntityKind]int),
		failWrite: make(map[string]int),
		analytics: make(map[domain.AnalyticsKey]*domain.AnalyticsRecord),
	}
}

func storeKey(accountID, externalID string) string {
	return accountID + ":" + externalID
}

func clone(e *domain.Entity) *domain.Entity {
	if e == nil {
		return nil
	}
	c := *e
	if e.ParentID != nil {
		p := *e.ParentID
		c.ParentID = &p
	}
	return &c
}

func (s *memoryStore) UpsertEntity(_ context.Context, entity *domain.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := s.failWrite[entity.ExternalID]; n > 0 {
		s.failWrite[entity.ExternalID] = n - 1
		return errors.New("conexão recusada")
	}

	byKey, ok := s.rows[entity.Kind]
	if !ok {
		byKey = make(map[string]*domain.Entity)
		s.rows[entity.Kind] = byKey
	}

	key := storeKey(entity.AccountID, entity.ExternalID)
	now := s.clock()

	if existing, ok := byKey[key]; ok {
		entity.ID = existing.ID
		entity.CreatedAt = existing.CreatedAt
		if entity.ParentID == nil && existing.ParentID != nil {
			entity.ParentID = existing.ParentID
		}
		entity.NeedsReconciliation = entity.NeedsReconciliation && existing.ParentID == nil
		entity.ChildrenPending = entity.ChildrenPending || existing.ChildrenPending
	} else {
		if entity.ID == "" {
			s.seq++
			entity.ID = fmt.Sprintf("%s-%d", entity.Kind, s.seq)
		}
		entity.CreatedAt = now
	}
	entity.UpdatedAt = now

	byKey[key] = clone(entity)
	s.upserts[entity.Kind]++
	return nil
}

func (s *memoryStore) FindByExternalID(_ context.Context, kind domain.EntityKind, accountID, externalID string) (*domain.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.rows[kind][storeKey(accountID, externalID)]), nil
}

func (s *memoryStore) ListByExternalIDs(_ context.Context, kind domain.EntityKind, accountID string, externalIDs []string) ([]*domain.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*domain.Entity
	for _, id := range externalIDs {
		if e, ok := s.rows[kind][storeKey(accountID, id)]; ok {
			result = append(result, clone(e))
		}
	}
	return result, nil
}

func (s *memoryStore) ListWhereParentNull(_ context.Context, kind domain.EntityKind, accountIDs []string) ([]*domain.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*domain.Entity
	for _, e := range s.rows[kind] {
		if e.ParentID == nil && slices.Contains(accountIDs, e.AccountID) {
			result = append(result, clone(e))
		}
	}
	slices.SortFunc(result, func(a, b *domain.Entity) int {
		return compareStrings(a.ExternalID, b.ExternalID)
	})
	return result, nil
}

func (s *memoryStore) SetParent(_ context.Context, kind domain.EntityKind, id, parentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.rows[kind] {
		if e.ID == id {
			p := parentID
			e.ParentID = &p
			e.NeedsReconciliation = false
			e.UpdatedAt = s.clock()
			return nil
		}
	}
	return fmt.Errorf("%s %s não encontrado", kind, id)
}

func (s *memoryStore) MarkChildrenSynced(_ context.Context, kind domain.EntityKind, accountID string, externalIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range externalIDs {
		if e, ok := s.rows[kind][storeKey(accountID, id)]; ok {
			e.ChildrenPending = false
		}
	}
	return nil
}

func (s *memoryStore) CountWhereParentNull(_ context.Context, accountIDs []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, kind := range []domain.EntityKind{domain.EntityKindAdGroup, domain.EntityKindAd} {
		for _, e := range s.rows[kind] {
			if e.ParentID == nil && slices.Contains(accountIDs, e.AccountID) {
				total++
			}
		}
	}
	return total, nil
}

func (s *memoryStore) Upsert(_ context.Context, records []*domain.AnalyticsRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		c := *r
		s.analytics[r.Key()] = &c
	}
	s.analyticsWrites += len(records)
	return len(records), nil
}

func (s *memoryStore) get(kind domain.EntityKind, accountID, externalID string) *domain.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.rows[kind][storeKey(accountID, externalID)])
}

func (s *memoryStore) count(kind domain.EntityKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows[kind])
}

func (s *memoryStore) totalUpserts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.upserts {
		total += n
	}
	return total
}

func (s *memoryStore) resetCounters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts = make(map[domain.EntityKind]int)
	s.analyticsWrites = 0
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// fakePlatform devolve uma hierarquia fixa e registra as chamadas recebidas
type fakePlatform struct {
	mu        sync.Mutex
	campaigns []domain.RemoteEntity
	adGroups  []domain.RemoteEntity
	ads       []domain.RemoteEntity

	campaignsErr error
	adGroupsErr  error
	analyticsErr error
	// extraAnalytics é anexado a cada resposta de insights
	extraAnalytics func(q domain.AnalyticsQuery) []domain.RemoteAnalytics

	adGroupCalls   [][]string
	adCalls        [][]string
	fetchAllCalls  []domain.EntityKind
	analyticsCalls []domain.AnalyticsQuery
}

func (f *fakePlatform) Name() string { return "fake" }

func (f *fakePlatform) FetchCampaigns(_ context.Context, _, _ string) ([]domain.RemoteEntity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.campaignsErr != nil {
		return nil, f.campaignsErr
	}
	return slices.Clone(f.campaigns), nil
}

func (f *fakePlatform) FetchAdGroups(_ context.Context, _, _ string, campaignExternalIDs []string) ([]domain.RemoteEntity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adGroupCalls = append(f.adGroupCalls, slices.Clone(campaignExternalIDs))
	if f.adGroupsErr != nil {
		return nil, f.adGroupsErr
	}
	return childrenOf(f.adGroups, campaignExternalIDs), nil
}

func (f *fakePlatform) FetchAds(_ context.Context, _, _ string, adGroupExternalIDs []string) ([]domain.RemoteEntity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adCalls = append(f.adCalls, slices.Clone(adGroupExternalIDs))
	return childrenOf(f.ads, adGroupExternalIDs), nil
}

func (f *fakePlatform) FetchAll(_ context.Context, _, _ string, kind domain.EntityKind) ([]domain.RemoteEntity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchAllCalls = append(f.fetchAllCalls, kind)
	switch kind {
	case domain.EntityKindCampaign:
		return slices.Clone(f.campaigns), nil
	case domain.EntityKindAdGroup:
		return slices.Clone(f.adGroups), nil
	}
	return slices.Clone(f.ads), nil
}

// FetchAnalytics devolve uma linha por campanha do lote, ou por anúncio das campanhas do lote
func (f *fakePlatform) FetchAnalytics(_ context.Context, _, _ string, q domain.AnalyticsQuery) ([]domain.RemoteAnalytics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyticsCalls = append(f.analyticsCalls, q)
	if f.analyticsErr != nil {
		return nil, f.analyticsErr
	}

	var ids []string
	switch q.Level {
	case domain.EntityKindCampaign:
		ids = q.CampaignExternalIDs
	case domain.EntityKindAd:
		groups := childrenOf(f.adGroups, q.CampaignExternalIDs)
		groupIDs := make([]string, 0, len(groups))
		for _, g := range groups {
			groupIDs = append(groupIDs, g.ExternalID)
		}
		for _, ad := range childrenOf(f.ads, groupIDs) {
			ids = append(ids, ad.ExternalID)
		}
	}

	rows := make([]domain.RemoteAnalytics, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, domain.RemoteAnalytics{
			EntityKind:  q.Level,
			ExternalID:  id,
			Granularity: q.Granularity,
			Period:      q.Period,
			Metrics:     domain.Metrics{Impressions: 100, Clicks: 10, Cost: 12.5},
		})
	}
	if f.extraAnalytics != nil {
		rows = append(rows, f.extraAnalytics(q)...)
	}
	return rows, nil
}

func (f *fakePlatform) adGroupCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.adGroupCalls)
}

func (f *fakePlatform) adCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.adCalls)
}

func childrenOf(items []domain.RemoteEntity, parentIDs []string) []domain.RemoteEntity {
	var result []domain.RemoteEntity
	for _, item := range items {
		if slices.Contains(parentIDs, item.ParentExternalID) {
			result = append(result, item)
		}
	}
	return result
}

type staticCredentials struct {
	token string
	err   error
	calls int
	mu    sync.Mutex
}

func (c *staticCredentials) GetValidCredential(_ context.Context, _ string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.token, nil
}

// hierarchy monta 3 campanhas, cada uma com um grupo e um anúncio
func hierarchy(modified time.Time) *fakePlatform {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	f := &fakePlatform{}
	for i := 1; i <= 3; i++ {
		campaignStart := start.AddDate(0, 0, i)
		mod := modified
		f.campaigns = append(f.campaigns, domain.RemoteEntity{
			Kind:             domain.EntityKindCampaign,
			ExternalID:       fmt.Sprintf("c-%d", i),
			GroupExternalIDs: []string{fmt.Sprintf("g-%d", i)},
			Name:             fmt.Sprintf("Campanha %d", i),
			Status:           "ACTIVE",
			LastModifiedAt:   &mod,
			StartDate:        &campaignStart,
		})
		f.adGroups = append(f.adGroups, domain.RemoteEntity{
			Kind:             domain.EntityKindAdGroup,
			ExternalID:       fmt.Sprintf("ag-%d", i),
			ParentExternalID: fmt.Sprintf("c-%d", i),
			Name:             fmt.Sprintf("Conjunto %d", i),
			Status:           "ACTIVE",
			LastModifiedAt:   &mod,
		})
		f.ads = append(f.ads, domain.RemoteEntity{
			Kind:             domain.EntityKindAd,
			ExternalID:       fmt.Sprintf("ad-%d", i),
			ParentExternalID: fmt.Sprintf("ag-%d", i),
			Name:             fmt.Sprintf("Anúncio %d", i),
			Status:           "ACTIVE",
			LastModifiedAt:   &mod,
		})
	}
	return f
}
