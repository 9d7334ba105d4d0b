package syncing

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-sync-api/infrastructure/repository"
	"github.com/vfg2006/ads-sync-api/internal/config"
	"github.com/vfg2006/ads-sync-api/internal/domain"
	"github.com/vfg2006/ads-sync-api/pkg/log"
	"github.com/vfg2006/ads-sync-api/pkg/metrics"
)

// AccountStatus é o estado final da sincronização de uma conta
type AccountStatus string

const (
	AccountCompleted       AccountStatus = "completed"
	AccountPartiallyFailed AccountStatus = "partially_failed"
	AccountAborted         AccountStatus = "aborted"
	AccountSkipped         AccountStatus = "skipped"
)

const (
	StageCredential = "credential"
	StageFetch      = "fetch"
	StageDetect     = "detect"
	StagePersist    = "persist"
	StageAnalytics  = "analytics"
)

// SyncScope é a unidade de trabalho do pipeline: uma conta externa de uma organização
type SyncScope struct {
	OrganizationID   string
	Account          *domain.ExternalAccount
	CampaignGroupIDs []string
	// Force lista todos os filhos das campanhas em escopo, não só os das que mudaram.
	// Cada entidade continua passando pelo detector de mudanças.
	Force bool
}

// UnitFailure identifica a unidade que falhou para que o operador possa ressincronizá-la
type UnitFailure struct {
	Stage      string            `json:"stage"`
	Kind       domain.EntityKind `json:"kind,omitempty"`
	ExternalID string            `json:"external_id,omitempty"`
	Class      domain.ErrorClass `json:"class"`
	Message    string            `json:"message"`
}

type LevelStats struct {
	Fetched  int `json:"fetched"`
	Stale    int `json:"stale"`
	Upserted int `json:"upserted"`
	Orphaned int `json:"orphaned"`
}

type AnalyticsStats struct {
	Fetched  int `json:"fetched"`
	Upserted int `json:"upserted"`
	Skipped  int `json:"skipped"`
}

type AccountResult struct {
	OrganizationID    string                           `json:"organization_id"`
	AccountID         string                           `json:"account_id"`
	ExternalAccountID string                           `json:"external_account_id"`
	Status            AccountStatus                    `json:"status"`
	Levels            map[domain.EntityKind]LevelStats `json:"levels"`
	Analytics         AnalyticsStats                   `json:"analytics"`
	Failures          []UnitFailure                    `json:"failures,omitempty"`
	Err               error                            `json:"-"`
	StartedAt         time.Time                        `json:"started_at"`
	FinishedAt        time.Time                        `json:"finished_at"`
}

// Pipeline percorre conta → campanha → grupo → anúncio → analytics de cima para baixo
type Pipeline struct {
	platform     Platform
	credentials  CredentialProvider
	entities     repository.EntityRepository
	analytics    repository.AnalyticsRepository
	batchSize    int
	lookbackDays int
	now          func() time.Time
}

func NewPipeline(
	cfg *config.Config,
	platform Platform,
	credentials CredentialProvider,
	entities repository.EntityRepository,
	analytics repository.AnalyticsRepository,
) *Pipeline {
	batchSize := cfg.Sync.AnalyticsBatchSize
	if batchSize < 1 {
		batchSize = 20
	}
	lookback := cfg.Sync.AnalyticsLookbackDays
	if lookback < 1 {
		lookback = 365
	}

	return &Pipeline{
		platform:     platform,
		credentials:  credentials,
		entities:     entities,
		analytics:    analytics,
		batchSize:    batchSize,
		lookbackDays: lookback,
		now:          time.Now,
	}
}

// accountRun carrega o estado de uma execução; não é compartilhado entre contas
type accountRun struct {
	scope  SyncScope
	token  string
	result *AccountResult
	log    *logrus.Entry
	// entidades conhecidas nesta execução por tipo e id externo, persistidas agora ou já locais
	known map[domain.EntityKind]map[string]*domain.Entity
	// campanhas em escopo na ordem da plataforma, base da etapa de analytics
	campaigns []string
}

func (run *accountRun) remember(e *domain.Entity) {
	if e == nil {
		return
	}
	byID, ok := run.known[e.Kind]
	if !ok {
		byID = make(map[string]*domain.Entity)
		run.known[e.Kind] = byID
	}
	byID[e.ExternalID] = e
}

func (run *accountRun) fail(stage string, kind domain.EntityKind, externalID string, err error) {
	syncErr := domain.AsSyncError(err).WithAccount(run.scope.Account.ExternalID)
	if kind != "" {
		syncErr = syncErr.WithEntity(kind, externalID)
	}

	run.result.Failures = append(run.result.Failures, UnitFailure{
		Stage:      stage,
		Kind:       kind,
		ExternalID: externalID,
		Class:      syncErr.Class,
		Message:    syncErr.Error(),
	})
	metrics.UnitFailures.WithLabelValues(string(syncErr.Class), string(kind)).Inc()

	run.log.WithFields(logrus.Fields{
		"stage":       stage,
		"entity_kind": kind,
		"external_id": externalID,
		"class":       syncErr.Class,
	}).WithError(syncErr).Warn("sync: unidade de trabalho falhou")
}

// SyncAccount executa o pipeline de uma conta. Nunca entra em pânico por falha de plataforma
// e nunca devolve erro: o resultado descreve o que aconteceu.
func (p *Pipeline) SyncAccount(ctx context.Context, scope SyncScope) AccountResult {
	result := &AccountResult{
		OrganizationID:    scope.OrganizationID,
		AccountID:         scope.Account.ID,
		ExternalAccountID: scope.Account.ExternalID,
		Levels:            make(map[domain.EntityKind]LevelStats, len(domain.EntityKinds)),
		StartedAt:         p.now(),
	}

	run := &accountRun{
		scope:  scope,
		result: result,
		known:  make(map[domain.EntityKind]map[string]*domain.Entity),
		log: log.ForContext(ctx).WithFields(logrus.Fields{
			"organization_id": scope.OrganizationID,
			"account_id":      scope.Account.ID,
			"external_id":     scope.Account.ExternalID,
			"platform":        p.platform.Name(),
		}),
	}

	p.execute(ctx, run)

	result.FinishedAt = p.now()
	metrics.AccountResults.WithLabelValues(string(result.Status)).Inc()

	return *result
}

func (p *Pipeline) execute(ctx context.Context, run *accountRun) {
	result := run.result

	token, err := p.credentials.GetValidCredential(ctx, run.scope.Account.ID)
	if err != nil {
		switch domain.ClassOf(err) {
		case domain.ErrorClassUnauthenticated:
			run.log.WithError(err).Info("sync: conta sem credencial configurada, ignorando")
			result.Status = AccountSkipped
			result.Err = err
		case domain.ErrorClassUnauthorized, domain.ErrorClassForbidden:
			p.abort(run, StageCredential, "", err)
		default:
			run.fail(StageCredential, "", "", err)
			result.Status = AccountPartiallyFailed
		}
		return
	}
	run.token = token

	campaigns, err := p.syncCampaigns(ctx, run)
	if err != nil {
		p.abort(run, StageFetch, domain.EntityKindCampaign, err)
		return
	}

	adGroupIDs, err := p.syncChildren(ctx, run, domain.EntityKindAdGroup, campaigns)
	if err != nil {
		p.abort(run, StageFetch, domain.EntityKindAdGroup, err)
		return
	}

	if _, err := p.syncChildren(ctx, run, domain.EntityKindAd, adGroupIDs); err != nil {
		p.abort(run, StageFetch, domain.EntityKindAd, err)
		return
	}

	if err := p.syncAnalytics(ctx, run); err != nil {
		p.abort(run, StageAnalytics, "", err)
		return
	}

	if len(result.Failures) > 0 {
		result.Status = AccountPartiallyFailed
		run.log.WithField("failures", len(result.Failures)).Warn("sync: conta concluída com falhas parciais")
		return
	}

	result.Status = AccountCompleted
	run.log.Info("sync: conta concluída")
}

// abort encerra a conta em Unauthorized/Forbidden. As outras contas seguem normalmente.
func (p *Pipeline) abort(run *accountRun, stage string, kind domain.EntityKind, err error) {
	run.fail(stage, kind, "", err)
	run.result.Status = AccountAborted
	run.result.Err = err
	run.log.WithError(err).Error("sync: execução da conta abortada")
}

// syncCampaigns devolve os ids externos das campanhas cujos filhos devem ser buscados.
// Só erros fatais para a conta são devolvidos, o resto vira UnitFailure.
func (p *Pipeline) syncCampaigns(ctx context.Context, run *accountRun) ([]string, error) {
	kind := domain.EntityKindCampaign

	remotes, err := p.platform.FetchCampaigns(ctx, run.token, run.scope.Account.ExternalID)
	if err != nil {
		if domain.IsFatalForAccount(err) {
			return nil, err
		}
		run.fail(StageFetch, kind, "", err)
		return nil, nil
	}

	remotes = filterByGroups(remotes, run.scope.CampaignGroupIDs)

	out := p.persistLevel(ctx, run, kind, remotes)
	run.campaigns = out.inScope

	return out.next(run.scope.Force), nil
}

// syncChildren sincroniza um nível filho a partir dos ids externos dos pais
func (p *Pipeline) syncChildren(ctx context.Context, run *accountRun, kind domain.EntityKind, parentIDs []string) ([]string, error) {
	if len(parentIDs) == 0 {
		run.result.Levels[kind] = LevelStats{}
		return nil, nil
	}

	var (
		remotes []domain.RemoteEntity
		err     error
	)
	switch kind {
	case domain.EntityKindAdGroup:
		remotes, err = p.platform.FetchAdGroups(ctx, run.token, run.scope.Account.ExternalID, parentIDs)
	case domain.EntityKindAd:
		remotes, err = p.platform.FetchAds(ctx, run.token, run.scope.Account.ExternalID, parentIDs)
	}
	if err != nil {
		if domain.IsFatalForAccount(err) {
			return nil, err
		}
		// os pais continuam com children_pending e são buscados de novo no próximo ciclo
		run.fail(StageFetch, kind, "", err)
		return nil, nil
	}

	out := p.persistLevel(ctx, run, kind, remotes)
	if out.detected {
		p.markChildrenSynced(ctx, run, kind, parentIDs, out.incomplete)
	}

	return out.next(run.scope.Force), nil
}

// markChildrenSynced libera os pais cujos filhos chegaram todos ao banco
func (p *Pipeline) markChildrenSynced(ctx context.Context, run *accountRun, kind domain.EntityKind, parentIDs []string, incomplete map[string]struct{}) {
	parentKind, _ := kind.Parent()

	done := make([]string, 0, len(parentIDs))
	for _, id := range parentIDs {
		if _, failed := incomplete[id]; !failed {
			done = append(done, id)
		}
	}
	if len(done) == 0 {
		return
	}

	if err := p.entities.MarkChildrenSynced(ctx, parentKind, run.scope.Account.ID, done); err != nil {
		run.fail(StagePersist, parentKind, "", err)
	}
}

// levelOutcome é o resultado da gravação de um nível
type levelOutcome struct {
	inScope []string
	// follow são os ids gravados agora ou que ainda têm filhos pendentes de um ciclo anterior
	follow map[string]struct{}
	// incomplete são os ids externos dos pais com algum filho que não foi gravado
	incomplete map[string]struct{}
	// detected é falso quando o detector falhou e nenhuma entidade do nível foi avaliada
	detected bool
}

// next devolve, na ordem da listagem remota, os ids cujos filhos devem ser buscados
func (o levelOutcome) next(force bool) []string {
	if force {
		return o.inScope
	}

	var ids []string
	for _, id := range o.inScope {
		if _, ok := o.follow[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// persistLevel filtra as entidades desatualizadas e faz o upsert de cada uma
func (p *Pipeline) persistLevel(
	ctx context.Context,
	run *accountRun,
	kind domain.EntityKind,
	remotes []domain.RemoteEntity,
) levelOutcome {
	out := levelOutcome{
		follow:     make(map[string]struct{}),
		incomplete: make(map[string]struct{}),
	}
	stats := LevelStats{Fetched: len(remotes)}
	defer func() { run.result.Levels[kind] = stats }()

	for _, r := range remotes {
		out.inScope = append(out.inScope, r.ExternalID)
	}

	stale, unchanged, err := FilterStale(ctx, p.entities, kind, run.scope.Account.ID, remotes)
	if err != nil {
		run.fail(StageDetect, kind, "", err)
		return out
	}
	out.detected = true

	for _, local := range unchanged {
		run.remember(local)
		if local.ChildrenPending {
			out.follow[local.ExternalID] = struct{}{}
		}
	}
	stats.Stale = len(stale)
	metrics.EntitiesSkipped.WithLabelValues(string(kind)).Add(float64(len(unchanged)))

	skip := func(candidate StaleEntity) {
		run.remember(candidate.Local)
		if parentID := candidate.Remote.ParentExternalID; parentID != "" {
			out.incomplete[parentID] = struct{}{}
		}
		if candidate.Local != nil && candidate.Local.ChildrenPending {
			out.follow[candidate.Local.ExternalID] = struct{}{}
		}
	}

	for _, candidate := range stale {
		entity, err := p.buildEntity(ctx, run, candidate)
		if err != nil {
			run.fail(StagePersist, kind, candidate.Remote.ExternalID, err)
			skip(candidate)
			continue
		}

		if entity.NeedsReconciliation {
			stats.Orphaned++
			run.log.WithFields(logrus.Fields{
				"entity_kind":        kind,
				"external_id":        entity.ExternalID,
				"parent_external_id": entity.ParentExternalID,
				"class":              domain.ErrorClassDataIntegrityGap,
			}).Warn("sync: pai não encontrado localmente, entidade persistida para reconciliação")
		}

		if err := p.entities.UpsertEntity(ctx, entity); err != nil {
			run.fail(StagePersist, kind, entity.ExternalID, err)
			skip(candidate)
			continue
		}

		stats.Upserted++
		metrics.EntityUpserts.WithLabelValues(string(kind)).Inc()
		run.remember(entity)
		out.follow[entity.ExternalID] = struct{}{}
	}

	return out
}

func (p *Pipeline) buildEntity(ctx context.Context, run *accountRun, candidate StaleEntity) (*domain.Entity, error) {
	remote := candidate.Remote

	entity := &domain.Entity{
		Kind:             remote.Kind,
		AccountID:        run.scope.Account.ID,
		ExternalID:       remote.ExternalID,
		ParentExternalID: remote.ParentExternalID,
		Name:             remote.Name,
		Status:           remote.Status,
		Version:          remote.Version,
		RemoteModifiedAt: remote.LastModifiedAt,
		StartDate:        remote.StartDate,
		Payload:          remote.Payload,
		ChildrenPending:  remote.Kind.HasChildren(),
	}
	if candidate.Local != nil {
		entity.ID = candidate.Local.ID
		entity.CreatedAt = candidate.Local.CreatedAt
	}

	parentKind, hasParent := remote.Kind.Parent()
	if !hasParent {
		return entity, nil
	}

	parent, err := p.resolveParent(ctx, run, parentKind, remote.ParentExternalID)
	if err != nil {
		return nil, err
	}

	if parent == nil {
		entity.NeedsReconciliation = true
		return entity, nil
	}

	entity.ParentID = &parent.ID
	return entity, nil
}

func (p *Pipeline) resolveParent(ctx context.Context, run *accountRun, kind domain.EntityKind, externalID string) (*domain.Entity, error) {
	if externalID == "" {
		return nil, nil
	}
	if parent, ok := run.known[kind][externalID]; ok {
		return parent, nil
	}

	parent, err := p.entities.FindByExternalID(ctx, kind, run.scope.Account.ID, externalID)
	if err != nil {
		return nil, err
	}
	run.remember(parent)
	return parent, nil
}

func filterByGroups(remotes []domain.RemoteEntity, groupIDs []string) []domain.RemoteEntity {
	if len(groupIDs) == 0 {
		return remotes
	}

	groups := make(map[string]struct{}, len(groupIDs))
	for _, g := range groupIDs {
		groups[g] = struct{}{}
	}

	filtered := make([]domain.RemoteEntity, 0, len(remotes))
	for _, r := range remotes {
		if r.InGroups(groups) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
