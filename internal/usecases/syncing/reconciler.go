package syncing

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-sync-api/infrastructure/repository"
	"github.com/vfg2006/ads-sync-api/internal/domain"
	"github.com/vfg2006/ads-sync-api/pkg/log"
	"github.com/vfg2006/ads-sync-api/pkg/metrics"
)

// reconcileKinds segue a hierarquia: grupos reparados antes dos anúncios
var reconcileKinds = []domain.EntityKind{domain.EntityKindAdGroup, domain.EntityKindAd}

// UnmatchedEntity é um órfão cujo pai continua sem cópia local
type UnmatchedEntity struct {
	Kind             domain.EntityKind `json:"kind"`
	AccountID        string            `json:"account_id"`
	ExternalID       string            `json:"external_id"`
	ParentExternalID string            `json:"parent_external_id,omitempty"`
}

type ReconciliationReport struct {
	OrganizationID string            `json:"organization_id"`
	Scanned        int               `json:"scanned"`
	Repaired       int               `json:"repaired"`
	Unmatched      []UnmatchedEntity `json:"unmatched,omitempty"`
	Failures       []UnitFailure     `json:"failures,omitempty"`
	// Remaining é a contagem de órfãos depois da varredura
	Remaining  int       `json:"remaining"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Reconciler repara referências de pai que não puderam ser resolvidas na escrita.
// Não passa pelo detector de mudanças: a listagem completa da plataforma é a fonte de verdade.
type Reconciler struct {
	platform    Platform
	credentials CredentialProvider
	entities    repository.EntityRepository
	now         func() time.Time
}

func NewReconciler(platform Platform, credentials CredentialProvider, entities repository.EntityRepository) *Reconciler {
	return &Reconciler{
		platform:    platform,
		credentials: credentials,
		entities:    entities,
		now:         time.Now,
	}
}

// CountOrphans soma os grupos e anúncios sem pai resolvido das contas informadas
func (r *Reconciler) CountOrphans(ctx context.Context, accounts []*domain.ExternalAccount) (int, error) {
	return r.entities.CountWhereParentNull(ctx, accountIDs(accounts))
}

// Sweep percorre os órfãos das contas de uma organização. Rodar duas vezes sobre o
// mesmo estado não altera nada além do que a primeira execução já reparou.
func (r *Reconciler) Sweep(ctx context.Context, organizationID string, accounts []*domain.ExternalAccount) ReconciliationReport {
	report := ReconciliationReport{
		OrganizationID: organizationID,
		StartedAt:      r.now(),
	}

	logger := log.ForContext(ctx).WithFields(logrus.Fields{
		"organization_id": organizationID,
		"platform":        r.platform.Name(),
	})

	byID := make(map[string]*domain.ExternalAccount, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	sweep := &sweepState{
		report:  &report,
		log:     logger,
		tokens:  make(map[string]string),
		blocked: make(map[string]bool),
		parents: make(map[domain.EntityKind]map[string]*domain.Entity),
	}

	for _, kind := range reconcileKinds {
		if ctx.Err() != nil {
			break
		}

		orphans, err := r.entities.ListWhereParentNull(ctx, kind, accountIDs(accounts))
		if err != nil {
			sweep.fail(StageDetect, kind, "", "", err)
			continue
		}
		report.Scanned += len(orphans)

		grouped := make(map[string][]*domain.Entity)
		order := make([]string, 0)
		for _, o := range orphans {
			if _, ok := grouped[o.AccountID]; !ok {
				order = append(order, o.AccountID)
			}
			grouped[o.AccountID] = append(grouped[o.AccountID], o)
		}

		for _, id := range order {
			account, ok := byID[id]
			if !ok {
				continue
			}
			r.reconcileAccount(ctx, sweep, account, kind, grouped[id])
		}
	}

	remaining, err := r.CountOrphans(ctx, accounts)
	if err != nil {
		logger.WithError(err).Warn("reconciliação: não foi possível contar os órfãos restantes")
	} else {
		report.Remaining = remaining
		metrics.OrphanedEntities.WithLabelValues(organizationID).Set(float64(remaining))
	}

	report.FinishedAt = r.now()
	logger.WithFields(logrus.Fields{
		"scanned":   report.Scanned,
		"repaired":  report.Repaired,
		"unmatched": len(report.Unmatched),
		"remaining": report.Remaining,
	}).Info("reconciliação concluída")

	return report
}

type sweepState struct {
	report *ReconciliationReport
	log    *logrus.Entry
	tokens map[string]string
	// contas que falharam de forma fatal não são tentadas de novo no próximo nível
	blocked map[string]bool
	parents map[domain.EntityKind]map[string]*domain.Entity
}

func (s *sweepState) fail(stage string, kind domain.EntityKind, accountExternalID, externalID string, err error) {
	syncErr := domain.AsSyncError(err)
	if accountExternalID != "" {
		syncErr = syncErr.WithAccount(accountExternalID)
	}
	if kind != "" {
		syncErr = syncErr.WithEntity(kind, externalID)
	}

	s.report.Failures = append(s.report.Failures, UnitFailure{
		Stage:      stage,
		Kind:       kind,
		ExternalID: externalID,
		Class:      syncErr.Class,
		Message:    syncErr.Error(),
	})
	metrics.UnitFailures.WithLabelValues(string(syncErr.Class), string(kind)).Inc()

	s.log.WithFields(logrus.Fields{
		"stage":       stage,
		"entity_kind": kind,
		"external_id": externalID,
		"class":       syncErr.Class,
	}).WithError(syncErr).Warn("reconciliação: unidade de trabalho falhou")
}

func (r *Reconciler) reconcileAccount(
	ctx context.Context,
	s *sweepState,
	account *domain.ExternalAccount,
	kind domain.EntityKind,
	orphans []*domain.Entity,
) {
	if len(orphans) == 0 || s.blocked[account.ID] {
		return
	}

	token, ok := s.tokens[account.ID]
	if !ok {
		var err error
		token, err = r.credentials.GetValidCredential(ctx, account.ID)
		if err != nil {
			s.blocked[account.ID] = true
			s.fail(StageCredential, kind, account.ExternalID, "", err)
			return
		}
		s.tokens[account.ID] = token
	}

	listing, err := r.platform.FetchAll(ctx, token, account.ExternalID, kind)
	if err != nil {
		if domain.IsFatalForAccount(err) {
			s.blocked[account.ID] = true
		}
		s.fail(StageFetch, kind, account.ExternalID, "", err)
		return
	}

	parentOf := make(map[string]string, len(listing))
	for _, remote := range listing {
		parentOf[remote.ExternalID] = remote.ParentExternalID
	}

	parentKind, _ := kind.Parent()
	for _, orphan := range orphans {
		parentExternalID, listed := parentOf[orphan.ExternalID]
		if !listed || parentExternalID == "" {
			// sumiu da listagem: usa a referência gravada na escrita
			parentExternalID = orphan.ParentExternalID
		}

		parent, err := r.lookupParent(ctx, s, parentKind, account.ID, parentExternalID)
		if err != nil {
			s.fail(StageDetect, kind, account.ExternalID, orphan.ExternalID, err)
			continue
		}
		if parent == nil {
			s.report.Unmatched = append(s.report.Unmatched, UnmatchedEntity{
				Kind:             kind,
				AccountID:        account.ID,
				ExternalID:       orphan.ExternalID,
				ParentExternalID: parentExternalID,
			})
			continue
		}

		if err := r.entities.SetParent(ctx, kind, orphan.ID, parent.ID); err != nil {
			s.fail(StagePersist, kind, account.ExternalID, orphan.ExternalID, err)
			continue
		}

		s.report.Repaired++
		metrics.ReconciledEntities.WithLabelValues(string(kind)).Inc()
	}
}

func (r *Reconciler) lookupParent(
	ctx context.Context,
	s *sweepState,
	kind domain.EntityKind,
	accountID, externalID string,
) (*domain.Entity, error) {
	if externalID == "" {
		return nil, nil
	}

	cache, ok := s.parents[kind]
	if !ok {
		cache = make(map[string]*domain.Entity)
		s.parents[kind] = cache
	}

	key := accountID + ":" + externalID
	if parent, ok := cache[key]; ok {
		return parent, nil
	}

	parent, err := r.entities.FindByExternalID(ctx, kind, accountID, externalID)
	if err != nil {
		return nil, err
	}
	cache[key] = parent
	return parent, nil
}

func accountIDs(accounts []*domain.ExternalAccount) []string {
	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
	}
	return ids
}
