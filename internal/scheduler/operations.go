package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-sync-api/internal/domain"
)

// OrganizationState é a visão de operador de uma organização
type OrganizationState struct {
	OrganizationID string         `json:"organization_id"`
	Enabled        bool           `json:"enabled"`
	Cadence        domain.Cadence `json:"cadence"`
	LastSyncedAt   *time.Time     `json:"last_synced_at"`
	Orphans        int            `json:"orphans"`
	InFlight       bool           `json:"in_flight"`
}

// Overview combina o estado do agendador com as marcas d'água e órfãos de cada organização
type Overview struct {
	Status
	Organizations []OrganizationState `json:"organizations"`
}

// GetOverview lê todas as configurações. Falha na contagem de órfãos de uma organização
// não invalida a visão das demais.
func (s *SyncScheduler) GetOverview(ctx context.Context) (*Overview, error) {
	configs, err := s.configRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar configurações: %w", err)
	}

	status := s.GetStatus()
	inFlight := make(map[string]bool, len(status.InFlight))
	for _, orgID := range status.InFlight {
		inFlight[orgID] = true
	}

	overview := &Overview{Status: status, Organizations: make([]OrganizationState, 0, len(configs))}
	for _, cfg := range configs {
		state := OrganizationState{
			OrganizationID: cfg.OrganizationID,
			Enabled:        cfg.Enabled,
			Cadence:        cfg.Cadence,
			LastSyncedAt:   cfg.LastSyncedAt,
			InFlight:       inFlight[cfg.OrganizationID],
		}

		_, accounts, err := s.load(ctx, cfg.OrganizationID)
		if err == nil {
			state.Orphans, err = s.reconciler.CountOrphans(ctx, accounts)
		}
		if err != nil {
			logrus.WithField("organization_id", cfg.OrganizationID).WithError(err).
				Warn("Não foi possível contar órfãos da organização")
		}

		overview.Organizations = append(overview.Organizations, state)
	}

	return overview, nil
}

// SaveConfiguration cria ou atualiza a configuração e reagenda o job da organização
func (s *SyncScheduler) SaveConfiguration(ctx context.Context, organizationID string, req *domain.UpdateSyncConfigurationRequest) (*domain.SyncConfiguration, error) {
	cfg, err := s.configRepo.GetByOrganizationID(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar configuração: %w", err)
	}
	if cfg == nil {
		cfg = &domain.SyncConfiguration{OrganizationID: organizationID}
	}

	if err := req.Apply(cfg); err != nil {
		return nil, err
	}

	if err := s.configRepo.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("erro ao salvar configuração: %w", err)
	}

	if err := s.Reschedule(cfg); err != nil {
		return nil, fmt.Errorf("configuração salva, mas o reagendamento falhou: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"organization_id": organizationID,
		"enabled":         cfg.Enabled,
		"cadence":         cfg.Cadence,
	}).Info("Configuração de sincronização atualizada")

	return cfg, nil
}
