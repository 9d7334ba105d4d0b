package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ads-sync-api/infrastructure/repository/mocks"
	"github.com/vfg2006/ads-sync-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func TestSyncScheduler_GetOverview(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	configRepo := mocks.NewMockSyncConfigurationRepository(ctrl)
	accountRepo := mocks.NewMockExternalAccountRepository(ctrl)

	synced := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	configs := []*domain.SyncConfiguration{
		{OrganizationID: "org-1", Enabled: true, Cadence: domain.CadenceHourly, LastSyncedAt: &synced},
		{OrganizationID: "org-2", Enabled: false, Cadence: domain.CadenceDaily},
	}

	configRepo.EXPECT().ListAll(gomock.Any()).Return(configs, nil)
	configRepo.EXPECT().GetByOrganizationID(gomock.Any(), "org-1").Return(configs[0], nil)
	configRepo.EXPECT().GetByOrganizationID(gomock.Any(), "org-2").Return(configs[1], nil)
	accountRepo.EXPECT().ListByOrganizationID(gomock.Any(), "org-1").Return(accountsFor("org-1", "acc-1"), nil)
	accountRepo.EXPECT().ListByOrganizationID(gomock.Any(), "org-2").Return(nil, errors.New("conexão perdida"))

	s := NewSyncScheduler(testConfig(1), configRepo, accountRepo, &scriptedPipeline{}, &countingReconciler{orphans: 4})

	overview, err := s.GetOverview(context.Background())

	require.NoError(t, err)
	require.Len(t, overview.Organizations, 2)

	first := overview.Organizations[0]
	assert.Equal(t, "org-1", first.OrganizationID)
	assert.Equal(t, &synced, first.LastSyncedAt)
	assert.Equal(t, 4, first.Orphans)
	assert.False(t, first.InFlight)

	// a falha ao carregar contas de uma organização não derruba a visão das demais
	second := overview.Organizations[1]
	assert.Equal(t, "org-2", second.OrganizationID)
	assert.Nil(t, second.LastSyncedAt)
	assert.Zero(t, second.Orphans)
}

func TestSyncScheduler_GetOverview_ErroAoListar(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	configRepo := mocks.NewMockSyncConfigurationRepository(ctrl)
	configRepo.EXPECT().ListAll(gomock.Any()).Return(nil, errors.New("timeout"))

	s := NewSyncScheduler(testConfig(1), configRepo, mocks.NewMockExternalAccountRepository(ctrl), &scriptedPipeline{}, &countingReconciler{})

	_, err := s.GetOverview(context.Background())
	assert.Error(t, err)
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestSyncScheduler_SaveConfiguration(t *testing.T) {
	tests := []struct {
		name     string
		existing *domain.SyncConfiguration
		req      *domain.UpdateSyncConfigurationRequest
		wantErr  bool
		wantJobs int
		want     domain.Cadence
	}{
		{
			name:     "Cria configuração com cadência padrão",
			req:      &domain.UpdateSyncConfigurationRequest{Enabled: boolPtr(true)},
			wantJobs: 1,
			want:     domain.CadenceHourly,
		},
		{
			name:     "Altera cadência existente",
			existing: &domain.SyncConfiguration{OrganizationID: "org-1", Enabled: true, Cadence: domain.CadenceHourly},
			req:      &domain.UpdateSyncConfigurationRequest{Cadence: strPtr("every_6_hours")},
			wantJobs: 1,
			want:     domain.CadenceEvery6Hours,
		},
		{
			name:     "Desabilitar remove o job",
			existing: &domain.SyncConfiguration{OrganizationID: "org-1", Enabled: true, Cadence: domain.CadenceDaily},
			req:      &domain.UpdateSyncConfigurationRequest{Enabled: boolPtr(false)},
			wantJobs: 0,
			want:     domain.CadenceDaily,
		},
		{
			name:     "Cadência inválida",
			existing: &domain.SyncConfiguration{OrganizationID: "org-1", Enabled: true, Cadence: domain.CadenceDaily},
			req:      &domain.UpdateSyncConfigurationRequest{Cadence: strPtr("*/5 * * * *")},
			wantErr:  true,
			wantJobs: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			configRepo := mocks.NewMockSyncConfigurationRepository(ctrl)
			configRepo.EXPECT().GetByOrganizationID(gomock.Any(), "org-1").Return(tt.existing, nil)
			if !tt.wantErr {
				configRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
			}

			s := NewSyncScheduler(testConfig(1), configRepo, mocks.NewMockExternalAccountRepository(ctrl), &scriptedPipeline{}, &countingReconciler{})
			if tt.existing != nil && tt.existing.Enabled {
				require.NoError(t, s.Schedule("org-1", tt.existing.Cadence))
			}

			cfg, err := s.SaveConfiguration(context.Background(), "org-1", tt.req)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "org-1", cfg.OrganizationID)
				assert.Equal(t, tt.want, cfg.Cadence)
			}
			assert.Equal(t, tt.wantJobs, s.JobCount())
		})
	}
}
