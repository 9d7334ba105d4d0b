package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ads-sync-api/internal/config"
	"github.com/vfg2006/ads-sync-api/internal/domain"
	"github.com/vfg2006/ads-sync-api/internal/scheduler"
	"github.com/vfg2006/ads-sync-api/internal/usecases/authenticating"
	"github.com/vfg2006/ads-sync-api/internal/usecases/syncing"
)

type fakeOperator struct {
	triggerErr   error
	reconcileErr error
	saved        *domain.UpdateSyncConfigurationRequest
	triggered    []string
}

func (f *fakeOperator) GetOverview(_ context.Context) (*scheduler.Overview, error) {
	return &scheduler.Overview{
		Status:        scheduler.Status{Enabled: true, InFlight: []string{"org-1"}},
		Organizations: []scheduler.OrganizationState{{OrganizationID: "org-1", Orphans: 2, InFlight: true}},
	}, nil
}

func (f *fakeOperator) SaveConfiguration(_ context.Context, organizationID string, req *domain.UpdateSyncConfigurationRequest) (*domain.SyncConfiguration, error) {
	f.saved = req
	cfg := &domain.SyncConfiguration{OrganizationID: organizationID}
	if err := req.Apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f *fakeOperator) TriggerManualSync(organizationID string) error {
	if f.triggerErr != nil {
		return f.triggerErr
	}
	f.triggered = append(f.triggered, organizationID)
	return nil
}

func (f *fakeOperator) TriggerReconciliation(_ context.Context, organizationID string) (*syncing.ReconciliationReport, error) {
	if f.reconcileErr != nil {
		return nil, f.reconcileErr
	}
	return &syncing.ReconciliationReport{OrganizationID: organizationID, Scanned: 3, Repaired: 1}, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestServer(t *testing.T, operator *fakeOperator, pinger fakePinger) (http.Handler, authenticating.Authenticator) {
	t.Helper()

	cfg := &config.Config{
		Server: config.Server{Host: "localhost", Port: "0"},
		Auth:   config.Auth{Secret: "segredo-de-teste"},
	}
	auth := authenticating.NewService(cfg)

	srv, err := New(cfg, auth, operator, pinger)
	require.NoError(t, err)

	return srv.Handler(), auth
}

func bearer(t *testing.T, auth authenticating.Authenticator, role int) string {
	t.Helper()
	token, err := auth.IssueToken(fmt.Sprintf("ops-%d", role), role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestServer_Rotas(t *testing.T) {
	tests := []struct {
		name       string
		operator   *fakeOperator
		method     string
		path       string
		body       string
		role       int
		wantStatus int
		wantBody   string
	}{
		{
			name:       "Healthcheck sem token",
			method:     http.MethodGet,
			path:       "/healthcheck",
			wantStatus: http.StatusOK,
		},
		{
			name:       "Métricas sem token",
			method:     http.MethodGet,
			path:       "/metrics",
			wantStatus: http.StatusOK,
			wantBody:   "ads_sync_",
		},
		{
			name:       "Status exige token",
			method:     http.MethodGet,
			path:       "/v1/sync/status",
			wantStatus: http.StatusUnauthorized,
			wantBody:   "AUTH_006",
		},
		{
			name:       "Status com papel de leitura",
			method:     http.MethodGet,
			path:       "/v1/sync/status",
			role:       domain.RoleViewer,
			wantStatus: http.StatusOK,
			wantBody:   `"orphans":2`,
		},
		{
			name:       "Execução manual aceita",
			method:     http.MethodPost,
			path:       "/v1/organizations/org-1/sync/run",
			role:       domain.RoleOperator,
			wantStatus: http.StatusAccepted,
			wantBody:   "org-1",
		},
		{
			name:       "Execução manual negada para leitura",
			method:     http.MethodPost,
			path:       "/v1/organizations/org-1/sync/run",
			role:       domain.RoleViewer,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "Execução manual com sincronização em andamento",
			operator:   &fakeOperator{triggerErr: scheduler.ErrSyncInFlight},
			method:     http.MethodPost,
			path:       "/v1/organizations/org-1/sync/run",
			role:       domain.RoleAdmin,
			wantStatus: http.StatusConflict,
			wantBody:   "SYNC_001",
		},
		{
			name:       "Execução manual durante o desligamento",
			operator:   &fakeOperator{triggerErr: scheduler.ErrSchedulerStopping},
			method:     http.MethodPost,
			path:       "/v1/organizations/org-1/sync/run",
			role:       domain.RoleOperator,
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "SYNC_004",
		},
		{
			name:       "Reconciliação sem configuração",
			operator:   &fakeOperator{reconcileErr: fmt.Errorf("carregando: %w", scheduler.ErrConfigurationNotFound)},
			method:     http.MethodPost,
			path:       "/v1/organizations/org-9/reconcile",
			role:       domain.RoleAdmin,
			wantStatus: http.StatusNotFound,
			wantBody:   "SYNC_002",
		},
		{
			name:       "Reconciliação concluída",
			method:     http.MethodPost,
			path:       "/v1/organizations/org-1/reconcile",
			role:       domain.RoleOperator,
			wantStatus: http.StatusOK,
			wantBody:   `"repaired":1`,
		},
		{
			name:       "Erro inesperado na reconciliação",
			operator:   &fakeOperator{reconcileErr: errors.New("timeout")},
			method:     http.MethodPost,
			path:       "/v1/organizations/org-1/reconcile",
			role:       domain.RoleOperator,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "Atualiza configuração",
			method:     http.MethodPut,
			path:       "/v1/organizations/org-1/sync-config",
			body:       `{"enabled":true,"cadence":"every_3_hours"}`,
			role:       domain.RoleAdmin,
			wantStatus: http.StatusOK,
			wantBody:   `"cadence":"every_3_hours"`,
		},
		{
			name:       "Cadência inválida",
			method:     http.MethodPut,
			path:       "/v1/organizations/org-1/sync-config",
			body:       `{"cadence":"*/5 * * * *"}`,
			role:       domain.RoleAdmin,
			wantStatus: http.StatusBadRequest,
			wantBody:   "SYNC_003",
		},
		{
			name:       "Corpo inválido",
			method:     http.MethodPut,
			path:       "/v1/organizations/org-1/sync-config",
			body:       `{`,
			role:       domain.RoleAdmin,
			wantStatus: http.StatusBadRequest,
			wantBody:   "VAL_001",
		},
		{
			name:       "Rota inexistente",
			method:     http.MethodGet,
			path:       "/v1/organizations/org-1/campaigns",
			role:       domain.RoleAdmin,
			wantStatus: http.StatusNotFound,
			wantBody:   "VAL_004",
		},
		{
			name:       "Método não suportado",
			method:     http.MethodDelete,
			path:       "/v1/sync/status",
			role:       domain.RoleAdmin,
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   "VAL_005",
		},
		{
			name:       "Configuração exige administrador",
			method:     http.MethodPut,
			path:       "/v1/organizations/org-1/sync-config",
			body:       `{"enabled":true}`,
			role:       domain.RoleOperator,
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			operator := tt.operator
			if operator == nil {
				operator = &fakeOperator{}
			}
			h, auth := newTestServer(t, operator, fakePinger{})

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.role != 0 {
				req.Header.Set("Authorization", bearer(t, auth, tt.role))
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestServer_HealthcheckBancoIndisponivel(t *testing.T) {
	h, _ := newTestServer(t, &fakeOperator{}, fakePinger{err: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_TokenInvalido(t *testing.T) {
	h, _ := newTestServer(t, &fakeOperator{}, fakePinger{})

	for _, header := range []string{"Token abc", "Bearer abc.def.ghi"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/sync/status", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}
