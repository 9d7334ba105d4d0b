package handler

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-sync-api/internal/domain"
	"github.com/vfg2006/ads-sync-api/internal/scheduler"
	"github.com/vfg2006/ads-sync-api/internal/usecases/syncing"
	"github.com/vfg2006/ads-sync-api/pkg/apiErrors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SyncOperator é o que a superfície de operador precisa do agendador
type SyncOperator interface {
	GetOverview(ctx context.Context) (*scheduler.Overview, error)
	SaveConfiguration(ctx context.Context, organizationID string, req *domain.UpdateSyncConfigurationRequest) (*domain.SyncConfiguration, error)
	TriggerManualSync(organizationID string) error
	TriggerReconciliation(ctx context.Context, organizationID string) (*syncing.ReconciliationReport, error)
}

func GetSyncStatus(service SyncOperator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		overview, err := service.GetOverview(r.Context())
		if err != nil {
			logrus.WithError(err).Error("Erro ao montar status da sincronização")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar configurações de sincronização", nil)
			return
		}

		writeJSON(w, http.StatusOK, overview)
	})
}

func UpdateSyncConfiguration(service SyncOperator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - UpdateSyncConfiguration")

		organizationID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if organizationID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID da organização é obrigatório", nil)
			return
		}

		var req domain.UpdateSyncConfigurationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Corpo da requisição inválido: "+err.Error(), nil)
			return
		}

		cfg, err := service.SaveConfiguration(r.Context(), organizationID, &req)
		if err != nil {
			logrus.WithError(err).WithField("organization_id", organizationID).Error("Erro ao salvar configuração de sincronização")

			if errors.Is(err, domain.ErrInvalidCadence) {
				apiErrors.WriteError(w, apiErrors.ErrInvalidCadence, err.Error(), map[string]interface{}{
					"accepted": domain.Cadences,
				})
				return
			}
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao salvar configuração de sincronização", nil)
			return
		}

		writeJSON(w, http.StatusOK, cfg)
	})
}

func RunSync(service SyncOperator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		organizationID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		logrus.WithField("organization_id", organizationID).Info("INIT - RunSync")

		if err := service.TriggerManualSync(organizationID); err != nil {
			writeSyncError(w, organizationID, err)
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]any{
			"message":         "Sincronização iniciada com sucesso",
			"organization_id": organizationID,
		})
	})
}

func RunReconciliation(service SyncOperator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		organizationID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		logrus.WithField("organization_id", organizationID).Info("INIT - RunReconciliation")

		report, err := service.TriggerReconciliation(r.Context(), organizationID)
		if err != nil {
			writeSyncError(w, organizationID, err)
			return
		}

		writeJSON(w, http.StatusOK, report)
	})
}

func writeSyncError(w http.ResponseWriter, organizationID string, err error) {
	switch {
	case errors.Is(err, scheduler.ErrSyncInFlight):
		apiErrors.WriteError(w, apiErrors.ErrSyncInFlight, "Já existe uma sincronização em andamento para a organização", map[string]interface{}{
			"organization_id": organizationID,
		})
	case errors.Is(err, scheduler.ErrSchedulerStopping):
		apiErrors.WriteError(w, apiErrors.ErrSchedulerStopping, "Serviço em desligamento, tente novamente em instantes", nil)
	case errors.Is(err, scheduler.ErrConfigurationNotFound):
		apiErrors.WriteError(w, apiErrors.ErrConfigurationNotFound, "Organização sem configuração de sincronização", map[string]interface{}{
			"organization_id": organizationID,
		})
	default:
		logrus.WithError(err).WithField("organization_id", organizationID).Error("Erro na operação de sincronização")
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro interno na sincronização", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("Erro ao codificar resposta")
	}
}
