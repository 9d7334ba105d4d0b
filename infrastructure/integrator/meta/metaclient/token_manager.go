package metaclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-sync-api/infrastructure/repository"
	"github.com/vfg2006/ads-sync-api/internal/config"
	"github.com/vfg2006/ads-sync-api/internal/domain"
)

// TokenExchanger é a parte do Client usada para renovar tokens
type TokenExchanger interface {
	ExchangeToken(ctx context.Context, token string) (*TokenResponse, error)
}

// TokenManager entrega um token válido por conta externa, renovando os que estão perto de expirar
type TokenManager struct {
	store           repository.CredentialRepository
	exchanger       TokenExchanger
	refreshWindow   time.Duration
	refreshInterval time.Duration

	TokenRefreshMutex sync.Mutex
	stopRefresh       chan struct{}
	stopOnce          sync.Once
	now               func() time.Time
}

// NewTokenManager cria uma nova instância do gerenciador de tokens
func NewTokenManager(cfg *config.Config, store repository.CredentialRepository, exchanger TokenExchanger) *TokenManager {
	window := cfg.Sync.TokenRefreshWindow
	if window <= 0 {
		window = 72 * time.Hour
	}
	interval := cfg.Sync.TokenRefreshInterval
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	return &TokenManager{
		store:           store,
		exchanger:       exchanger,
		refreshWindow:   window,
		refreshInterval: interval,
		stopRefresh:     make(chan struct{}),
		now:             time.Now,
	}
}

// GetValidCredential devolve o token da conta externa.
// Sem credencial: Unauthenticated. Token expirado que não pôde ser renovado: Unauthorized.
func (tm *TokenManager) GetValidCredential(ctx context.Context, externalAccountID string) (string, error) {
	cred, err := tm.store.GetByExternalAccountID(ctx, externalAccountID)
	if err != nil {
		return "", tm.credentialError(domain.ErrorClassTransient, externalAccountID,
			fmt.Errorf("erro ao buscar credencial: %w", err))
	}

	if cred == nil || cred.AccessToken == "" {
		return "", tm.credentialError(domain.ErrorClassUnauthenticated, externalAccountID,
			fmt.Errorf("nenhuma credencial configurada"))
	}

	now := tm.now()
	if cred.ExpiresAt.IsZero() || cred.ExpiresAt.Sub(now) > tm.refreshWindow {
		return cred.AccessToken, nil
	}

	refreshed, err := tm.refresh(ctx, externalAccountID)
	if err != nil {
		if cred.ExpiresAt.After(now) {
			logrus.WithFields(logrus.Fields{
				"account_id": externalAccountID,
				"expires_at": cred.ExpiresAt.Format(time.RFC3339),
			}).WithError(err).Warn("Falha ao renovar token, usando o token atual até expirar")
			return cred.AccessToken, nil
		}

		logrus.WithField("account_id", externalAccountID).WithError(err).
			Error("O token de acesso expirou e não pode ser renovado automaticamente. É necessário reautorizar")
		return "", tm.credentialError(domain.ErrorClassUnauthorized, externalAccountID,
			fmt.Errorf("token expirado e renovação falhou: %w", err))
	}

	return refreshed.AccessToken, nil
}

func (tm *TokenManager) credentialError(class domain.ErrorClass, externalAccountID string, err error) *domain.SyncError {
	return &domain.SyncError{
		Class:     class,
		Err:       err,
		Platform:  Platform,
		AccountID: externalAccountID,
	}
}

// refresh troca e persiste o token. Serializado para que duas contas simultâneas
// não troquem o mesmo token duas vezes.
func (tm *TokenManager) refresh(ctx context.Context, externalAccountID string) (*domain.Credential, error) {
	tm.TokenRefreshMutex.Lock()
	defer tm.TokenRefreshMutex.Unlock()

	// Verificar novamente se o token já foi renovado por outra goroutine
	cred, err := tm.store.GetByExternalAccountID(ctx, externalAccountID)
	if err != nil {
		return nil, err
	}
	if cred == nil || cred.AccessToken == "" {
		return nil, fmt.Errorf("credencial removida durante a renovação")
	}

	now := tm.now()
	if !cred.ExpiresAt.IsZero() && cred.ExpiresAt.Sub(now) > tm.refreshWindow {
		return cred, nil
	}

	logrus.WithField("account_id", externalAccountID).Info("Iniciando renovação do token...")

	tokenResponse, err := tm.exchanger.ExchangeToken(ctx, cred.AccessToken)
	if err != nil {
		return nil, err
	}

	renewed := &domain.Credential{
		ExternalAccountID: externalAccountID,
		AccessToken:       tokenResponse.AccessToken,
		ExpiresAt:         CalculateTokenExpiration(now, tokenResponse.ExpiresIn),
		UpdatedAt:         now,
	}

	if err := tm.store.Save(ctx, renewed); err != nil {
		return nil, fmt.Errorf("erro ao salvar token renovado: %w", err)
	}

	if renewed.AccessToken == cred.AccessToken {
		logrus.WithField("account_id", externalAccountID).
			Info("Token renovado, mas não mudou. Isso pode indicar um problema na API da Meta")
	} else {
		logrus.WithField("account_id", externalAccountID).
			Infof("Token de longa duração atualizado com sucesso. Expira em: %s", renewed.ExpiresAt.Format(time.RFC3339))
	}

	return renewed, nil
}

// RefreshExpiring renova todos os tokens que expiram dentro da janela de renovação
func (tm *TokenManager) RefreshExpiring(ctx context.Context) (int, error) {
	deadline := tm.now().Add(tm.refreshWindow)

	creds, err := tm.store.ListExpiringBefore(ctx, deadline)
	if err != nil {
		return 0, fmt.Errorf("erro ao listar tokens a expirar: %w", err)
	}

	refreshed := 0
	for _, cred := range creds {
		if _, err := tm.refresh(ctx, cred.ExternalAccountID); err != nil {
			logrus.WithField("account_id", cred.ExternalAccountID).WithError(err).
				Error("Erro na renovação periódica do token")
			continue
		}
		refreshed++
	}

	return refreshed, nil
}

// StartAutoRefresh bloqueia executando a renovação periódica até StopAutoRefresh ou o fim do contexto
func (tm *TokenManager) StartAutoRefresh(ctx context.Context) {
	ticker := time.NewTicker(tm.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logrus.Info("Iniciando renovação periódica dos tokens da Meta")
			n, err := tm.RefreshExpiring(ctx)
			if err != nil {
				logrus.WithError(err).Error("Erro na renovação periódica dos tokens")
				continue
			}
			logrus.Infof("Renovação periódica concluída: %d token(s) renovado(s)", n)
		case <-tm.stopRefresh:
			logrus.Info("Encerrando goroutine de renovação periódica do token")
			return
		case <-ctx.Done():
			return
		}
	}
}

// StopAutoRefresh para a goroutine de renovação automática
func (tm *TokenManager) StopAutoRefresh() {
	tm.stopOnce.Do(func() {
		close(tm.stopRefresh)
	})
}
