package syncing

import (
	"context"

	"github.com/vfg2006/ads-sync-api/internal/domain"
)

// Platform é uma plataforma de anúncios externa, já com os payloads mapeados
type Platform interface {
	Name() string
	FetchCampaigns(ctx context.Context, token, accountExternalID string) ([]domain.RemoteEntity, error)
	// FetchAdGroups lista os grupos das campanhas informadas. O lote por chamada é responsabilidade do cliente.
	FetchAdGroups(ctx context.Context, token, accountExternalID string, campaignExternalIDs []string) ([]domain.RemoteEntity, error)
	FetchAds(ctx context.Context, token, accountExternalID string, adGroupExternalIDs []string) ([]domain.RemoteEntity, error)
	// FetchAll é a listagem completa e autoritativa de um nível, usada pela reconciliação
	FetchAll(ctx context.Context, token, accountExternalID string, kind domain.EntityKind) ([]domain.RemoteEntity, error)
	FetchAnalytics(ctx context.Context, token, accountExternalID string, query domain.AnalyticsQuery) ([]domain.RemoteAnalytics, error)
}

// CredentialProvider entrega um token válido para a conta externa.
// Falha com domain.ErrUnauthenticated quando não existe credencial configurada.
type CredentialProvider interface {
	GetValidCredential(ctx context.Context, externalAccountID string) (string, error)
}

// EntityLookup é a parte do repositório usada pelo detector de mudanças
type EntityLookup interface {
	ListByExternalIDs(ctx context.Context, kind domain.EntityKind, accountID string, externalIDs []string) ([]*domain.Entity, error)
}
