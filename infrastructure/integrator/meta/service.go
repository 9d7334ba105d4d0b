package meta

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-sync-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/ads-sync-api/internal/domain"
)

// MetaIntegrator expõe a Graph API na forma de entidades e analytics já mapeados
type MetaIntegrator struct {
	Client metaclient.Client
}

func New(client metaclient.Client) *MetaIntegrator {
	return &MetaIntegrator{
		Client: client,
	}
}

func (s *MetaIntegrator) Name() string {
	return metaclient.Platform
}

func (s *MetaIntegrator) FetchCampaigns(ctx context.Context, token, accountExternalID string) ([]domain.RemoteEntity, error) {
	campaigns, err := s.Client.ListCampaigns(ctx, token, accountExternalID)
	if err != nil {
		return nil, err
	}

	result := make([]domain.RemoteEntity, 0, len(campaigns))
	for _, c := range campaigns {
		result = append(result, MapCampaign(c))
	}
	return result, nil
}

func (s *MetaIntegrator) FetchAdGroups(ctx context.Context, token, accountExternalID string, campaignExternalIDs []string) ([]domain.RemoteEntity, error) {
	if len(campaignExternalIDs) == 0 {
		return nil, nil
	}

	adSets, err := s.Client.ListAdSets(ctx, token, accountExternalID, campaignExternalIDs)
	if err != nil {
		return nil, err
	}

	result := make([]domain.RemoteEntity, 0, len(adSets))
	for _, a := range adSets {
		result = append(result, MapAdSet(a))
	}
	return result, nil
}

func (s *MetaIntegrator) FetchAds(ctx context.Context, token, accountExternalID string, adGroupExternalIDs []string) ([]domain.RemoteEntity, error) {
	if len(adGroupExternalIDs) == 0 {
		return nil, nil
	}

	ads, err := s.Client.ListAds(ctx, token, accountExternalID, adGroupExternalIDs)
	if err != nil {
		return nil, err
	}

	result := make([]domain.RemoteEntity, 0, len(ads))
	for _, a := range ads {
		result = append(result, MapAd(a))
	}
	return result, nil
}

// FetchAll devolve a listagem completa de um nível filho, sem filtro por pai
func (s *MetaIntegrator) FetchAll(ctx context.Context, token, accountExternalID string, kind domain.EntityKind) ([]domain.RemoteEntity, error) {
	switch kind {
	case domain.EntityKindAdGroup:
		adSets, err := s.Client.ListAllAdSets(ctx, token, accountExternalID)
		if err != nil {
			return nil, err
		}
		result := make([]domain.RemoteEntity, 0, len(adSets))
		for _, a := range adSets {
			result = append(result, MapAdSet(a))
		}
		return result, nil
	case domain.EntityKindAd:
		ads, err := s.Client.ListAllAds(ctx, token, accountExternalID)
		if err != nil {
			return nil, err
		}
		result := make([]domain.RemoteEntity, 0, len(ads))
		for _, a := range ads {
			result = append(result, MapAd(a))
		}
		return result, nil
	case domain.EntityKindCampaign:
		return s.FetchCampaigns(ctx, token, accountExternalID)
	}

	return nil, fmt.Errorf("tipo de entidade desconhecido: %q", kind)
}

// FetchAnalytics consulta os insights de um lote de campanhas. Linhas que não podem
// ser mapeadas são descartadas com log.
func (s *MetaIntegrator) FetchAnalytics(ctx context.Context, token, accountExternalID string, query domain.AnalyticsQuery) ([]domain.RemoteAnalytics, error) {
	if len(query.CampaignExternalIDs) == 0 {
		return nil, nil
	}

	level := metaclient.LevelCampaign
	if query.Level == domain.EntityKindAd {
		level = metaclient.LevelAd
	}

	rows, err := s.Client.GetInsights(ctx, token, metaclient.InsightsQuery{
		AccountID:   accountExternalID,
		Level:       level,
		CampaignIDs: query.CampaignExternalIDs,
		Since:       query.Period.Start,
		Until:       query.Period.End,
		Daily:       query.Granularity == domain.GranularityDaily,
	})
	if err != nil {
		return nil, err
	}

	result := make([]domain.RemoteAnalytics, 0, len(rows))
	for _, row := range rows {
		analytics, err := MapInsight(row, query.Level, query.Granularity)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"account_id": accountExternalID,
				"level":      query.Level,
				"error":      err.Error(),
			}).Warn("insights: discarding row that could not be mapped")
			continue
		}

		// o agregado cobre a janela pedida, não só os dias com entrega
		if query.Granularity == domain.GranularityAggregate {
			analytics.Period = query.Period
		}

		result = append(result, analytics)
	}

	return result, nil
}
