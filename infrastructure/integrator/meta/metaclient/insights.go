package metaclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	metadomain "github.com/vfg2006/ads-sync-api/infrastructure/integrator/meta/domain"
)

const endpointInsights = "insights"

const (
	LevelCampaign = "campaign"
	LevelAd       = "ad"
)

// InsightsQuery descreve uma consulta de insights para um lote de campanhas.
// Daily=true devolve uma linha por dia (time_increment=1), senão uma linha para o período todo.
type InsightsQuery struct {
	AccountID   string
	Level       string
	CampaignIDs []string
	Since       time.Time
	Until       time.Time
	Daily       bool
}

type timeRange struct {
	Since string `json:"since"`
	Until string `json:"until"`
}

// GetInsights consulta act_<id>/insights filtrando pelas campanhas do lote
func (c *MetaClient) GetInsights(ctx context.Context, token string, query InsightsQuery) ([]metadomain.Insight, error) {
	if query.Level == "" {
		query.Level = LevelCampaign
	}
	if query.Until.Before(query.Since) {
		return nil, fmt.Errorf("insights: período inválido %s > %s",
			query.Since.Format(time.DateOnly), query.Until.Format(time.DateOnly))
	}

	encodedRange, _ := codec.Marshal(timeRange{
		Since: query.Since.Format(time.DateOnly),
		Until: query.Until.Format(time.DateOnly),
	})

	increment := "all_days"
	if query.Daily {
		increment = "1"
	}

	raws, err := c.fetchByIDs(ctx, endpointInsights, query.CampaignIDs, func(chunk []string) string {
		encodedFilter, _ := codec.Marshal([]filter{{Field: "campaign.id", Operator: "IN", Value: chunk}})

		params := url.Values{}
		params.Add("level", query.Level)
		params.Add("fields", metadomain.InsightFields)
		params.Add("time_range", string(encodedRange))
		params.Add("time_increment", increment)
		params.Add("filtering", string(encodedFilter))
		params.Add("limit", strconv.Itoa(c.pageLimit))
		params.Add("access_token", token)

		return fmt.Sprintf("%s/%s/%s?%s", c.url, accountNode(query.AccountID), endpointInsights, params.Encode())
	})
	if err != nil {
		return nil, err
	}

	return decodeItems[metadomain.Insight](endpointInsights, raws, nil)
}
