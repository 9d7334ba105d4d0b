package metaclient

import (
	"context"
	"encoding/json"

	metadomain "github.com/vfg2006/ads-sync-api/infrastructure/integrator/meta/domain"
)

const endpointAdSets = "adsets"

// ListAdSets lista os conjuntos de anúncios das campanhas informadas, um lote de ids por chamada
func (c *MetaClient) ListAdSets(ctx context.Context, token, accountID string, campaignIDs []string) ([]metadomain.AdSet, error) {
	raws, err := c.fetchByIDs(ctx, endpointAdSets, campaignIDs, func(chunk []string) string {
		return c.listURL(accountNode(accountID), endpointAdSets, token, metadomain.AdSetFields,
			filter{Field: "campaign.id", Operator: "IN", Value: chunk})
	})
	if err != nil {
		return nil, err
	}

	return decodeAdSets(raws)
}

// ListAllAdSets é a listagem completa da conta, usada pela reconciliação
func (c *MetaClient) ListAllAdSets(ctx context.Context, token, accountID string) ([]metadomain.AdSet, error) {
	requestURL := c.listURL(accountNode(accountID), endpointAdSets, token, metadomain.AdSetFields)

	raws, err := c.fetchAll(ctx, endpointAdSets, requestURL)
	if err != nil {
		return nil, err
	}

	return decodeAdSets(raws)
}

func decodeAdSets(raws []json.RawMessage) ([]metadomain.AdSet, error) {
	return decodeItems(endpointAdSets, raws, func(item *metadomain.AdSet, raw json.RawMessage) {
		item.Raw = raw
	})
}
