package metaclient

import (
	"context"
	"encoding/json"

	metadomain "github.com/vfg2006/ads-sync-api/infrastructure/integrator/meta/domain"
)

const endpointAds = "ads"

// ListAds lista os anúncios dos conjuntos informados, um lote de ids por chamada
func (c *MetaClient) ListAds(ctx context.Context, token, accountID string, adSetIDs []string) ([]metadomain.Ad, error) {
	raws, err := c.fetchByIDs(ctx, endpointAds, adSetIDs, func(chunk []string) string {
		return c.listURL(accountNode(accountID), endpointAds, token, metadomain.AdFields,
			filter{Field: "adset.id", Operator: "IN", Value: chunk})
	})
	if err != nil {
		return nil, err
	}

	return decodeAds(raws)
}

// ListAllAds é a listagem completa da conta, usada pela reconciliação
func (c *MetaClient) ListAllAds(ctx context.Context, token, accountID string) ([]metadomain.Ad, error) {
	requestURL := c.listURL(accountNode(accountID), endpointAds, token, metadomain.AdFields)

	raws, err := c.fetchAll(ctx, endpointAds, requestURL)
	if err != nil {
		return nil, err
	}

	return decodeAds(raws)
}

func decodeAds(raws []json.RawMessage) ([]metadomain.Ad, error) {
	return decodeItems(endpointAds, raws, func(item *metadomain.Ad, raw json.RawMessage) {
		item.Raw = raw
	})
}
