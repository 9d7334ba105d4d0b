package metaclient

import (
	"context"
	"encoding/json"

	metadomain "github.com/vfg2006/ads-sync-api/infrastructure/integrator/meta/domain"
)

const endpointCampaigns = "campaigns"

// ListCampaigns lista todas as campanhas da conta, em todas as páginas
func (c *MetaClient) ListCampaigns(ctx context.Context, token, accountID string) ([]metadomain.Campaign, error) {
	requestURL := c.listURL(accountNode(accountID), endpointCampaigns, token, metadomain.CampaignFields)

	raws, err := c.fetchAll(ctx, endpointCampaigns, requestURL)
	if err != nil {
		return nil, err
	}

	return decodeItems(endpointCampaigns, raws, func(item *metadomain.Campaign, raw json.RawMessage) {
		item.Raw = raw
	})
}
