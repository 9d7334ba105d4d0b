package metaclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	metadomain "github.com/vfg2006/ads-sync-api/infrastructure/integrator/meta/domain"
)

type filter struct {
	Field    string   `json:"field"`
	Operator string   `json:"operator"`
	Value    []string `json:"value"`
}

func (c *MetaClient) listURL(node, edge, token, fields string, filters ...filter) string {
	params := url.Values{}
	params.Add("fields", fields)
	params.Add("limit", strconv.Itoa(c.pageLimit))
	params.Add("access_token", token)

	if len(filters) > 0 {
		encoded, _ := codec.Marshal(filters)
		params.Add("filtering", string(encoded))
	}

	return c.url + "/" + node + "/" + edge + "?" + params.Encode()
}

// fetchAll segue paging.next até acabar ou até uma página curta
func (c *MetaClient) fetchAll(ctx context.Context, endpoint, requestURL string) ([]json.RawMessage, error) {
	var items []json.RawMessage

	next := requestURL
	for next != "" {
		body, err := c.do(ctx, endpoint, next)
		if err != nil {
			return nil, err
		}

		var page metadomain.Page
		if err := codec.Unmarshal(body, &page); err != nil {
			return nil, TranslateError(endpoint, http.StatusOK, body, err)
		}

		items = append(items, page.Data...)

		if len(page.Data) < c.pageLimit {
			break
		}
		next = page.Paging.Next
	}

	return items, nil
}

// fetchByIDs faz uma listagem paginada por lote de ids e concatena os resultados
func (c *MetaClient) fetchByIDs(ctx context.Context, endpoint string, ids []string, buildURL func(chunk []string) string) ([]json.RawMessage, error) {
	var items []json.RawMessage

	for _, chunk := range ChunkIDs(ids, c.maxBatchSize) {
		chunkItems, err := c.fetchAll(ctx, endpoint, buildURL(chunk))
		if err != nil {
			return nil, err
		}
		items = append(items, chunkItems...)
	}

	return items, nil
}

func decodeItems[T any](endpoint string, raws []json.RawMessage, setRaw func(item *T, raw json.RawMessage)) ([]T, error) {
	items := make([]T, 0, len(raws))
	for _, raw := range raws {
		var item T
		if err := codec.Unmarshal(raw, &item); err != nil {
			return nil, TranslateError(endpoint, http.StatusOK, raw, err)
		}
		if setRaw != nil {
			setRaw(&item, raw)
		}
		items = append(items, item)
	}
	return items, nil
}
