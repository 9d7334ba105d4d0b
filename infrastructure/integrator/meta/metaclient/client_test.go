package metaclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ads-sync-api/infrastructure/integrator/ratelimit"
	"github.com/vfg2006/ads-sync-api/internal/config"
	"github.com/vfg2006/ads-sync-api/internal/domain"
)

func newTestClient(t *testing.T, server *httptest.Server, pageLimit, batchSize int) *MetaClient {
	t.Helper()

	cfg := &config.Config{
		Meta: config.Meta{
			URL:            server.URL + "/v22.0",
			AppID:          "app-id",
			AppSecret:      "app-secret",
			RequestTimeout: 5 * time.Second,
			PageLimit:      pageLimit,
			MaxBatchSize:   batchSize,
		},
	}

	client, ok := NewClient(cfg, ratelimit.New("meta-test", 4, 0)).(*MetaClient)
	require.True(t, ok)
	return client
}

func decodeFilterIDs(t *testing.T, r *http.Request) []string {
	t.Helper()

	var filters []filter
	require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("filtering")), &filters))
	require.Len(t, filters, 1)
	return filters[0].Value
}

func TestMetaClient_ListAdSets_DivideEmLotes(t *testing.T) {
	tests := []struct {
		name      string
		ids       int
		batchSize int
		wantCalls int
	}{
		{name: "Lote exato", ids: 6, batchSize: 3, wantCalls: 2},
		{name: "Último lote incompleto", ids: 7, batchSize: 3, wantCalls: 3},
		{name: "Menos ids que o lote", ids: 2, batchSize: 50, wantCalls: 1},
		{name: "Um id por chamada", ids: 4, batchSize: 1, wantCalls: 4},
		{name: "Sem ids não chama a API", ids: 0, batchSize: 3, wantCalls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				assert.Equal(t, "/v22.0/act_123/adsets", r.URL.Path)
				assert.Equal(t, "tok", r.URL.Query().Get("access_token"))

				ids := decodeFilterIDs(t, r)
				assert.LessOrEqual(t, len(ids), tt.batchSize)

				items := make([]string, 0, len(ids))
				for _, id := range ids {
					items = append(items, fmt.Sprintf(`{"id":"as-%s","campaign_id":"%s","name":"Conjunto %s"}`, id, id, id))
				}
				fmt.Fprintf(w, `{"data":[%s],"paging":{}}`, strings.Join(items, ","))
			}))
			defer server.Close()

			client := newTestClient(t, server, 100, tt.batchSize)

			campaignIDs := make([]string, 0, tt.ids)
			for i := 0; i < tt.ids; i++ {
				campaignIDs = append(campaignIDs, fmt.Sprintf("%d", 1000+i))
			}

			adSets, err := client.ListAdSets(context.Background(), "tok", "123", campaignIDs)

			require.NoError(t, err)
			assert.Equal(t, int32(tt.wantCalls), calls.Load())
			require.Len(t, adSets, tt.ids)
			for i, adSet := range adSets {
				assert.Equal(t, campaignIDs[i], adSet.CampaignID)
				assert.NotEmpty(t, adSet.Raw)
			}
		})
	}
}

func TestMetaClient_ListCampaigns_Paginacao(t *testing.T) {
	var calls atomic.Int32
	var server *httptest.Server

	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		switch r.URL.Query().Get("after") {
		case "":
			assert.Equal(t, "/v22.0/act_123/campaigns", r.URL.Path)
			fmt.Fprintf(w, `{"data":[{"id":"1"},{"id":"2"}],"paging":{"next":"%s/v22.0/act_123/campaigns?after=p2"}}`, server.URL)
		case "p2":
			fmt.Fprintf(w, `{"data":[{"id":"3"},{"id":"4"}],"paging":{"next":"%s/v22.0/act_123/campaigns?after=p3"}}`, server.URL)
		case "p3":
			// página curta: mesmo com next, a listagem termina aqui
			fmt.Fprintf(w, `{"data":[{"id":"5","adlabels":[{"id":"lbl-1","name":"Verão"}]}],"paging":{"next":"%s/v22.0/act_123/campaigns?after=p4"}}`, server.URL)
		default:
			t.Errorf("página inesperada: %s", r.URL.RawQuery)
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server, 2, 50)

	campaigns, err := client.ListCampaigns(context.Background(), "tok", "act_123")

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, campaigns, 5)
	assert.Equal(t, "5", campaigns[4].ID)
	require.Len(t, campaigns[4].AdLabels, 1)
	assert.Equal(t, "lbl-1", campaigns[4].AdLabels[0].ID)
	assert.JSONEq(t, `{"id":"5","adlabels":[{"id":"lbl-1","name":"Verão"}]}`, string(campaigns[4].Raw))
}

func TestMetaClient_ListCampaigns_PaginaCheiaSemNext(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"data":[{"id":"1"},{"id":"2"}],"paging":{"cursors":{"before":"a","after":"b"}}}`)
	}))
	defer server.Close()

	campaigns, err := newTestClient(t, server, 2, 50).ListCampaigns(context.Background(), "tok", "123")

	require.NoError(t, err)
	assert.Len(t, campaigns, 2)
	assert.Equal(t, int32(1), calls.Load())
}

func TestMetaClient_ErroTraduzido(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantClass domain.ErrorClass
	}{
		{
			name:      "Token expirado com status 400",
			status:    http.StatusBadRequest,
			body:      `{"error":{"message":"Error validating access token","type":"OAuthException","code":190}}`,
			wantClass: domain.ErrorClassUnauthorized,
		},
		{
			name:      "Limite de chamadas da conta",
			status:    http.StatusBadRequest,
			body:      `{"error":{"message":"User request limit reached","type":"OAuthException","code":17}}`,
			wantClass: domain.ErrorClassRateLimited,
		},
		{
			name:      "Erro interno",
			status:    http.StatusInternalServerError,
			body:      `<html>erro</html>`,
			wantClass: domain.ErrorClassTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			_, err := newTestClient(t, server, 100, 50).ListCampaigns(context.Background(), "tok", "123")

			require.Error(t, err)
			var syncErr *domain.SyncError
			require.True(t, errors.As(err, &syncErr))
			assert.Equal(t, tt.wantClass, syncErr.Class)
			assert.Equal(t, endpointCampaigns, syncErr.Endpoint)
			assert.Equal(t, tt.status, syncErr.StatusCode)
			assert.Equal(t, Platform, syncErr.Platform)
		})
	}
}

func TestMetaClient_FalhaDeConexao(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(t, server, 100, 50)
	server.Close()

	_, err := client.ListCampaigns(context.Background(), "tok", "123")

	assert.ErrorIs(t, err, domain.ErrTransient)
}

func TestMetaClient_GetInsights(t *testing.T) {
	var calls atomic.Int32
	since := time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()

		assert.Equal(t, "/v22.0/act_123/insights", r.URL.Path)
		assert.Equal(t, LevelAd, q.Get("level"))
		assert.Equal(t, "1", q.Get("time_increment"))
		assert.JSONEq(t, `{"since":"2026-01-06","until":"2026-03-10"}`, q.Get("time_range"))

		ids := decodeFilterIDs(t, r)
		assert.LessOrEqual(t, len(ids), 2)

		rows := make([]string, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, fmt.Sprintf(
				`{"campaign_id":"%s","ad_id":"ad-%s","date_start":"2026-03-10","date_stop":"2026-03-10","impressions":"120","spend":"3.456"}`,
				id, id))
		}
		fmt.Fprintf(w, `{"data":[%s]}`, strings.Join(rows, ","))
	}))
	defer server.Close()

	rows, err := newTestClient(t, server, 100, 2).GetInsights(context.Background(), "tok", InsightsQuery{
		AccountID:   "123",
		Level:       LevelAd,
		CampaignIDs: []string{"c1", "c2", "c3", "c4", "c5"},
		Since:       since,
		Until:       until,
		Daily:       true,
	})

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, rows, 5)
	assert.Equal(t, "ad-c5", rows[4].AdID)
	assert.Equal(t, "120", rows[0].Impressions)
}

func TestMetaClient_GetInsights_PeriodoInvalido(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("nenhuma chamada era esperada")
	}))
	defer server.Close()

	_, err := newTestClient(t, server, 100, 50).GetInsights(context.Background(), "tok", InsightsQuery{
		AccountID:   "123",
		CampaignIDs: []string{"c1"},
		Since:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Until:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.Error(t, err)
}

func TestMetaClient_ExchangeToken(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		body      string
		wantToken string
		wantClass domain.ErrorClass
	}{
		{
			name:      "Troca bem-sucedida",
			token:     "atual",
			body:      `{"access_token":"novo","token_type":"bearer","expires_in":5184000}`,
			wantToken: "novo",
		},
		{
			name:      "Token vazio não chama a API",
			token:     "",
			wantClass: domain.ErrorClassUnauthenticated,
		},
		{
			name:      "Resposta sem token",
			token:     "atual",
			body:      `{"access_token":""}`,
			wantClass: domain.ErrorClassTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				assert.Equal(t, "/v22.0/oauth/access_token", r.URL.Path)
				assert.Equal(t, "fb_exchange_token", q.Get("grant_type"))
				assert.Equal(t, "app-id", q.Get("client_id"))
				assert.Equal(t, tt.token, q.Get("fb_exchange_token"))
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			resp, err := newTestClient(t, server, 100, 50).ExchangeToken(context.Background(), tt.token)

			if tt.wantClass != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantClass, domain.ClassOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, resp.AccessToken)
			assert.Equal(t, int64(5184000), resp.ExpiresIn)
		})
	}
}

func TestChunkIDs(t *testing.T) {
	assert.Nil(t, ChunkIDs(nil, 3))
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, ChunkIDs([]string{"a", "b", "c"}, 2))
	assert.Equal(t, [][]string{{"a", "b", "c"}}, ChunkIDs([]string{"a", "b", "c"}, 0))

	// ceil(L/B) lotes, nenhum maior que B, ordem preservada
	for l := 1; l <= 40; l++ {
		ids := make([]string, l)
		for i := range ids {
			ids[i] = fmt.Sprintf("id-%d", i)
		}
		for b := 1; b <= 12; b++ {
			chunks := ChunkIDs(ids, b)
			require.Len(t, chunks, (l+b-1)/b, "L=%d B=%d", l, b)

			var flat []string
			for _, chunk := range chunks {
				require.LessOrEqual(t, len(chunk), b)
				flat = append(flat, chunk...)
			}
			require.Equal(t, ids, flat)
		}
	}
}

func TestAccountNode(t *testing.T) {
	assert.Equal(t, "act_123", accountNode("123"))
	assert.Equal(t, "act_123", accountNode("act_123"))
}
