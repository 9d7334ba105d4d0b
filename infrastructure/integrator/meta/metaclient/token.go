package metaclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-sync-api/internal/domain"
)

const endpointOAuth = "oauth/access_token"

// Tokens de longa duração sem expires_in duram cerca de 60 dias
const defaultLongLivedTTL = 60 * 24 * time.Hour

// TokenResponse representa a resposta da API do Meta ao trocar um token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ExchangeToken troca o token atual por um novo token de longa duração (fb_exchange_token)
func (c *MetaClient) ExchangeToken(ctx context.Context, token string) (*TokenResponse, error) {
	if token == "" {
		return nil, domain.NewSyncError(domain.ErrorClassUnauthenticated, errors.New("token de acesso não pode ser vazio"))
	}

	params := url.Values{}
	params.Add("grant_type", "fb_exchange_token")
	params.Add("client_id", c.appID)
	params.Add("client_secret", c.appSecret)
	params.Add("fb_exchange_token", token)

	requestURL := fmt.Sprintf("%s/%s?%s", c.url, endpointOAuth, params.Encode())

	body, err := c.do(ctx, endpointOAuth, requestURL)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := codec.Unmarshal(body, &tokenResp); err != nil {
		return nil, TranslateError(endpointOAuth, http.StatusOK, body, fmt.Errorf("erro ao decodificar resposta: %w", err))
	}

	if tokenResp.AccessToken == "" {
		return nil, TranslateError(endpointOAuth, http.StatusOK, body, errors.New("token retornado pela API é vazio"))
	}

	logrus.Infof("Token de longa duração obtido com sucesso. Expira em %s.", FormatDuration(tokenResp.ExpiresIn))

	return &tokenResp, nil
}

// FormatDuration formata a duração em segundos para um formato legível
func FormatDuration(seconds int64) string {
	duration := time.Duration(seconds) * time.Second
	days := duration / (24 * time.Hour)
	hours := (duration % (24 * time.Hour)) / time.Hour
	minutes := (duration % time.Hour) / time.Minute

	return fmt.Sprintf("%d dias, %d horas e %d minutos", days, hours, minutes)
}

// CalculateTokenExpiration calcula a data de expiração do token com base no tempo de expiração em segundos
func CalculateTokenExpiration(now time.Time, expiresIn int64) time.Time {
	if expiresIn <= 0 {
		return now.Add(defaultLongLivedTTL)
	}

	// Subtraímos 1 dia para renovar antes da expiração real
	buffer := int64(24 * 60 * 60)
	safeExpiresIn := expiresIn - buffer

	if safeExpiresIn < 0 {
		safeExpiresIn = expiresIn / 2 // Se for muito curto, usamos metade do tempo
	}

	return now.Add(time.Duration(safeExpiresIn) * time.Second)
}
