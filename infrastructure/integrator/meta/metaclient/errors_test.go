package metaclient

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/ads-sync-api/internal/domain"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		transport error
		want      domain.ErrorClass
		sentinel  error
	}{
		{
			name:      "Falha de transporte",
			transport: errors.New("dial tcp: connection refused"),
			want:      domain.ErrorClassTransient,
			sentinel:  domain.ErrTransient,
		},
		{
			name:     "Código 190",
			status:   http.StatusBadRequest,
			body:     `{"error":{"message":"Error validating access token: Session has expired","type":"OAuthException","code":190,"error_subcode":463}}`,
			want:     domain.ErrorClassUnauthorized,
			sentinel: domain.ErrUnauthorized,
		},
		{
			name:   "OAuthException com subcódigo de sessão invalidada",
			status: http.StatusBadRequest,
			body:   `{"error":{"message":"invalid session","type":"OAuthException","code":102,"error_subcode":467}}`,
			want:   domain.ErrorClassUnauthorized,
		},
		{
			name:     "Permissão ausente (código 200)",
			status:   http.StatusBadRequest,
			body:     `{"error":{"message":"Requires ads_read permission","type":"OAuthException","code":200}}`,
			want:     domain.ErrorClassForbidden,
			sentinel: domain.ErrForbidden,
		},
		{
			name:   "Permissão negada (código 10)",
			status: http.StatusBadRequest,
			body:   `{"error":{"message":"Application does not have permission","code":10}}`,
			want:   domain.ErrorClassForbidden,
		},
		{
			name:     "Limite do app (código 4)",
			status:   http.StatusBadRequest,
			body:     `{"error":{"message":"Application request limit reached","code":4}}`,
			want:     domain.ErrorClassRateLimited,
			sentinel: domain.ErrRateLimited,
		},
		{
			name:   "Limite de conta de anúncios (80004)",
			status: http.StatusBadRequest,
			body:   `{"error":{"message":"There have been too many calls to this ad-account","code":80004}}`,
			want:   domain.ErrorClassRateLimited,
		},
		{
			name:   "Parâmetro inválido não é falha de conta",
			status: http.StatusBadRequest,
			body:   `{"error":{"message":"Invalid parameter","type":"OAuthException","code":100}}`,
			want:   domain.ErrorClassTransient,
		},
		{
			name:   "Mensagem de token expirado fora do formato da Graph",
			status: http.StatusBadRequest,
			body:   `Error validating access token`,
			want:   domain.ErrorClassUnauthorized,
		},
		{
			name:   "401 sem corpo",
			status: http.StatusUnauthorized,
			want:   domain.ErrorClassUnauthorized,
		},
		{
			name:   "403 com corpo HTML",
			status: http.StatusForbidden,
			body:   `<html>forbidden</html>`,
			want:   domain.ErrorClassForbidden,
		},
		{
			name:   "429",
			status: http.StatusTooManyRequests,
			want:   domain.ErrorClassRateLimited,
		},
		{
			name:   "503",
			status: http.StatusServiceUnavailable,
			body:   `upstream connect error`,
			want:   domain.ErrorClassTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := TranslateError("campaigns", tt.status, []byte(tt.body), tt.transport)

			assert.Equal(t, tt.want, err.Class)
			assert.Equal(t, "campaigns", err.Endpoint)
			assert.Equal(t, Platform, err.Platform)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
		})
	}
}

func TestTranslateError_TruncaCorpo(t *testing.T) {
	body := strings.Repeat("x", 4096)

	err := TranslateError("ads", http.StatusBadGateway, []byte(body), nil)

	assert.Less(t, len(err.Error()), 1024)
	assert.Contains(t, err.Error(), "...")
}

func TestCalculateTokenExpiration(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresIn int64
		want      time.Time
	}{
		{name: "Sem expires_in assume 60 dias", expiresIn: 0, want: now.Add(60 * 24 * time.Hour)},
		{name: "Desconta um dia de margem", expiresIn: 5184000, want: now.Add(59 * 24 * time.Hour)},
		{name: "Menos de um dia usa metade", expiresIn: 3600, want: now.Add(30 * time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateTokenExpiration(now, tt.expiresIn))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "60 dias, 0 horas e 0 minutos", FormatDuration(5184000))
	assert.Equal(t, "0 dias, 1 horas e 30 minutos", FormatDuration(5400))
}
