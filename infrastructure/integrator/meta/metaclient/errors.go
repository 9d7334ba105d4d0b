package metaclient

import (
	"fmt"
	"net/http"
	"strings"

	metadomain "github.com/vfg2006/ads-sync-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/ads-sync-api/internal/domain"
)

const maxBodyInError = 512

// TranslateError é o único ponto que converte falhas de transporte, status HTTP e
// payloads de erro da Graph API na taxonomia da sincronização.
// O código de erro da Graph tem precedência sobre o status HTTP, já que a Meta responde
// token expirado e limite de chamadas com 400.
func TranslateError(endpoint string, status int, body []byte, transportErr error) *domain.SyncError {
	build := func(class domain.ErrorClass, err error) *domain.SyncError {
		return &domain.SyncError{
			Class:      class,
			Err:        err,
			Platform:   Platform,
			Endpoint:   endpoint,
			StatusCode: status,
		}
	}

	// timeout, conexão recusada, circuito aberto, corpo ilegível
	if transportErr != nil {
		return build(domain.ErrorClassTransient, transportErr)
	}

	var cause error
	if errorResp, ok := ParseErrorResponse(body); ok {
		cause = fmt.Errorf("graph error code=%d subcode=%d type=%s: %s",
			errorResp.Error.Code, errorResp.Error.ErrorSubcode, errorResp.Error.Type, errorResp.Error.Message)

		switch {
		case errorResp.IsTokenExpired():
			return build(domain.ErrorClassUnauthorized, cause)
		case errorResp.IsPermissionDenied():
			return build(domain.ErrorClassForbidden, cause)
		case errorResp.IsRateLimited():
			return build(domain.ErrorClassRateLimited, cause)
		}
	} else {
		cause = fmt.Errorf("status %d: %s", status, truncate(body))
		if containsTokenExpirationMessage(string(body)) {
			return build(domain.ErrorClassUnauthorized, cause)
		}
	}

	switch status {
	case http.StatusUnauthorized:
		return build(domain.ErrorClassUnauthorized, cause)
	case http.StatusForbidden:
		return build(domain.ErrorClassForbidden, cause)
	case http.StatusTooManyRequests:
		return build(domain.ErrorClassRateLimited, cause)
	}

	return build(domain.ErrorClassTransient, cause)
}

// ParseErrorResponse tenta parsear um erro da API do Meta
func ParseErrorResponse(body []byte) (*metadomain.ErrorResponse, bool) {
	if len(body) == 0 {
		return nil, false
	}

	var errorResp metadomain.ErrorResponse
	if err := codec.Unmarshal(body, &errorResp); err != nil {
		return nil, false
	}
	if errorResp.Error.Code == 0 && errorResp.Error.Message == "" {
		return nil, false
	}
	return &errorResp, true
}

// containsTokenExpirationMessage verifica se a mensagem contém indicação de token expirado
func containsTokenExpirationMessage(message string) bool {
	return strings.Contains(message, "Error validating access token") ||
		strings.Contains(message, "Session has expired") ||
		strings.Contains(message, "The session has been invalidated")
}

func truncate(body []byte) string {
	if len(body) > maxBodyInError {
		return string(body[:maxBodyInError]) + "..."
	}
	return string(body)
}
