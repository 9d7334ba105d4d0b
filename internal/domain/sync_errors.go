package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorClass é a taxonomia fixa de falhas da sincronização
type ErrorClass string

const (
	ErrorClassUnauthenticated  ErrorClass = "unauthenticated"
	ErrorClassUnauthorized     ErrorClass = "unauthorized"
	ErrorClassForbidden        ErrorClass = "forbidden"
	ErrorClassRateLimited      ErrorClass = "rate_limited"
	ErrorClassTransient        ErrorClass = "transient"
	ErrorClassDataIntegrityGap ErrorClass = "data_integrity_gap"
)

// Erros sentinela, um por classe. Use errors.Is para classificar.
var (
	ErrUnauthenticated  = errors.New("no credential configured")
	ErrUnauthorized     = errors.New("credential rejected by platform")
	ErrForbidden        = errors.New("missing permission or scope")
	ErrRateLimited      = errors.New("platform rate limit reached")
	ErrTransient        = errors.New("transient platform failure")
	ErrDataIntegrityGap = errors.New("parent reference could not be resolved")
)

var classSentinels = map[ErrorClass]error{
	ErrorClassUnauthenticated:  ErrUnauthenticated,
	ErrorClassUnauthorized:     ErrUnauthorized,
	ErrorClassForbidden:        ErrForbidden,
	ErrorClassRateLimited:      ErrRateLimited,
	ErrorClassTransient:        ErrTransient,
	ErrorClassDataIntegrityGap: ErrDataIntegrityGap,
}

// SyncError carrega a classe e o contexto necessário para o operador localizar a unidade que falhou
type SyncError struct {
	Class      ErrorClass
	Err        error
	Platform   string
	AccountID  string
	EntityKind EntityKind
	ExternalID string
	Endpoint   string
	StatusCode int
}

// NewSyncError cria um SyncError da classe informada
func NewSyncError(class ErrorClass, err error) *SyncError {
	return &SyncError{Class: class, Err: err}
}

func (e *SyncError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Class))

	ctx := make([]string, 0, 5)
	if e.Platform != "" {
		ctx = append(ctx, "platform="+e.Platform)
	}
	if e.AccountID != "" {
		ctx = append(ctx, "account="+e.AccountID)
	}
	if e.EntityKind != "" {
		ctx = append(ctx, "kind="+string(e.EntityKind))
	}
	if e.ExternalID != "" {
		ctx = append(ctx, "external_id="+e.ExternalID)
	}
	if e.Endpoint != "" {
		ctx = append(ctx, "endpoint="+e.Endpoint)
	}
	if e.StatusCode != 0 {
		ctx = append(ctx, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if len(ctx) > 0 {
		b.WriteString(" [" + strings.Join(ctx, " ") + "]")
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Is permite errors.Is(err, ErrRateLimited) independente do erro encapsulado
func (e *SyncError) Is(target error) bool {
	return classSentinels[e.Class] == target
}

// WithAccount retorna uma cópia com o contexto de conta preenchido
func (e *SyncError) WithAccount(accountID string) *SyncError {
	c := *e
	if c.AccountID == "" {
		c.AccountID = accountID
	}
	return &c
}

// WithEntity retorna uma cópia com o tipo e o id externo preenchidos
func (e *SyncError) WithEntity(kind EntityKind, externalID string) *SyncError {
	c := *e
	if c.EntityKind == "" {
		c.EntityKind = kind
	}
	if c.ExternalID == "" {
		c.ExternalID = externalID
	}
	return &c
}

// ClassOf classifica qualquer erro. Erros fora da taxonomia são tratados como Transient.
func ClassOf(err error) ErrorClass {
	if err == nil {
		return ""
	}

	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr.Class
	}

	for class, sentinel := range classSentinels {
		if errors.Is(err, sentinel) {
			return class
		}
	}

	return ErrorClassTransient
}

// IsFatalForAccount indica as classes que abortam a execução da conta inteira
func IsFatalForAccount(err error) bool {
	switch ClassOf(err) {
	case ErrorClassUnauthorized, ErrorClassForbidden, ErrorClassUnauthenticated:
		return true
	}
	return false
}

// AsSyncError garante um *SyncError, encapsulando erros desconhecidos como Transient
func AsSyncError(err error) *SyncError {
	if err == nil {
		return nil
	}
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr
	}
	return &SyncError{Class: ClassOf(err), Err: err}
}
