package log

import (
	"context"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Fields é um alias para logrus.Fields
type Fields = logrus.Fields

type contextKey string

const (
	// CorrelationIDKey guarda o id da requisição HTTP no contexto
	CorrelationIDKey contextKey = "correlation_id"
	// RunIDKey guarda o id da execução de sincronização no contexto
	RunIDKey contextKey = "run_id"
)

const (
	correlationIDField = "correlation_id"
	runIDField         = "run_id"
)

// IsDevelopment retorna verdadeiro se estamos em ambiente de desenvolvimento
func IsDevelopment() bool {
	env := os.Getenv("APP_ENV")
	return env == "" || env == "development" || env == "dev"
}

// Setup define formato e nível do logger global.
// Em produção os logs saem em JSON para serem indexados pelos campos de sincronização.
func Setup(level string) {
	if IsDevelopment() {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
			PadLevelText:    true,
		})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		logrus.Warnf("Nível de log inválido: %q, usando 'info'", level)
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// WithCorrelationID grava o id no contexto. Um id vazio gera um novo.
func WithCorrelationID(ctx context.Context, id string) (context.Context, string) {
	if id == "" {
		id = uuid.New().String()
	}
	return context.WithValue(ctx, CorrelationIDKey, id), id
}

// GetCorrelationID obtém o ID de correlação do contexto
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(CorrelationIDKey).(string)
	return id
}

// WithRunID abre o escopo de uma execução de sincronização
func WithRunID(ctx context.Context) (context.Context, string) {
	id := uuid.New().String()
	return context.WithValue(ctx, RunIDKey, id), id
}

func GetRunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(RunIDKey).(string)
	return id
}

// ForContext devolve uma entry com os ids de correlação e de execução presentes no contexto
func ForContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(logrus.StandardLogger())

	if id := GetCorrelationID(ctx); id != "" {
		entry = entry.WithField(correlationIDField, id)
	}
	if id := GetRunID(ctx); id != "" {
		entry = entry.WithField(runIDField, id)
	}

	return entry
}

// ForRun abre uma execução da organização: as entries derivadas do contexto devolvido
// carregam o mesmo run_id, inclusive as das contas processadas em paralelo.
func ForRun(ctx context.Context, organizationID, trigger string) (context.Context, *logrus.Entry) {
	ctx, _ = WithRunID(ctx)

	return ctx, ForContext(ctx).WithFields(Fields{
		"organization_id": organizationID,
		"trigger":         trigger,
	})
}
