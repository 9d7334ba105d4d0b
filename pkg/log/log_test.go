package log

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForContext(t *testing.T) {
	tests := []struct {
		name       string
		ctx        func() context.Context
		wantFields []string
		noFields   []string
	}{
		{
			name:     "Contexto vazio",
			ctx:      context.Background,
			noFields: []string{correlationIDField, runIDField},
		},
		{
			name: "Somente correlação",
			ctx: func() context.Context {
				ctx, _ := WithCorrelationID(context.Background(), "req-1")
				return ctx
			},
			wantFields: []string{correlationIDField},
			noFields:   []string{runIDField},
		},
		{
			name: "Correlação e execução",
			ctx: func() context.Context {
				ctx, _ := WithCorrelationID(context.Background(), "")
				ctx, _ = WithRunID(ctx)
				return ctx
			},
			wantFields: []string{correlationIDField, runIDField},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := ForContext(tt.ctx())

			for _, f := range tt.wantFields {
				assert.Contains(t, entry.Data, f)
			}
			for _, f := range tt.noFields {
				assert.NotContains(t, entry.Data, f)
			}
		})
	}
}

func TestWithCorrelationID_MantemIDRecebido(t *testing.T) {
	ctx, id := WithCorrelationID(context.Background(), "abc-123")

	assert.Equal(t, "abc-123", id)
	assert.Equal(t, "abc-123", GetCorrelationID(ctx))

	_, generated := WithCorrelationID(context.Background(), "")
	assert.Len(t, generated, 36)
}

func TestForRun(t *testing.T) {
	ctx, entry := ForRun(context.Background(), "org-1", "manual")

	runID := GetRunID(ctx)
	require.NotEmpty(t, runID)
	assert.Equal(t, runID, entry.Data[runIDField])
	assert.Equal(t, "org-1", entry.Data["organization_id"])
	assert.Equal(t, "manual", entry.Data["trigger"])

	// entries derivadas mais tarde no mesmo contexto mantêm o run_id
	assert.Equal(t, runID, ForContext(ctx).Data[runIDField])

	ctx2, _ := ForRun(context.Background(), "org-1", "scheduled")
	assert.NotEqual(t, runID, GetRunID(ctx2))
}
