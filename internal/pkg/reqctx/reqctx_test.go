package reqctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", RequestID(ctx))
	assert.Equal(t, "abc", RequestID(WithRequestID(ctx, "abc")))
}

func TestQueryName(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unnamed", QueryName(ctx))
	assert.Equal(t, "unnamed", QueryName(WithQueryName(ctx, "")))
	assert.Equal(t, "period_high", QueryName(WithQueryName(ctx, "period_high")))
}
