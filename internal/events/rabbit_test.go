package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRabbitDisabled(t *testing.T) {
	r, err := NewRabbit("", "ferreriwork.events")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestNilRabbitIsNoop(t *testing.T) {
	var r *Rabbit
	assert.NoError(t, r.Publish(context.Background(), "catalog.product.created", map[string]int{"id": 1}))
	assert.NotPanics(t, r.Close)
}
