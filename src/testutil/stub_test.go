package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/sandrolain/table-bridge/src/connectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubSourceStreamsRecordsThenError(t *testing.T) {
	src := NewStubSource(Rows(1, 2)...).WithError(errors.New("boom"))

	var ids []int64
	var errs []error
	for item := range src.Read(context.Background()) {
		if item.Error != nil {
			errs = append(errs, item.Error)
			continue
		}
		ids = append(ids, item.Value.ID().Int())
	}

	assert.Equal(t, []int64{1, 2}, ids)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], connectors.ErrSourceRead)
	assert.Equal(t, 1, src.ReadCalls)
}

func TestStubTargetLifecycle(t *testing.T) {
	ctx := context.Background()
	target := NewStubTarget().FailOn(2, errors.New("bad row"))
	rows := Rows(1, 2)

	assert.False(t, target.Process(ctx, rows[0]).OK())

	require.NoError(t, target.Setup(ctx))
	assert.True(t, target.Process(ctx, rows[0]).OK())
	assert.Equal(t, "ERRO: bad row", target.Process(ctx, rows[1]).Outcome())

	require.NoError(t, target.Teardown(ctx))
	assert.Equal(t, 1, target.SetupCalls)
	assert.Equal(t, 1, target.TeardownCalls)
	assert.Len(t, target.Processed, 3)
}
