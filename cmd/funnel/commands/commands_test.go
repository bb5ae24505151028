package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dealfunnel/internal/stages"
)

func TestResolveStage(t *testing.T) {
	catalog := stages.Default()

	got, err := resolveStage(catalog, "Все готово")
	require.NoError(t, err)
	assert.Equal(t, "Все готово", got)

	got, err = resolveStage(catalog, "13")
	require.NoError(t, err)
	assert.Equal(t, "Подтвердил заказ без предоплаты", got)

	_, err = resolveStage(catalog, "26")
	assert.Error(t, err)

	_, err = resolveStage(catalog, "нет такой")
	assert.Error(t, err)
}

func TestResolveDate(t *testing.T) {
	got, err := resolveDate("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", got)

	got, err = resolveDate("")
	require.NoError(t, err)
	assert.Len(t, got, 10)

	_, err = resolveDate("15.01.2024")
	assert.Error(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"stats", "deals", "dates", "calendar", "serve"} {
		assert.True(t, names[want], want)
	}
}
