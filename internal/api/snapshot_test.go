package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCountrySnapshot_CachesUntilInvalidated(t *testing.T) {
	ms := new(MockStore)
	ms.On("ListCountries", mock.Anything).Return(catalogue(), nil)
	snap := NewCountrySnapshot(ms, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := snap.Countries(context.Background())
		require.NoError(t, err)
		assert.Len(t, got, 2)
	}
	ms.AssertNumberOfCalls(t, "ListCountries", 1)

	snap.Invalidate()
	_, err := snap.Countries(context.Background())
	require.NoError(t, err)
	ms.AssertNumberOfCalls(t, "ListCountries", 2)
}

func TestCountrySnapshot_ReturnsIndependentCopies(t *testing.T) {
	ms := new(MockStore)
	ms.On("ListCountries", mock.Anything).Return(catalogue(), nil)
	snap := NewCountrySnapshot(ms, time.Minute)

	first, err := snap.Countries(context.Background())
	require.NoError(t, err)
	first[0].Values["safety_index"] = 0
	first[0].Name = "mutated"

	second, err := snap.Countries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Canada", second[0].Name)
	assert.Equal(t, 8.8, second[0].Values["safety_index"])
}

func TestCountrySnapshot_ZeroTTLDisablesCache(t *testing.T) {
	ms := new(MockStore)
	ms.On("ListCountries", mock.Anything).Return(catalogue(), nil)
	snap := NewCountrySnapshot(ms, 0)

	snap.Countries(context.Background())
	snap.Countries(context.Background())
	ms.AssertNumberOfCalls(t, "ListCountries", 2)
}

func TestCountrySnapshot_ErrorNotCached(t *testing.T) {
	ms := new(MockStore)
	ms.On("ListCountries", mock.Anything).Return(nil, errors.New("boom")).Once()
	ms.On("ListCountries", mock.Anything).Return(catalogue(), nil)
	snap := NewCountrySnapshot(ms, time.Minute)

	_, err := snap.Countries(context.Background())
	assert.Error(t, err)

	got, err := snap.Countries(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
