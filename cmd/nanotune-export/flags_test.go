package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSkip(t *testing.T) {
	got, err := parseSkip("a:1,2; b:3 ;")
	require.NoError(t, err)
	assert.Equal(t, map[string][]int{"a": {1, 2}, "b": {3}}, got)

	got, err = parseSkip("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseSkip("a1,2")
	require.ErrorIs(t, err, errUsage)

	_, err = parseSkip("a:x")
	require.ErrorIs(t, err, errUsage)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a,,b "))
	assert.Nil(t, splitList(""))
}

func TestParseQuality(t *testing.T) {
	q, err := parseQuality("1")
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, 1, *q)

	q, err = parseQuality("")
	require.NoError(t, err)
	assert.Nil(t, q)

	_, err = parseQuality("good")
	require.ErrorIs(t, err, errUsage)
}

func TestRun_Usage(t *testing.T) {
	require.ErrorIs(t, run(context.Background(), nil), errUsage)
	require.ErrorIs(t, run(context.Background(), []string{"train"}), errUsage)
	require.ErrorIs(t, run(context.Background(), []string{"export", "-category", "pinchoff"}), errUsage)
	require.ErrorIs(t, run(context.Background(), []string{"correct"}), errUsage)
}
