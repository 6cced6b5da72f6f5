package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/vector-bt/internal/backtest"
	"github.com/yourusername/vector-bt/internal/strategy"
)

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"fast=5", "threshold=1.5", "long_only=true", "mode = fast "})
	require.NoError(t, err)
	assert.Equal(t, strategy.Params{
		"fast":      5,
		"threshold": 1.5,
		"long_only": true,
		"mode":      "fast",
	}, params)

	_, err = parseParams([]string{"fast"})
	assert.Error(t, err)
	_, err = parseParams([]string{"=5"})
	assert.Error(t, err)
}

type recordingRenderer struct {
	calls int
	err   error
}

func (r *recordingRenderer) Render(backtest.ReportSeries) error {
	r.calls++
	return r.err
}

func TestMultiRendererRendersAll(t *testing.T) {
	first := &recordingRenderer{err: errors.New("disk full")}
	second := &recordingRenderer{}

	err := multiRenderer{first, second}.Render(backtest.ReportSeries{})
	assert.EqualError(t, err, "disk full")
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}
