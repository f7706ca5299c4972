package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/clients"
	cfg "github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/config"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestReplayCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := replayCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"scenarios/doorway.yaml"})
	cmd.SetContext(context.Background())
	require.NoError(t, cmd.Execute())

	var reports []struct {
		Calculated string `json:"calculatedMood"`
		Smoothed   string `json:"smoothedMood"`
		Changed    bool   `json:"changed"`
		Sfx        string `json:"sfx"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &reports))
	require.Len(t, reports, 6)

	assert.True(t, reports[0].Changed)
	assert.Equal(t, "sad", reports[0].Smoothed)
	assert.Equal(t, "neutral", reports[2].Calculated)
	// loved it, but one happy frame is not enough
	assert.Equal(t, "happy", reports[3].Calculated)
	assert.Equal(t, "sad", reports[3].Smoothed)
	assert.True(t, reports[4].Changed)
	assert.Equal(t, "happy", reports[4].Smoothed)
	assert.Equal(t, "party", reports[4].Sfx)
	assert.Equal(t, "boom", reports[5].Sfx)
}

func TestNewScorer(t *testing.T) {
	t.Run("lexicon by default", func(t *testing.T) {
		conf := &cfg.Root{}
		s, err := newScorer(conf, quietLogger())
		require.NoError(t, err)
		v, err := s.Score(context.Background(), "so excited!")
		require.NoError(t, err)
		assert.Equal(t, 5.0, v)
	})

	t.Run("remote when configured", func(t *testing.T) {
		conf := &cfg.Root{}
		conf.Services.Sentiment.URL = "http://sentiment:9000"
		s, err := newScorer(conf, quietLogger())
		require.NoError(t, err)
		assert.IsType(t, &clients.RemoteScorer{}, s)
	})

	t.Run("missing lexicon file", func(t *testing.T) {
		conf := &cfg.Root{}
		conf.Paths.Lexicon = "does/not/exist.yaml"
		_, err := newScorer(conf, quietLogger())
		assert.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	conf := &cfg.Root{}
	conf.Pipeline.LogLvl = "warn"
	conf.Pipeline.LogFormat = "json"
	l := newLogger(conf)
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)

	conf.Pipeline.LogLvl = "loud"
	assert.Equal(t, logrus.InfoLevel, newLogger(conf).GetLevel())
}
