package logging_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jenshnielsen/nanotune/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]logging.Level{
		"debug":   logging.DebugLevel,
		"":        logging.InfoLevel,
		"INFO":    logging.InfoLevel,
		"warning": logging.WarnLevel,
		"error":   logging.ErrorLevel,
		"fatal":   logging.FatalLevel,
	}
	for in, want := range cases {
		got, err := logging.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := logging.ParseLevel("chatty")
	require.Error(t, err)
}

func TestWriterLogger_LevelsAndFields(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := logging.NewWriterLogger(&stdout, &stderr)

	logger.Debug("hidden")
	assert.Empty(t, stdout.String())

	logger.WithFields(logging.Fields{"source": "db1", "id": 7}).Info("loaded")
	assert.Contains(t, stdout.String(), "[INFO] loaded id=7 source=db1")

	logger.Error(errors.New("boom"), "record failed")
	assert.Contains(t, stderr.String(), "[ERROR] record failed: boom")

	logger.SetLevel(logging.ErrorLevel)
	stdout.Reset()
	logger.Info("quiet")
	assert.Empty(t, stdout.String())
}

func TestWithFields_SharesLevel(t *testing.T) {
	var stdout bytes.Buffer
	root := logging.NewWriterLogger(&stdout, &stdout)
	child := root.WithFields(logging.Fields{"run_id": "r1"})

	root.SetLevel(logging.DebugLevel)
	child.Debug("visible")
	assert.Contains(t, stdout.String(), "[DEBUG] visible run_id=r1")

	child.Info("no leak", logging.Fields{"extra": 1})
	root.Info("root")
	assert.Contains(t, stdout.String(), "[INFO] root\n")
}

func TestWithContext_PicksUpFields(t *testing.T) {
	var stdout bytes.Buffer
	logger := logging.NewWriterLogger(&stdout, &stdout)

	ctx := logging.ContextWithFields(context.Background(), logging.Fields{"run": "abc"})
	logger.WithContext(ctx).Info("start")

	assert.Contains(t, stdout.String(), "run=abc")
}

func TestOrGlobal(t *testing.T) {
	noop := &logging.NoOpLogger{}
	assert.Same(t, noop, logging.OrGlobal(noop))
	assert.NotNil(t, logging.OrGlobal(nil))
}
