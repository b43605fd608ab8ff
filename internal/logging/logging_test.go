package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewParsesLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, New("debug").GetLevel())
	assert.Equal(t, logrus.WarnLevel, New("warn").GetLevel())
	assert.Equal(t, logrus.InfoLevel, New("loud").GetLevel())
}

func TestNewWithOutputWrites(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput("info", &buf)

	l.WithField("repo", "acme/site").Info("published")
	l.Debug("hidden")

	assert.Contains(t, buf.String(), "published")
	assert.Contains(t, buf.String(), "repo=acme/site")
	assert.NotContains(t, buf.String(), "hidden")
}
