package rdblog

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestForTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})
	defer base.SetOutput(os.Stderr)

	For("dispatch").Infof("shard %d ready", 3)
	assert.True(t, strings.Contains(buf.String(), "component=dispatch"))
	assert.True(t, strings.Contains(buf.String(), "shard 3 ready"))
}

func TestWithFieldAddsContext(t *testing.T) {
	var buf bytes.Buffer
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})
	defer base.SetOutput(os.Stderr)

	For("backfill").WithField("shard", 2).Warnf("recency violation")
	assert.True(t, strings.Contains(buf.String(), "shard=2"))
}
