package logger

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestConsoleWritesPrefixedLines(t *testing.T) {
	var buf bytes.Buffer
	l := Console(&buf, "repl")
	l.Print("hello", "labels", 2)

	out := buf.String()
	assert.Contains(t, out, "repl")
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "labels=2")
}

func TestNewWithConfigLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithConfig(&buf, "", log.WarnLevel, false, false, log.LogfmtFormatter)
	l.Info("hidden")
	l.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "k=v")
}
