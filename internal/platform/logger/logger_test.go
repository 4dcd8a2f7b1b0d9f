package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	is := is.New(t)

	_, err := New(Config{Level: "loud"})
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "invalid log level"))
}

func TestNewWritesToRotatingFile(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "judge.log")

	log, err := New(Config{Level: "debug", Format: "json", File: path})
	is.NoErr(err)
	log.Info("submission judged")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	is.NoErr(err)
	is.True(strings.Contains(string(data), `"msg":"submission judged"`))
}
