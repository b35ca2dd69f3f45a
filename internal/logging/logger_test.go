package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelDebug, Output: &buf})

	logger.Debug("loading fragment", Rule("core-style"), Path("/tmp/core-style.md"))

	out := buf.String()
	for _, want := range []string{"loading fragment", "rule=core-style", "path=/tmp/core-style.md"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelInfo, Output: &buf, JSON: true})

	logger.Info("compiled command", Command("review"), Count(3))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if record["msg"] != "compiled command" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record[KeyCommand] != "review" {
		t.Errorf("command = %v", record[KeyCommand])
	}
	if record[KeyCount] != float64(3) {
		t.Errorf("count = %v", record[KeyCount])
	}
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelWarn, Output: &buf})

	logger.Info("quiet")
	logger.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Error("info record emitted below warn level")
	}
	if !strings.Contains(out, "loud") {
		t.Error("warn record missing")
	}
}

func TestErr(t *testing.T) {
	if attr := Err(nil); !attr.Equal(Err(nil)) || attr.Key != "" {
		t.Errorf("Err(nil) = %v, want zero attr", attr)
	}

	err := errors.New("boom")
	attr := Err(err)
	if attr.Key != KeyError {
		t.Errorf("Err().Key = %q", attr.Key)
	}
	if attr.Value.Any() != err {
		t.Errorf("Err().Value = %v", attr.Value)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Level != LevelWarn {
		t.Errorf("Level = %v, want warn", opts.Level)
	}
	if opts.JSON {
		t.Error("JSON enabled by default")
	}
}
