package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestNamedLoggerPrefix(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	ForComponent("places").Infof("fetched %d results", 3)

	out := buf.String()
	if !strings.Contains(out, "INFO [places] fetched 3 results") {
		t.Errorf("unexpected log line: %q", out)
	}
}

func TestDebugSuppressedByDefault(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	ForComponent("quiet").Debugf("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug line emitted without debug enabled: %q", buf.String())
	}

	EnableDebugFor("quiet")
	ForComponent("quiet").Debugf("visible")
	if !strings.Contains(buf.String(), "DEBUG [quiet] visible") {
		t.Errorf("debug line missing after enabling debug: %q", buf.String())
	}
}

func TestGlobalDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	SetGlobalDebug(true)
	defer SetGlobalDebug(false)

	ForComponent("anything").Debugf("on")
	if !strings.Contains(buf.String(), "DEBUG [anything] on") {
		t.Errorf("global debug did not enable debug lines: %q", buf.String())
	}
}

func TestForComponentMemoizes(t *testing.T) {
	if ForComponent("cache") != ForComponent("cache") {
		t.Error("ForComponent should return the same logger for the same name")
	}
}
