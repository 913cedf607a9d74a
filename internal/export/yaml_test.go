package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/eebc-chat/internal"
	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	exporter := &YAMLExporter{}
	if err := exporter.Export(internal.CreateTestSession("s1"), &buf); err != nil {
		t.Fatalf("YAMLExporter.Export() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{"id: s1", "district: Colombo", "role: assistant", "applies: \"yes\"", "chunk_id: p12_c3"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}

	var decoded internal.Session
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if len(decoded.Messages) != 2 || decoded.Messages[1].Meta.Applies != internal.AppliesYes {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestYAMLExporter_NoContext(t *testing.T) {
	var buf bytes.Buffer
	session := internal.CreateTestSessionWithMessages("s2", []internal.ChatMessage{})
	if err := (&YAMLExporter{}).Export(session, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(buf.String(), "context: null") {
		t.Errorf("missing context should be null:\n%s", buf.String())
	}
}

func TestYAMLExporter_Extension(t *testing.T) {
	if got := (&YAMLExporter{}).Extension(); got != "yaml" {
		t.Errorf("YAMLExporter.Extension() = %v, want yaml", got)
	}
}
