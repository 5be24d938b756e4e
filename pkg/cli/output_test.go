package cli

import (
	"bytes"
	"encoding/json"
	"testing"
)

type versionLine struct {
	Version string `json:"version"`
}

func (v versionLine) String() string { return "courier " + v.Version }

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format  OutputFormat
		want    string
		wantErr bool
	}{
		{format: FormatText, want: "courier 1.0.0\n"},
		{format: "", want: "courier 1.0.0\n"},
		{format: FormatJSON, want: "{\n  \"version\": \"1.0.0\"\n}\n"},
		{format: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f, err := NewFormatter(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewFormatter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			var buf bytes.Buffer
			if err := f.FormatTo(&buf, versionLine{Version: "1.0.0"}); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestJSONFormatter_NoHTMLEscape(t *testing.T) {
	var buf bytes.Buffer
	if err := (JSONFormatter{}).FormatTo(&buf, map[string]string{"result": "<b>&</b>"}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("<b>&</b>")) {
		t.Errorf("output was HTML-escaped: %s", buf.String())
	}

	var decoded map[string]string
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
}
