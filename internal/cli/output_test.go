package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/lu-zhengda/mailstate/internal/app"
)

func TestFprintJSON(t *testing.T) {
	t.Run("simple map", func(t *testing.T) {
		var buf bytes.Buffer
		input := map[string]string{"key": "value"}

		if err := fprintJSON(&buf, input); err != nil {
			t.Fatalf("fprintJSON() error = %v", err)
		}

		var got map[string]string
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if got["key"] != "value" {
			t.Errorf("got key=%q, want %q", got["key"], "value")
		}
	})

	t.Run("indented output", func(t *testing.T) {
		var buf bytes.Buffer
		input := map[string]int{"a": 1}

		if err := fprintJSON(&buf, input); err != nil {
			t.Fatalf("fprintJSON() error = %v", err)
		}

		output := buf.String()
		if output == `{"a":1}`+"\n" {
			t.Error("expected indented JSON, got compact")
		}
	})

	t.Run("nil value", func(t *testing.T) {
		var buf bytes.Buffer
		if err := fprintJSON(&buf, nil); err != nil {
			t.Fatalf("fprintJSON() error = %v", err)
		}
		if got := buf.String(); got != "null\n" {
			t.Errorf("got %q, want %q", got, "null\n")
		}
	})

	t.Run("empty slice", func(t *testing.T) {
		var buf bytes.Buffer
		if err := fprintJSON(&buf, []string{}); err != nil {
			t.Fatalf("fprintJSON() error = %v", err)
		}
		if got := buf.String(); got != "[]\n" {
			t.Errorf("got %q, want %q", got, "[]\n")
		}
	})
}

func TestDatabaseDetail(t *testing.T) {
	tests := []struct {
		name string
		in   app.DatabaseReport
		want string
	}{
		{
			name: "created",
			in:   app.DatabaseReport{Created: true, VersionAfter: "4"},
			want: "version 4, 0 partition(s)",
		},
		{
			name: "upgraded and pruned",
			in: app.DatabaseReport{
				Changed: true, VersionBefore: "3", VersionAfter: "4", Partitions: 1,
				Pruned: []string{"protonmail:a", "tutanota:b"},
			},
			want: "version 3 -> 4, 1 partition(s), pruned protonmail:a tutanota:b",
		},
		{
			name: "same version",
			in:   app.DatabaseReport{VersionBefore: "4", VersionAfter: "4", Partitions: 2},
			want: "version 4, 2 partition(s)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := databaseDetail(tt.in); got != tt.want {
				t.Errorf("databaseDetail() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintReport(t *testing.T) {
	r := &app.Report{
		AppVersion: "3.8.1",
		DryRun:     true,
		Config:     app.DocumentReport{Changed: true, Revision: 3},
		Settings:   app.DocumentReport{Revision: 2},
		Database:   app.DatabaseReport{Reset: true, Changed: true, VersionBefore: "1", VersionAfter: "4"},
	}
	var buf bytes.Buffer
	if err := printReport(&buf, r); err != nil {
		t.Fatalf("printReport() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}
	if lines[0] != "Pending upgrade to 3.8.1 (dry run)" {
		t.Errorf("header = %q", lines[0])
	}
	for i, want := range []string{"upgraded", "up to date", "reset"} {
		if !strings.Contains(lines[i+1], want) {
			t.Errorf("line %d = %q, want it to contain %q", i+1, lines[i+1], want)
		}
	}
}
