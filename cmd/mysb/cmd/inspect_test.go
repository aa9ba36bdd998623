package cmd

import (
	"bytes"
	"strings"
	"testing"
)

const fixture = "../../../ihex/testdata/firmware.hex"

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	inspectStrict = false
	inspectBlock = -1
	inspectDump = false
	inspectType = 1
	inspectVersion = 1

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestInspect(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
		errMsg  string
	}{
		{
			name: "summary",
			args: []string{"inspect", fixture},
			want: []string{
				"Size:    1280 bytes",
				"Blocks:  80",
				"CRC:     0x46D4",
				"Config:  010001005000D446",
			},
		},
		{
			name: "strict",
			args: []string{"inspect", "--strict", fixture},
			want: []string{"Blocks:  80"},
		},
		{
			name: "type and version",
			args: []string{"inspect", "--fw-type", "2", "--fw-version", "3", fixture},
			want: []string{"Config:  020003005000D446"},
		},
		{
			name: "first block",
			args: []string{"inspect", "--block", "0", fixture},
			want: []string{"Block:   0100010000000C945C000C946E000C946E000C946E00"},
		},
		{
			name:    "block out of range",
			args:    []string{"inspect", "--block", "80", fixture},
			wantErr: true,
			errMsg:  "out of range",
		},
		{
			name:    "missing file",
			args:    []string{"inspect", "does-not-exist.hex"},
			wantErr: true,
			errMsg:  "does-not-exist.hex",
		},
		{
			name:    "missing argument",
			args:    []string{"inspect"},
			wantErr: true,
			errMsg:  "accepts 1 arg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got output %q", out)
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errMsg)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestInspectDump(t *testing.T) {
	out, err := execute(t, "inspect", "--dump", fixture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 81 {
		t.Fatalf("expected 80 data records and EOF, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], ":100000000C945C000C946E000C946E000C946E00") {
		t.Errorf("unexpected first record %q", lines[0])
	}
	if lines[80] != ":00000001FF" {
		t.Errorf("unexpected last record %q", lines[80])
	}
	if strings.Contains(out, "Blocks:") {
		t.Error("dump should not print the summary")
	}
}
