package ihex

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moffa90/go-mysb/protocol"
)

const fixture = "testdata/firmware.hex"

func TestLoad(t *testing.T) {
	img, err := Load(fixture)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if img.Blocks != 80 {
		t.Errorf("Blocks = %d, want 80", img.Blocks)
	}
	if img.CRC != 0x46D4 {
		t.Errorf("CRC = 0x%04X, want 0x46D4", img.CRC)
	}
	if len(img.Data) != 1280 {
		t.Errorf("len(Data) = %d, want 1280", len(img.Data))
	}

	first, ok := img.Block(0)
	if !ok {
		t.Fatal("Block(0) reported out of range")
	}
	want := []byte{
		0x0C, 0x94, 0x5C, 0x00, 0x0C, 0x94, 0x6E, 0x00,
		0x0C, 0x94, 0x6E, 0x00, 0x0C, 0x94, 0x6E, 0x00,
	}
	if !bytes.Equal(first, want) {
		t.Errorf("Block(0) = %X, want %X", first, want)
	}

	// The last record ends two bytes into block 0x4A
	partial, _ := img.Block(0x4A)
	if partial[0] != 0xFF || partial[1] != 0xCF || partial[2] != Fill {
		t.Errorf("Block(0x4A) = %X, want FFCF followed by fill", partial)
	}

	last, _ := img.Block(79)
	if !bytes.Equal(last, bytes.Repeat([]byte{Fill}, protocol.BlockSize)) {
		t.Errorf("Block(79) = %X, want all fill", last)
	}
}

func TestLoadStrictFixture(t *testing.T) {
	img, err := Load(fixture, Strict())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if img.CRC != 0x46D4 {
		t.Errorf("CRC = 0x%04X, want 0x46D4", img.CRC)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.hex"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("error type = %T, want *LoadError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist, got: %v", err)
	}
}

func TestLoadParseErrorHasPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.hex")
	if err := os.WriteFile(path, []byte(":0400000001020304F2\nnot a record\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if pe.Line != 2 {
		t.Errorf("Line = %d, want 2", pe.Line)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error should mention %s, got: %v", path, err)
	}
}

func TestLoadReader(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantData   []byte
		wantLen    int
		wantBlocks uint16
	}{
		{
			name:       "single record",
			input:      ":0400000001020304F2\n:00000001FF\n",
			wantData:   []byte{0x01, 0x02, 0x03, 0x04, Fill},
			wantLen:    128,
			wantBlocks: 8,
		},
		{
			name: "hole filled with 0xFF",
			input: ":0400000001020304F2\n" +
				":02000800AABB91\n",
			wantData:   []byte{0x01, 0x02, 0x03, 0x04, Fill, Fill, Fill, Fill, 0xAA, 0xBB, Fill},
			wantLen:    128,
			wantBlocks: 8,
		},
		{
			name:       "image starts at first record offset",
			input:      ":04010000DEADBEEFC3\n",
			wantData:   []byte{0xDE, 0xAD, 0xBE, 0xEF, Fill},
			wantLen:    128,
			wantBlocks: 8,
		},
		{
			name:       "garbage before record mark",
			input:      "\x7f\x7fgarbage:0400000001020304F2\n",
			wantData:   []byte{0x01, 0x02, 0x03, 0x04},
			wantLen:    128,
			wantBlocks: 8,
		},
		{
			name: "blank lines and non-data records skipped",
			input: "\n:020000040000FA\n\n" +
				":0400000001020304F2\n   \n" +
				":00000001FF\n",
			wantData:   []byte{0x01, 0x02, 0x03, 0x04},
			wantLen:    128,
			wantBlocks: 8,
		},
		{
			name:       "lower case hex",
			input:      ":04000000deadbeefc4\n",
			wantData:   []byte{0xDE, 0xAD, 0xBE, 0xEF},
			wantLen:    128,
			wantBlocks: 8,
		},
		{
			name:       "checksum not verified",
			input:      ":040000000102030400\n",
			wantData:   []byte{0x01, 0x02, 0x03, 0x04},
			wantLen:    128,
			wantBlocks: 8,
		},
		{
			name:       "checksum missing",
			input:      ":0400000001020304\n",
			wantData:   []byte{0x01, 0x02, 0x03, 0x04},
			wantLen:    128,
			wantBlocks: 8,
		},
		{
			name: "overlapping records appended",
			input: ":0400000001020304F2\n" +
				":0400020005060708E0\n",
			wantData:   []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, Fill},
			wantLen:    128,
			wantBlocks: 8,
		},
		{
			name:       "no data records",
			input:      ":00000001FF\n",
			wantData:   bytes.Repeat([]byte{Fill}, 128),
			wantLen:    128,
			wantBlocks: 0,
		},
		{
			name:       "empty input",
			input:      "",
			wantData:   bytes.Repeat([]byte{Fill}, 128),
			wantLen:    128,
			wantBlocks: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := LoadReader(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(img.Data) != tt.wantLen {
				t.Errorf("len(Data) = %d, want %d", len(img.Data), tt.wantLen)
			}
			if !bytes.HasPrefix(img.Data, tt.wantData) {
				t.Errorf("Data = %X..., want prefix %X", img.Data[:len(tt.wantData)], tt.wantData)
			}
			if img.Blocks != tt.wantBlocks {
				t.Errorf("Blocks = %d, want %d", img.Blocks, tt.wantBlocks)
			}
			if img.CRC != protocol.CRC16(img.Data[:img.Size()]) {
				t.Errorf("CRC = 0x%04X does not cover the served blocks", img.CRC)
			}
		})
	}
}

func TestLoadReaderEmptyImageCRC(t *testing.T) {
	img, err := LoadReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.CRC != protocol.CRC16InitialValue {
		t.Errorf("CRC = 0x%04X, want 0x%04X", img.CRC, protocol.CRC16InitialValue)
	}
	if _, ok := img.Block(0); ok {
		t.Error("Block(0) of an empty image should be out of range")
	}
}

func TestLoadReaderPadding(t *testing.T) {
	sizes := []int{1, 15, 16, 127, 128, 129, 1186, 4096}

	for _, size := range sizes {
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(i * 7)
		}

		var buf bytes.Buffer
		if err := Encode(&buf, 0, data); err != nil {
			t.Fatalf("Encode(%d bytes): %v", size, err)
		}

		img, err := LoadReader(&buf)
		if err != nil {
			t.Fatalf("LoadReader(%d bytes): %v", size, err)
		}

		if len(img.Data)%PageSize != 0 {
			t.Errorf("size %d: len(Data) = %d, not a multiple of %d", size, len(img.Data), PageSize)
		}
		if len(img.Data)%protocol.BlockSize != 0 {
			t.Errorf("size %d: len(Data) = %d, not a multiple of %d", size, len(img.Data), protocol.BlockSize)
		}
		if int(img.Blocks) != len(img.Data)/protocol.BlockSize {
			t.Errorf("size %d: Blocks = %d, want %d", size, img.Blocks, len(img.Data)/protocol.BlockSize)
		}
		if !bytes.Equal(img.Data[:size], data) {
			t.Errorf("size %d: data not preserved", size)
		}
	}
}

func TestLoadReaderAlignedImageGetsExtraPage(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, 0, make([]byte, PageSize)); err != nil {
		t.Fatal(err)
	}

	img, err := LoadReader(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(img.Data) != 2*PageSize {
		t.Errorf("len(Data) = %d, want %d", len(img.Data), 2*PageSize)
	}
	if img.Blocks != 16 {
		t.Errorf("Blocks = %d, want 16", img.Blocks)
	}
}

func TestLoadReaderErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     []Option
		wantLine int
		errMsg   string
	}{
		{
			name:     "no record mark",
			input:    ":0400000001020304F2\nnot a record\n",
			wantLine: 2,
			errMsg:   "no record mark",
		},
		{
			name:     "header too short",
			input:    ":040000\n",
			wantLine: 1,
			errMsg:   "record too short",
		},
		{
			name:     "invalid header hex",
			input:    ":0G00000001020304F2\n",
			wantLine: 1,
			errMsg:   "invalid hex in record header",
		},
		{
			name:     "truncated data",
			input:    "\n:04000000010203\n",
			wantLine: 2,
			errMsg:   "record data truncated",
		},
		{
			name:     "invalid data hex",
			input:    ":0400000001020Z04F2\n",
			wantLine: 1,
			errMsg:   "invalid hex in record data",
		},
		{
			name:     "strict checksum mismatch",
			input:    ":040000000102030400\n",
			opts:     []Option{Strict()},
			wantLine: 1,
			errMsg:   "checksum mismatch",
		},
		{
			name:     "strict checksum missing",
			input:    ":0400000001020304\n",
			opts:     []Option{Strict()},
			wantLine: 1,
			errMsg:   "missing or malformed checksum",
		},
		{
			name:     "strict trailing characters",
			input:    ":0400000001020304F2FF\n",
			opts:     []Option{Strict()},
			wantLine: 1,
			errMsg:   "missing or malformed checksum",
		},
		{
			name: "strict overlap",
			input: ":0400000001020304F2\n" +
				":0400020005060708E0\n",
			opts:     []Option{Strict()},
			wantLine: 2,
			errMsg:   "overlaps",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadReader(strings.NewReader(tt.input), tt.opts...)
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.errMsg)
			}

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error type = %T, want *ParseError", err)
			}
			if pe.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", pe.Line, tt.wantLine)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want substring %q", err, tt.errMsg)
			}
		})
	}
}

func TestParseRecord(t *testing.T) {
	rec, err := ParseRecord("  :100010000C946E000C946E000C946E000C946E00A8  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Type != RecordData {
		t.Errorf("Type = 0x%02X, want 0x%02X", rec.Type, RecordData)
	}
	if rec.Offset != 0x0010 {
		t.Errorf("Offset = 0x%04X, want 0x0010", rec.Offset)
	}
	if len(rec.Data) != 16 {
		t.Errorf("len(Data) = %d, want 16", len(rec.Data))
	}
	if !rec.HasChecksum || rec.Checksum != 0xA8 {
		t.Errorf("Checksum = 0x%02X (present=%v), want 0xA8", rec.Checksum, rec.HasChecksum)
	}

	eof, err := ParseRecord(":00000001FF")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eof.Type != RecordEndOfFile || len(eof.Data) != 0 {
		t.Errorf("EOF record = %+v", eof)
	}
}

func TestBlockOutOfRange(t *testing.T) {
	img, err := Load(fixture)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := img.Block(img.Blocks); ok {
		t.Error("Block(Blocks) should be out of range")
	}
	if _, ok := img.Block(0xFFFF); ok {
		t.Error("Block(0xFFFF) should be out of range")
	}

	// Returned blocks are copies
	b, _ := img.Block(0)
	b[0] = 0x00
	if img.Data[0] != 0x0C {
		t.Error("Block() must not alias image data")
	}
}

func BenchmarkLoadReader(b *testing.B) {
	data := make([]byte, 32*1024)
	for i := range data {
		data[i] = byte(i)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, 0, data); err != nil {
		b.Fatal(err)
	}
	content := buf.Bytes()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := LoadReader(bytes.NewReader(content)); err != nil {
			b.Fatal(err)
		}
	}
}
