package ihex

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/moffa90/go-mysb/protocol"
)

// RecordSize is the number of data bytes Encode puts in one record.
const RecordSize = 16

// Encode writes data as Intel-HEX data records starting at offset, followed
// by an end-of-file record.
//
// Example:
//
//	var buf bytes.Buffer
//	err := ihex.Encode(&buf, 0x0000, img.Data[:img.Size()])
func Encode(w io.Writer, offset uint16, data []byte) error {
	if int(offset)+len(data) > 0x10000 {
		return fmt.Errorf("data of %d bytes at offset 0x%04X exceeds the 64 KiB address space", len(data), offset)
	}

	bw := bufio.NewWriter(w)
	for i := 0; i < len(data); i += RecordSize {
		end := i + RecordSize
		if end > len(data) {
			end = len(data)
		}

		addr := int(offset) + i
		if _, err := bw.WriteString(formatRecord(RecordData, uint16(addr), data[i:end])); err != nil {
			return err
		}
	}

	if _, err := bw.WriteString(formatRecord(RecordEndOfFile, 0, nil)); err != nil {
		return err
	}

	return bw.Flush()
}

// formatRecord renders one record line including the trailing newline.
func formatRecord(recordType byte, offset uint16, data []byte) string {
	rec := make([]byte, 0, 4+len(data)+1)
	rec = append(rec, byte(len(data)), byte(offset>>8), byte(offset), recordType)
	rec = append(rec, data...)
	rec = append(rec, protocol.RecordChecksum(rec))

	return string(RecordMark) + strings.ToUpper(hex.EncodeToString(rec)) + "\n"
}
