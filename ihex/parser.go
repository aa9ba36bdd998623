package ihex

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/moffa90/go-mysb/protocol"
)

// Constants for Intel-HEX parsing and image layout.
const (
	// PageSize is the alignment the image is padded to
	PageSize = 128

	// Fill is the value of padding and hole bytes (erased flash)
	Fill = 0xFF

	// RecordMark starts every record
	RecordMark = ':'

	// recordHeaderLength is ':' + length(2) + offset(4) + type(2) in characters
	recordHeaderLength = 9

	// maxImageSize is the largest image the 16-bit block counter can address
	maxImageSize = 0xFFFF * protocol.BlockSize
)

// Option configures loading.
type Option func(*options)

type options struct {
	strict bool
}

// Strict enables strict parsing: every record must carry a valid checksum
// byte and data records must not go backwards or overlap.
func Strict() Option {
	return func(o *options) {
		o.strict = true
	}
}

// Load loads an Intel-HEX firmware file.
//
// Example:
//
//	img, err := ihex.Load("firmware/1/1/firmware.hex")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d blocks, CRC 0x%04X\n", img.Blocks, img.CRC)
func Load(path string, opts ...Option) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	img, err := LoadReader(f, opts...)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}

	return img, nil
}

// LoadReader loads an Intel-HEX firmware image from any io.Reader.
func LoadReader(r io.Reader, opts ...Option) (*Image, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var (
		data    []byte
		started bool
		end     int
		records int
	)

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines
		if line == "" {
			continue
		}

		rec, err := parseRecord(line, o.strict)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Line = lineNum
				return nil, pe
			}
			return nil, &ParseError{Line: lineNum, Reason: "invalid record", Err: err}
		}

		if rec.Type != RecordData {
			continue
		}

		offset := int(rec.Offset)
		if !started {
			started = true
			end = offset
		}

		if o.strict && offset < end {
			return nil, &ParseError{
				Line:   lineNum,
				Reason: fmt.Sprintf("offset 0x%04X overlaps data ending at 0x%04X", offset, end),
			}
		}

		// Fill holes with erased flash
		if offset > end {
			data = append(data, bytes.Repeat([]byte{Fill}, offset-end)...)
			end = offset
		}

		data = append(data, rec.Data...)
		end += len(rec.Data)
		records++

		if len(data) > maxImageSize {
			return nil, &ParseError{Line: lineNum, Reason: "image too large", Err: ErrTooLarge}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, &LoadError{Err: err}
	}

	return newImage(data, records)
}

// newImage pads the data to PageSize and computes the block count and CRC.
func newImage(data []byte, records int) (*Image, error) {
	// A page-aligned image still gets a full page of padding
	pad := PageSize - len(data)%PageSize
	data = append(data, bytes.Repeat([]byte{Fill}, pad)...)

	blocks := len(data) / protocol.BlockSize
	if records == 0 {
		blocks = 0
	}
	if blocks > 0xFFFF {
		return nil, ErrTooLarge
	}

	return &Image{
		Data:   data,
		Blocks: uint16(blocks),
		CRC:    protocol.CRC16(data[:blocks*protocol.BlockSize]),
	}, nil
}

// ParseRecord parses a single Intel-HEX record leniently.
// Characters before the first ':' are ignored and the checksum byte is
// neither required nor verified.
func ParseRecord(line string) (*Record, error) {
	return parseRecord(strings.TrimSpace(line), false)
}

// parseRecord parses a single record.
//
// Record format:
//
//	[garbage]:[LEN(1)][OFFSET(2, big-endian)][TYPE(1)][DATA(LEN)][CHECKSUM(1)]
func parseRecord(line string, strict bool) (*Record, error) {
	idx := strings.IndexByte(line, RecordMark)
	if idx < 0 {
		return nil, &ParseError{Reason: "no record mark ':'"}
	}
	line = line[idx:]

	if len(line) < recordHeaderLength {
		return nil, &ParseError{
			Reason: fmt.Sprintf("record too short: got %d characters, minimum is %d", len(line), recordHeaderLength),
		}
	}

	header, err := hex.DecodeString(line[1:recordHeaderLength])
	if err != nil {
		return nil, &ParseError{Reason: "invalid hex in record header", Err: err}
	}

	length := int(header[0])
	dataEnd := recordHeaderLength + length*2
	if len(line) < dataEnd {
		return nil, &ParseError{
			Reason: fmt.Sprintf("record data truncated: need %d characters, got %d", dataEnd, len(line)),
		}
	}

	data, err := hex.DecodeString(line[recordHeaderLength:dataEnd])
	if err != nil {
		return nil, &ParseError{Reason: "invalid hex in record data", Err: err}
	}

	rec := &Record{
		Type:   header[3],
		Offset: uint16(header[1])<<8 | uint16(header[2]), // Big-endian
		Data:   data,
	}

	if len(line) >= dataEnd+2 {
		if cs, err := hex.DecodeString(line[dataEnd : dataEnd+2]); err == nil {
			rec.Checksum = cs[0]
			rec.HasChecksum = true
		}
	}

	if !strict {
		return rec, nil
	}

	if !rec.HasChecksum || len(line) != dataEnd+2 {
		return nil, &ParseError{Reason: "missing or malformed checksum byte"}
	}

	expected := protocol.RecordChecksum(append(header, data...))
	if rec.Checksum != expected {
		return nil, &ParseError{
			Reason: fmt.Sprintf("checksum mismatch: got 0x%02X, expected 0x%02X", rec.Checksum, expected),
		}
	}

	return rec, nil
}
