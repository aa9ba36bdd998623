package ihex

import "github.com/moffa90/go-mysb/protocol"

// Record types.
const (
	RecordData                   = 0x00
	RecordEndOfFile              = 0x01
	RecordExtendedSegmentAddress = 0x02
	RecordStartSegmentAddress    = 0x03
	RecordExtendedLinearAddress  = 0x04
	RecordStartLinearAddress     = 0x05
)

// Image is a firmware image ready to be served to a node.
// An Image is never modified after loading and may be shared between goroutines.
type Image struct {
	// Data is the padded image; its length is a multiple of PageSize
	Data []byte

	// Blocks is the number of protocol.BlockSize blocks served to nodes
	Blocks uint16

	// CRC is the CRC16 of the first Blocks blocks
	CRC uint16
}

// Block returns a copy of block n, or false if n is out of range.
func (img *Image) Block(n uint16) ([]byte, bool) {
	if n >= img.Blocks {
		return nil, false
	}

	from := int(n) * protocol.BlockSize
	block := make([]byte, protocol.BlockSize)
	copy(block, img.Data[from:from+protocol.BlockSize])

	return block, true
}

// Size returns the number of bytes served to nodes.
func (img *Image) Size() int {
	return int(img.Blocks) * protocol.BlockSize
}

// Record is a single parsed Intel-HEX record.
type Record struct {
	// Type is the record type
	Type byte

	// Offset is the 16-bit load offset
	Offset uint16

	// Data is the record payload
	Data []byte

	// Checksum is the trailing checksum byte, valid when HasChecksum is set
	Checksum byte

	// HasChecksum reports whether the line carried a checksum byte
	HasChecksum bool
}
