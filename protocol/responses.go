package protocol

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
)

// EncodeFields encodes uint16 fields as little-endian, upper-case hex with no separators.
//
// Example:
//
//	protocol.EncodeFields(1, 1, 80, 0x46D4) // "010001005000D446"
func EncodeFields(fields ...uint16) string {
	buf := make([]byte, 0, len(fields)*FieldSize)
	for _, f := range fields {
		buf = binary.LittleEndian.AppendUint16(buf, f)
	}
	return strings.ToUpper(hex.EncodeToString(buf))
}

// Encode builds the firmware config payload.
//
// Payload format:
//
//	[TYPE][VERSION][BLOCKS][CRC]
func (c FirmwareConfig) Encode() string {
	return EncodeFields(c.Type, c.Version, c.Blocks, c.CRC)
}

// Encode builds the firmware request header payload.
//
// Payload format:
//
//	[TYPE][VERSION][BLOCK]
func (r FirmwareRequest) Encode() string {
	return EncodeFields(r.Type, r.Version, r.Block)
}

// Encode builds the firmware block payload: the request header immediately
// followed by the block data, all upper-case hex.
func (r FirmwareResponse) Encode() string {
	return r.FirmwareRequest.Encode() + strings.ToUpper(hex.EncodeToString(r.Data))
}

// BuildCommandAck builds the firmware config packet that delivers a queued
// bootloader command to a node. The CRC field carries CommandAck.
func BuildCommandAck(code, value uint16) FirmwareConfig {
	return FirmwareConfig{
		Type:    code,
		Version: value,
		Blocks:  0,
		CRC:     CommandAck,
	}
}
