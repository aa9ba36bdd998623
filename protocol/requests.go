package protocol

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// DecodeFields decodes the first n little-endian uint16 fields of a hex payload.
// Characters after the n fields are ignored. Hex digits are accepted in either case.
//
// The high byte of the last field may be missing; it then decodes as zero.
// Anything shorter is rejected.
func DecodeFields(packet, payload string, n int) ([]uint16, error) {
	s := strings.TrimSpace(payload)
	want := n * FieldHexWidth
	if len(s) > want {
		s = s[:want]
	}

	if len(s) < want-FieldSize || len(s)%2 != 0 {
		return nil, &DecodeError{
			Packet:  packet,
			Payload: payload,
			Reason:  fmt.Sprintf("need %d hex characters, got %d", want, len(s)),
		}
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, &DecodeError{
			Packet:  packet,
			Payload: payload,
			Reason:  "invalid hex data",
			Err:     err,
		}
	}

	buf := make([]byte, n*FieldSize)
	copy(buf, raw)

	fields := make([]uint16, n)
	for i := range fields {
		fields[i] = binary.LittleEndian.Uint16(buf[i*FieldSize:])
	}

	return fields, nil
}

// ParseFirmwareConfig decodes a firmware config packet.
//
// Payload format (ConfigFields little-endian uint16, hex):
//
//	[TYPE][VERSION][BLOCKS][CRC]
//
// Nodes append bootloader information after the CRC; it is ignored.
func ParseFirmwareConfig(payload string) (FirmwareConfig, error) {
	f, err := DecodeFields("firmware config", payload, ConfigFields)
	if err != nil {
		return FirmwareConfig{}, err
	}

	return FirmwareConfig{
		Type:    f[0],
		Version: f[1],
		Blocks:  f[2],
		CRC:     f[3],
	}, nil
}

// ParseFirmwareRequest decodes a firmware block request header.
//
// Payload format (RequestFields little-endian uint16, hex):
//
//	[TYPE][VERSION][BLOCK]
func ParseFirmwareRequest(payload string) (FirmwareRequest, error) {
	f, err := DecodeFields("firmware request", payload, RequestFields)
	if err != nil {
		return FirmwareRequest{}, err
	}

	return FirmwareRequest{
		Type:    f[0],
		Version: f[1],
		Block:   f[2],
	}, nil
}

// ParseFirmwareResponse decodes a firmware block answer.
// This is the node side of the exchange and is used by simulators and tests.
//
// Payload format:
//
//	[TYPE][VERSION][BLOCK][DATA(BlockSize bytes)]
func ParseFirmwareResponse(payload string) (FirmwareResponse, error) {
	s := strings.TrimSpace(payload)
	want := (RequestFields*FieldSize + BlockSize) * 2
	if len(s) != want {
		return FirmwareResponse{}, &DecodeError{
			Packet:  "firmware response",
			Payload: payload,
			Reason:  fmt.Sprintf("need exactly %d hex characters, got %d", want, len(s)),
		}
	}

	req, err := ParseFirmwareRequest(s)
	if err != nil {
		return FirmwareResponse{}, err
	}

	data, err := hex.DecodeString(s[RequestFields*FieldHexWidth:])
	if err != nil {
		return FirmwareResponse{}, &DecodeError{
			Packet:  "firmware response",
			Payload: payload,
			Reason:  "invalid hex data",
			Err:     err,
		}
	}

	return FirmwareResponse{FirmwareRequest: req, Data: data}, nil
}
