// Package protocol implements the MYSBootloader over-the-air update protocol
// as carried by the MySensors MQTT gateway.
//
// # Protocol Overview
//
// Every OTA message lives on a node channel topic:
//
//	{root}/{nodeId}/255/{messageType}/0/{subtype}
//
// Nodes publish under the gateway's outbound root (the bridge's subscribe
// root); answers go to the gateway's inbound root (the bridge's publish root).
//
//	ID request:            {sub}/255/255/3/0/3   ->  {pub}/255/255/3/0/4
//	Firmware config:       {sub}/{node}/255/4/0/0 ->  {pub}/{node}/255/4/0/1
//	Firmware block:        {sub}/{node}/255/4/0/2 ->  {pub}/{node}/255/4/0/3
//
// Administrative bootloader commands arrive on
//
//	mysbootloader_command/{nodeId}/{commandCode}
//
// # Packet Format
//
// Packets are sequences of uint16 fields, each serialized little-endian as
// four upper-case hex characters with no separators:
//
//	Firmware config:   [TYPE][VERSION][BLOCKS][CRC]
//	Firmware request:  [TYPE][VERSION][BLOCK]
//	Firmware response: [TYPE][VERSION][BLOCK][DATA(16 bytes)]
//
// Example:
//
//	cfg := protocol.FirmwareConfig{Type: 1, Version: 1, Blocks: 80, CRC: 0x46D4}
//	cfg.Encode() // "010001005000D446"
//
//	req, err := protocol.ParseFirmwareRequest("010001000100")
//	// req.Block == 1
//
// # Checksums
//
// CRC16 is the image checksum the bootloader verifies after a transfer
// (initial value 0xFFFF, reflected polynomial 0xA001, no final XOR).
// RecordChecksum is the per-record checksum of Intel-HEX files.
//
// # Error Handling
//
// Malformed payloads produce a *DecodeError, malformed topics a *TopicError.
package protocol
