package protocol

// ProtocolVersion is the MYSBootloader OTA protocol revision implemented by this library.
const ProtocolVersion = "1.3"

// Topic segment values used by the MySensors MQTT gateway.
const (
	// NodeBroadcast is the node ID used by nodes that do not have an ID yet
	NodeBroadcast = 255

	// ChildNode is the child sensor ID addressing the node itself
	ChildNode = 255

	// NoAck is the ack segment value of every OTA message
	NoAck = 0
)

// Message types (fourth topic segment).
const (
	// MessageInternal carries gateway/node housekeeping such as ID requests
	MessageInternal = 3

	// MessageStream carries firmware configuration and firmware data
	MessageStream = 4
)

// Internal subtypes.
const (
	// SubtypeIDRequest is sent by a node asking for a new node ID
	SubtypeIDRequest = 3

	// SubtypeIDResponse carries the newly assigned node ID
	SubtypeIDResponse = 4
)

// Stream subtypes.
const (
	// SubtypeFirmwareConfigRequest asks which firmware the node should run
	SubtypeFirmwareConfigRequest = 0

	// SubtypeFirmwareConfigResponse answers with type, version, blocks and CRC
	SubtypeFirmwareConfigResponse = 1

	// SubtypeFirmwareRequest asks for a single firmware block
	SubtypeFirmwareRequest = 2

	// SubtypeFirmwareResponse carries a single firmware block
	SubtypeFirmwareResponse = 3
)

// Bootloader command codes understood by MYSBootloader.
const (
	// CmdEraseEEPROM clears the node's EEPROM
	CmdEraseEEPROM = 0x01

	// CmdSetNodeID stores a new node ID
	CmdSetNodeID = 0x02

	// CmdSetParentID stores a new parent node ID
	CmdSetParentID = 0x03
)

// CommandAck is sent in the CRC field of a bootloader command answer.
// It is a fixed marker, not a checksum.
const CommandAck = 0xDA7A

// CommandRoot is the first topic segment of administrative bootloader commands:
//
//	mysbootloader_command/{nodeId}/{commandCode}
const CommandRoot = "mysbootloader_command"

// Packet layout constants.
const (
	// BlockSize is the number of firmware bytes transferred per data request
	BlockSize = 16

	// FieldSize is the size of one packet field in bytes (uint16)
	FieldSize = 2

	// FieldHexWidth is the number of hex characters per packet field
	FieldHexWidth = FieldSize * 2

	// ConfigFields is the number of fields of a firmware config packet
	ConfigFields = 4

	// RequestFields is the number of fields of a firmware request header
	RequestFields = 3
)
