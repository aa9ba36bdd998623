package protocol

// FirmwareConfig is the firmware configuration packet.
// Nodes send it to announce what they run; the bridge answers with what they should run.
type FirmwareConfig struct {
	// Type is the firmware type ID
	Type uint16

	// Version is the firmware version ID
	Version uint16

	// Blocks is the number of BlockSize blocks in the image
	Blocks uint16

	// CRC is the CRC16 of the image, or CommandAck for bootloader command answers
	CRC uint16
}

// FirmwareRequest is the header of a firmware block request.
type FirmwareRequest struct {
	Type    uint16
	Version uint16
	Block   uint16
}

// FirmwareResponse is a firmware block answer: the request header followed by
// BlockSize bytes of image data.
type FirmwareResponse struct {
	FirmwareRequest

	Data []byte
}

// Message is an outbound MQTT message.
type Message struct {
	Topic   string
	Payload string
}

// String renders the message as "topic payload".
func (m Message) String() string {
	return m.Topic + " " + m.Payload
}
