package protocol

// Checksum algorithm constants.
const (
	// CRC16Polynomial is the reflected CRC-16/ARC polynomial (0x8005 reversed)
	CRC16Polynomial = 0xA001

	// CRC16InitialValue is the CRC-16 initial value used by MYSBootloader
	CRC16InitialValue = 0xFFFF

	// BitsPerByte is the number of bits per byte
	BitsPerByte = 8
)

// CRC16 computes the firmware checksum the bootloader verifies after a transfer.
//
// Parameters:
//   - Polynomial: CRC16Polynomial (right shifting)
//   - Initial value: CRC16InitialValue
//   - No final XOR
func CRC16(data []byte) uint16 {
	crc := uint16(CRC16InitialValue)

	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < BitsPerByte; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ CRC16Polynomial
			} else {
				crc >>= 1
			}
		}
	}

	return crc
}

// RecordChecksum computes the Intel-HEX record checksum: the two's complement
// of the sum of all record bytes.
func RecordChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return ^sum + 1
}
