// Package ihex loads Intel-HEX firmware files into MYSBootloader images.
//
// # Intel-HEX Format
//
// An Intel-HEX file is a sequence of text records, one per line:
//
//	:LLOOOOTT[DATA...]CC
//	  LL   = data length in bytes
//	  OOOO = load offset (big-endian)
//	  TT   = record type (00 = data, 01 = end of file, ...)
//	  DATA = LL bytes of data
//	  CC   = two's complement of the sum of all preceding record bytes
//
// Example record:
//
//	:100000000C945C000C946E000C946E000C946E00CA
//	  10   = 16 data bytes
//	  0000 = offset 0x0000
//	  00   = data record
//	  CA   = checksum
//
// # Image Layout
//
// Data records are laid out contiguously starting at the first record's
// offset. Holes between records are filled with 0xFF (erased flash) and the
// image is padded with 0xFF to a multiple of PageSize. The image is then
// served in protocol.BlockSize blocks and protected by protocol.CRC16.
//
// Characters before the first ':' of a line are ignored, so files with stray
// prefix bytes load. Record checksums are not verified unless the Strict
// option is given.
//
// # Usage
//
//	img, err := ihex.Load("firmware.hex")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Blocks: %d\n", img.Blocks)
//	fmt.Printf("CRC:    0x%04X\n", img.CRC)
//
//	block, ok := img.Block(0)
//
// Load from an io.Reader:
//
//	img, err := ihex.LoadReader(strings.NewReader(hexContent), ihex.Strict())
//
// # Error Handling
//
//   - *LoadError: the file cannot be opened or read
//   - *ParseError: a non-empty line is not a valid record (with line number)
package ihex
