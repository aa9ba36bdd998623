// Package bootloader serves firmware to MySensors nodes running MYSBootloader.
//
// # Overview
//
// A Dispatcher listens on a publish/subscribe Transport and answers:
//   - node ID requests, when ID assignment is enabled
//   - firmware config requests, with the resolved firmware's type, version,
//     block count and CRC, or with a pending bootloader command
//   - firmware block requests, with 16 bytes of image data
//
// and queues administrative bootloader commands published on
// mysbootloader_command/{node}/{command}.
//
// # Basic Usage
//
//	catalog := &firmware.Catalog{
//	    Firmware: map[uint16]map[uint16]string{
//	        1: {1: "firmware/sensor.hex"},
//	    },
//	}
//
//	d := bootloader.New(catalog)
//	if err := d.Start(client); err != nil {
//	    log.Fatal(err)
//	}
//
// Handle can also be called directly; it returns the reply:
//
//	msg, err := d.Handle("mysensors_rx/1/255/4/0/0", []byte("010001005000D446"))
//
// # Configuration Options
//
//	d := bootloader.New(catalog,
//	    bootloader.WithTopics("mysensors_rx", "mysensors_tx"),
//	    bootloader.WithAutoID(20),
//	    bootloader.WithUpdateBlocks(50),
//	    bootloader.WithStrictHex(true),
//	    bootloader.WithLogger(myLogger),
//	    bootloader.WithProgressCallback(progressFunc),
//	)
//
// # Bootloader Commands
//
// A queued command is delivered in place of the next firmware config answer
// to that node, as (command, value, 0, 0xDA7A). The value is the decimal
// payload for "set node id" (2) and "set parent id" (3), and 0 otherwise.
// At most one command is pending per node; a newer one replaces it.
//
// # Error Handling
//
// A message that cannot be answered is dropped; Handle reports why:
//   - FirmwareUnavailableError: no catalog tier resolved a firmware file
//   - BlockOutOfRangeError: the requested block is past the end of the image
//   - CommandError: a bootloader command value is not a decimal uint16
//   - protocol.DecodeError / protocol.TopicError: malformed payload or topic
//   - ihex.LoadError / ihex.ParseError: the firmware file cannot be loaded
//
// # Concurrency
//
// Handle may be called from many goroutines. The command queue and ID
// allocator are synchronized, and each firmware image is loaded at most once.
package bootloader
