package bootloader

import (
	"fmt"
)

// FirmwareUnavailableError indicates that no firmware could be resolved for a node.
type FirmwareUnavailableError struct {
	NodeID  string
	Type    uint16
	Version uint16
}

func (e *FirmwareUnavailableError) Error() string {
	return fmt.Sprintf("no firmware for node %s: requested type %d version %d and no fallback matched",
		e.NodeID, e.Type, e.Version)
}

// BlockOutOfRangeError indicates a data request beyond the end of the image.
type BlockOutOfRangeError struct {
	NodeID  string
	Type    uint16
	Version uint16
	Block   uint16
	Blocks  uint16
}

func (e *BlockOutOfRangeError) Error() string {
	return fmt.Sprintf("block %d is out of range for node %s: firmware %d/%d has %d blocks",
		e.Block, e.NodeID, e.Type, e.Version, e.Blocks)
}

// CommandError indicates a bootloader command that cannot be queued.
type CommandError struct {
	NodeID string
	Code   uint16
	Data   string
	Reason string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("bootloader command %d for node %s: %s", e.Code, e.NodeID, e.Reason)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
