package bootloader

import (
	"strconv"
	"sync"

	"github.com/moffa90/go-mysb/protocol"
)

// Command is a pending bootloader command.
type Command struct {
	// Code is the bootloader command code
	Code uint16

	// Data is the raw command payload
	Data string
}

// Value returns the value carried in the answer to the node: the decimal
// payload for set node id and set parent id, 0 otherwise.
func (c Command) Value() uint16 {
	if !c.takesValue() {
		return 0
	}
	v, _ := strconv.ParseUint(c.Data, 10, 16)
	return uint16(v)
}

// Validate checks that the payload of a command carrying a value is a
// decimal uint16.
func (c Command) Validate() error {
	if !c.takesValue() {
		return nil
	}
	if _, err := strconv.ParseUint(c.Data, 10, 16); err != nil {
		return err
	}
	return nil
}

func (c Command) takesValue() bool {
	return c.Code == protocol.CmdSetNodeID || c.Code == protocol.CmdSetParentID
}

// CommandQueue holds at most one pending command per node.
// CommandQueue is safe for concurrent use.
type CommandQueue struct {
	mu       sync.Mutex
	commands map[string]Command
}

// NewCommandQueue creates an empty queue.
func NewCommandQueue() *CommandQueue {
	return &CommandQueue{commands: make(map[string]Command)}
}

// Put stores cmd for nodeID, replacing any pending command.
func (q *CommandQueue) Put(nodeID string, cmd Command) {
	q.mu.Lock()
	q.commands[nodeID] = cmd
	q.mu.Unlock()
}

// Take removes and returns the pending command for nodeID.
func (q *CommandQueue) Take(nodeID string) (Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	cmd, ok := q.commands[nodeID]
	if ok {
		delete(q.commands, nodeID)
	}
	return cmd, ok
}

// Len returns the number of nodes with a pending command.
func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.commands)
}
