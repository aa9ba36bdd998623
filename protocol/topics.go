package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Topic wildcards.
const (
	// SingleLevelWildcard matches exactly one topic segment
	SingleLevelWildcard = "+"

	// MultiLevelWildcard matches the remaining segments; only valid as the last segment
	MultiLevelWildcard = "#"

	// addressSegments is the number of segments after the root:
	// node/child/messageType/ack/subtype
	addressSegments = 5
)

// Address is a parsed OTA topic:
//
//	{root}/{nodeId}/{childId}/{messageType}/{ack}/{subtype}
type Address struct {
	Root        string
	NodeID      string
	ChildID     int
	MessageType int
	Ack         int
	Subtype     int
}

// String renders the address as a topic.
func (a Address) String() string {
	return fmt.Sprintf("%s/%s/%d/%d/%d/%d", a.Root, a.NodeID, a.ChildID, a.MessageType, a.Ack, a.Subtype)
}

// Is reports whether the address is on the node channel with the given message type and subtype.
func (a Address) Is(messageType, subtype int) bool {
	return a.ChildID == ChildNode && a.Ack == NoAck &&
		a.MessageType == messageType && a.Subtype == subtype
}

// Topic builds the topic of a node-channel message.
//
// Example:
//
//	protocol.Topic("mysensors_tx", "1", protocol.MessageStream, protocol.SubtypeFirmwareResponse)
//	// "mysensors_tx/1/255/4/0/3"
func Topic(root, nodeID string, messageType, subtype int) string {
	return Address{
		Root:        root,
		NodeID:      nodeID,
		ChildID:     ChildNode,
		MessageType: messageType,
		Ack:         NoAck,
		Subtype:     subtype,
	}.String()
}

// Pattern builds a subscription pattern matching the given message type and
// subtype for every node.
func Pattern(root string, messageType, subtype int) string {
	return Topic(root, SingleLevelWildcard, messageType, subtype)
}

// ParseAddress parses a topic published under root.
// The root may itself contain '/' separators.
func ParseAddress(root, topic string) (Address, error) {
	prefix := root + "/"
	if !strings.HasPrefix(topic, prefix) {
		return Address{}, &TopicError{Topic: topic, Reason: fmt.Sprintf("not under root %q", root)}
	}

	parts := strings.Split(strings.TrimPrefix(topic, prefix), "/")
	if len(parts) != addressSegments {
		return Address{}, &TopicError{
			Topic:  topic,
			Reason: fmt.Sprintf("got %d segments after root, expected %d", len(parts), addressSegments),
		}
	}

	if !isNodeID(parts[0]) {
		return Address{}, &TopicError{Topic: topic, Reason: fmt.Sprintf("invalid node id %q", parts[0])}
	}

	nums := make([]int, addressSegments-1)
	for i, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Address{}, &TopicError{Topic: topic, Reason: fmt.Sprintf("invalid segment %q", p)}
		}
		nums[i] = n
	}

	return Address{
		Root:        root,
		NodeID:      parts[0],
		ChildID:     nums[0],
		MessageType: nums[1],
		Ack:         nums[2],
		Subtype:     nums[3],
	}, nil
}

// CommandAddress is a parsed bootloader command topic:
//
//	mysbootloader_command/{nodeId}/{commandCode}
type CommandAddress struct {
	NodeID string
	Code   uint16
}

// CommandTopic builds a bootloader command topic.
func CommandTopic(nodeID string, code uint16) string {
	return fmt.Sprintf("%s/%s/%d", CommandRoot, nodeID, code)
}

// CommandPattern is the subscription pattern for bootloader commands.
func CommandPattern() string {
	return CommandRoot + "/" + SingleLevelWildcard + "/" + SingleLevelWildcard
}

// ParseCommandTopic parses a bootloader command topic.
// The command code is decimal.
func ParseCommandTopic(topic string) (CommandAddress, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != CommandRoot {
		return CommandAddress{}, &TopicError{Topic: topic, Reason: "not a bootloader command topic"}
	}

	if !isNodeID(parts[1]) {
		return CommandAddress{}, &TopicError{Topic: topic, Reason: fmt.Sprintf("invalid node id %q", parts[1])}
	}

	code, err := strconv.ParseUint(parts[2], 10, 16)
	if err != nil {
		return CommandAddress{}, &TopicError{Topic: topic, Reason: fmt.Sprintf("invalid command code %q", parts[2])}
	}

	return CommandAddress{NodeID: parts[1], Code: uint16(code)}, nil
}

// MatchTopic reports whether topic matches an MQTT subscription pattern.
// '+' matches exactly one segment, '#' matches all remaining segments.
func MatchTopic(pattern, topic string) bool {
	ps := strings.Split(pattern, "/")
	ts := strings.Split(topic, "/")

	for i, p := range ps {
		if p == MultiLevelWildcard {
			return i == len(ps)-1
		}
		if i >= len(ts) {
			return false
		}
		if p != SingleLevelWildcard && p != ts[i] {
			return false
		}
	}

	return len(ps) == len(ts)
}

// isNodeID reports whether s is a decimal node identifier.
func isNodeID(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
