package bootloader

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/moffa90/go-mysb/firmware"
	"github.com/moffa90/go-mysb/ihex"
	"github.com/moffa90/go-mysb/protocol"
)

// Transport is the publish/subscribe capability the dispatcher runs on.
// Subscribe patterns use MQTT wildcards; handler receives the concrete topic.
type Transport interface {
	Subscribe(pattern string, handler func(topic string, payload []byte)) error
	Publish(topic, payload string) error
}

// broadcastID is the node ID segment of nodes without an ID.
var broadcastID = strconv.Itoa(protocol.NodeBroadcast)

// Dispatcher answers MYSBootloader OTA requests. It owns the bootloader command
// queue, the optional node ID allocator and the image store.
//
// Dispatcher is safe for concurrent use.
type Dispatcher struct {
	catalog  *firmware.Catalog
	resolver *firmware.Resolver
	store    *firmware.Store
	queue    *CommandQueue
	ids      *IDAllocator
	config   Config

	mu        sync.RWMutex
	transport Transport
}

// New creates a Dispatcher serving firmware from catalog.
//
// Example:
//
//	d := bootloader.New(catalog,
//	    bootloader.WithTopics("mysensors_rx", "mysensors_tx"),
//	    bootloader.WithAutoID(20),
//	    bootloader.WithLogger(logger),
//	)
//	if err := d.Start(client); err != nil {
//	    log.Fatal(err)
//	}
func New(catalog *firmware.Catalog, opts ...Option) *Dispatcher {
	if catalog == nil {
		panic("catalog cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Dispatcher{
		catalog:  catalog,
		resolver: firmware.NewResolver(catalog),
		store:    cfg.store(),
		queue:    NewCommandQueue(),
		config:   cfg,
	}
	if cfg.AutoID {
		d.ids = NewIDAllocator(cfg.NextID)
	}

	return d
}

// Queue returns the bootloader command queue.
func (d *Dispatcher) Queue() *CommandQueue {
	return d.queue
}

// IDs returns the node ID allocator, or nil if ID assignment is disabled.
func (d *Dispatcher) IDs() *IDAllocator {
	return d.ids
}

// Store returns the image store.
func (d *Dispatcher) Store() *firmware.Store {
	return d.store
}

// Patterns returns the topics the dispatcher subscribes to.
// The ID request topic is only included when ID assignment is enabled.
func (d *Dispatcher) Patterns() []string {
	sub := d.config.SubTopic

	patterns := []string{
		protocol.CommandPattern(),
		protocol.Pattern(sub, protocol.MessageStream, protocol.SubtypeFirmwareConfigRequest),
		protocol.Pattern(sub, protocol.MessageStream, protocol.SubtypeFirmwareRequest),
	}
	if d.ids != nil {
		patterns = append(patterns, protocol.Topic(sub, broadcastID, protocol.MessageInternal, protocol.SubtypeIDRequest))
	}

	return patterns
}

// Start subscribes the dispatcher on t. Replies to subsequent messages are
// published on t; messages that fail are logged and dropped.
func (d *Dispatcher) Start(t Transport) error {
	if t == nil {
		return errors.New("transport cannot be nil")
	}

	d.mu.Lock()
	d.transport = t
	d.mu.Unlock()

	for _, pattern := range d.Patterns() {
		if err := t.Subscribe(pattern, d.onMessage); err != nil {
			return fmt.Errorf("subscribe %s: %w", pattern, err)
		}
		d.logDebug("subscribed", "topic", pattern)
	}

	d.logInfo("dispatcher started",
		"sub_topic", d.config.SubTopic,
		"pub_topic", d.config.PubTopic,
		"auto_id", d.ids != nil,
	)

	return nil
}

func (d *Dispatcher) onMessage(topic string, payload []byte) {
	if _, err := d.Handle(topic, payload); err != nil {
		d.logError("dropping message",
			"topic", topic,
			"payload", string(payload),
			"error", err,
		)
	}
}

// Handle processes one inbound message and returns the reply, or nil if the
// message has no reply. Once started, the reply is also published on the
// transport.
//
// Example:
//
//	msg, err := d.Handle("mysensors_rx/1/255/4/0/0", []byte("010001005000D446"))
//	// msg.Topic == "mysensors_tx/1/255/4/0/1"
func (d *Dispatcher) Handle(topic string, payload []byte) (*protocol.Message, error) {
	msg, err := d.dispatch(topic, strings.TrimSpace(string(payload)))
	if err != nil || msg == nil {
		return nil, err
	}

	if err := d.publish(msg); err != nil {
		return msg, fmt.Errorf("publish %s: %w", msg.Topic, err)
	}

	return msg, nil
}

// dispatch classifies a message by topic.
func (d *Dispatcher) dispatch(topic, payload string) (*protocol.Message, error) {
	if strings.HasPrefix(topic, protocol.CommandRoot+"/") {
		return nil, d.handleCommand(topic, payload)
	}

	addr, err := protocol.ParseAddress(d.config.SubTopic, topic)
	if err != nil {
		return nil, err
	}

	switch {
	case addr.Is(protocol.MessageInternal, protocol.SubtypeIDRequest) && addr.NodeID == broadcastID:
		if d.ids == nil {
			return nil, &protocol.TopicError{Topic: topic, Reason: "node ID assignment is disabled"}
		}
		return d.handleIDRequest(), nil

	case addr.Is(protocol.MessageStream, protocol.SubtypeFirmwareConfigRequest):
		return d.handleConfigRequest(addr.NodeID, payload)

	case addr.Is(protocol.MessageStream, protocol.SubtypeFirmwareRequest):
		return d.handleFirmwareRequest(addr.NodeID, payload)
	}

	return nil, &protocol.TopicError{Topic: topic, Reason: "unhandled message"}
}

// Enqueue queues a bootloader command for nodeID, replacing any pending one.
// It is answered on the node's next firmware config request.
func (d *Dispatcher) Enqueue(nodeID string, cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return &CommandError{
			NodeID: nodeID,
			Code:   cmd.Code,
			Data:   cmd.Data,
			Reason: "value must be a decimal number between 0 and 65535",
			Err:    err,
		}
	}

	d.queue.Put(nodeID, cmd)
	d.logInfo("bootloader command queued",
		"node", nodeID,
		"command", cmd.Code,
		"data", cmd.Data,
	)

	return nil
}

func (d *Dispatcher) handleCommand(topic, payload string) error {
	addr, err := protocol.ParseCommandTopic(topic)
	if err != nil {
		return err
	}

	return d.Enqueue(addr.NodeID, Command{Code: addr.Code, Data: payload})
}

func (d *Dispatcher) handleIDRequest() *protocol.Message {
	id := d.ids.Next()
	d.logInfo("assigning node ID", "id", id)

	return &protocol.Message{
		Topic:   protocol.Topic(d.config.PubTopic, broadcastID, protocol.MessageInternal, protocol.SubtypeIDResponse),
		Payload: strconv.FormatUint(id, 10),
	}
}

func (d *Dispatcher) handleConfigRequest(nodeID, payload string) (*protocol.Message, error) {
	// A pending bootloader command is answered instead of the firmware config
	if cmd, ok := d.queue.Take(nodeID); ok {
		resp := protocol.BuildCommandAck(cmd.Code, cmd.Value())
		d.logInfo("sending bootloader command",
			"node", nodeID,
			"command", cmd.Code,
			"data", cmd.Data,
			"response", resp.Encode(),
		)
		return d.reply(nodeID, protocol.SubtypeFirmwareConfigResponse, resp.Encode()), nil
	}

	req, err := protocol.ParseFirmwareConfig(payload)
	if err != nil {
		return nil, err
	}

	res, img, err := d.image(nodeID, req.Type, req.Version)
	if err != nil {
		return nil, err
	}

	resp := protocol.FirmwareConfig{
		Type:    res.Type,
		Version: res.Version,
		Blocks:  img.Blocks,
		CRC:     img.CRC,
	}

	d.logInfo("firmware config request",
		"node", nodeID,
		"request", req.Encode(),
		"response", resp.Encode(),
		"source", res.Source.String(),
		"type", res.TypeName,
		"version", res.VersionName,
	)

	return d.reply(nodeID, protocol.SubtypeFirmwareConfigResponse, resp.Encode()), nil
}

func (d *Dispatcher) handleFirmwareRequest(nodeID, payload string) (*protocol.Message, error) {
	req, err := protocol.ParseFirmwareRequest(payload)
	if err != nil {
		return nil, err
	}

	res, img, err := d.image(nodeID, req.Type, req.Version)
	if err != nil {
		return nil, err
	}

	data, ok := img.Block(req.Block)
	if !ok {
		return nil, &BlockOutOfRangeError{
			NodeID:  nodeID,
			Type:    res.Type,
			Version: res.Version,
			Block:   req.Block,
			Blocks:  img.Blocks,
		}
	}

	resp := protocol.FirmwareResponse{
		FirmwareRequest: protocol.FirmwareRequest{
			Type:    res.Type,
			Version: res.Version,
			Block:   req.Block,
		},
		Data: data,
	}

	d.reportBlock(nodeID, res, req.Block, img.Blocks)

	return d.reply(nodeID, protocol.SubtypeFirmwareResponse, resp.Encode()), nil
}

// image resolves and loads the firmware for a node.
func (d *Dispatcher) image(nodeID string, reqType, reqVersion uint16) (firmware.Resolution, *ihex.Image, error) {
	res := d.resolver.Resolve(nodeID, reqType, reqVersion)
	if !res.Found() {
		return res, nil, &FirmwareUnavailableError{
			NodeID:  nodeID,
			Type:    reqType,
			Version: reqVersion,
		}
	}

	img, err := d.store.Get(res.Key(), res.Path)
	if err != nil {
		return res, nil, fmt.Errorf("firmware %s for node %s: %w", res.Key(), nodeID, err)
	}

	return res, img, nil
}

// reportBlock logs the first and last block and every UpdateBlocks-th block,
// and reports progress for every block.
func (d *Dispatcher) reportBlock(nodeID string, res firmware.Resolution, block, blocks uint16) {
	kv := []interface{}{
		"node", nodeID,
		"block", block,
		"blocks", blocks,
		"type", res.TypeName,
		"version", res.VersionName,
	}

	switch {
	case block+1 == blocks:
		d.logInfo("sending last block", kv...)
	case block == 0:
		d.logInfo("sending first block", kv...)
	case int(block)%d.config.UpdateBlocks == 0:
		d.logInfo("sending block", kv...)
	default:
		d.logDebug("sending block", kv...)
	}

	if d.config.ProgressCallback != nil {
		d.config.ProgressCallback(Progress{
			NodeID:      nodeID,
			Type:        res.Type,
			Version:     res.Version,
			TypeName:    res.TypeName,
			VersionName: res.VersionName,
			Block:       block,
			Blocks:      blocks,
			Percentage:  float64(block+1) / float64(blocks) * 100,
		})
	}
}

func (d *Dispatcher) reply(nodeID string, subtype int, payload string) *protocol.Message {
	return &protocol.Message{
		Topic:   protocol.Topic(d.config.PubTopic, nodeID, protocol.MessageStream, subtype),
		Payload: payload,
	}
}

// publish sends msg on the transport, if started.
func (d *Dispatcher) publish(msg *protocol.Message) error {
	d.mu.RLock()
	t := d.transport
	d.mu.RUnlock()

	if t == nil {
		return nil
	}

	d.logDebug("publishing", "topic", msg.Topic, "payload", msg.Payload)
	return t.Publish(msg.Topic, msg.Payload)
}

// logDebug logs a debug message if a logger is configured.
func (d *Dispatcher) logDebug(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (d *Dispatcher) logInfo(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (d *Dispatcher) logError(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Error(msg, keysAndValues...)
	}
}
