package bootloader

// Progress describes a firmware block served to a node.
// Passed to ProgressCallback for every answered data request.
type Progress struct {
	// NodeID is the node receiving the firmware
	NodeID string

	// Type and Version are the firmware being served
	Type    uint16
	Version uint16

	// TypeName and VersionName are the catalog display names
	TypeName    string
	VersionName string

	// Block is the block just served (0-based)
	Block uint16

	// Blocks is the total number of blocks in the image
	Blocks uint16

	// Percentage is the position of Block in the image (0.0 to 100.0)
	Percentage float64
}

// ProgressCallback is called for every firmware block served.
// Implementations should return quickly to avoid delaying the next message.
//
// Example:
//
//	d := bootloader.New(catalog,
//	    bootloader.WithProgressCallback(func(p bootloader.Progress) {
//	        fmt.Printf("node %s: %.1f%% (%d/%d)\n",
//	            p.NodeID, p.Percentage, p.Block+1, p.Blocks)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the dispatcher.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	d := bootloader.New(catalog, bootloader.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
