package firmware

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	// DefaultNode is the pseudo-node holding the last-resort assignment
	DefaultNode = "default"

	// UnknownName is reported for types and versions without a display name
	UnknownName = "Unknown"

	// FileName is the file looked up under BasePath/{type}/{version}/
	FileName = "firmware.hex"
)

// Key identifies a firmware image.
type Key struct {
	Type    uint16
	Version uint16
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%d", k.Type, k.Version)
}

// Assignment pins a node to a firmware type and version.
type Assignment struct {
	Type    uint16 `mapstructure:"type"`
	Version uint16 `mapstructure:"version"`
}

// Key returns the image key for the assignment.
func (a Assignment) Key() Key {
	return Key{Type: a.Type, Version: a.Version}
}

// Catalog is the static firmware configuration. It is read-only once handed
// to a Resolver.
type Catalog struct {
	// Types maps firmware type IDs to display names
	Types map[uint16]string

	// Versions maps firmware version IDs to display names
	Versions map[uint16]string

	// Firmware maps type and version to an Intel-HEX file path
	Firmware map[uint16]map[uint16]string

	// Nodes maps node IDs, and DefaultNode, to assignments
	Nodes map[string]Assignment

	// BasePath, when set, is searched for {type}/{version}/firmware.hex
	// if Firmware has no entry
	BasePath string
}

// TypeName returns the display name of a firmware type.
func (c *Catalog) TypeName(t uint16) string {
	if name, ok := c.Types[t]; ok && name != "" {
		return name
	}
	return UnknownName
}

// VersionName returns the display name of a firmware version.
func (c *Catalog) VersionName(v uint16) string {
	if name, ok := c.Versions[v]; ok && name != "" {
		return name
	}
	return UnknownName
}

// Assignment returns the assignment of a node, if any.
func (c *Catalog) Assignment(nodeID string) (Assignment, bool) {
	a, ok := c.Nodes[nodeID]
	return a, ok
}

// Path returns the file for key, or "" if the catalog has none.
// An explicit Firmware entry is returned as is; a BasePath candidate only
// counts if the file exists.
func (c *Catalog) Path(key Key) string {
	if versions, ok := c.Firmware[key.Type]; ok {
		if path := versions[key.Version]; path != "" {
			return path
		}
	}

	if c.BasePath == "" {
		return ""
	}

	path := filepath.Join(c.BasePath,
		strconv.Itoa(int(key.Type)), strconv.Itoa(int(key.Version)), FileName)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return ""
	}

	return path
}
