package firmware

// Source identifies the tier a firmware resolution came from.
type Source int

// Resolution tiers, in the order they are tried.
const (
	SourceNone Source = iota
	SourceNode
	SourceRequest
	SourceDefault
)

func (s Source) String() string {
	switch s {
	case SourceNode:
		return "node"
	case SourceRequest:
		return "request"
	case SourceDefault:
		return "default"
	default:
		return "none"
	}
}

// Resolution is the outcome of Resolver.Resolve.
type Resolution struct {
	// Source is the tier that produced Path, SourceNone if no tier did
	Source Source

	// Type and Version are the firmware to serve, or the last tier tried
	Type    uint16
	Version uint16

	// Path is the Intel-HEX file to serve, empty if unresolved
	Path string

	// TypeName and VersionName are display names for logging
	TypeName    string
	VersionName string
}

// Found reports whether a firmware file was resolved.
func (r Resolution) Found() bool {
	return r.Path != ""
}

// Key returns the image key of the resolution.
func (r Resolution) Key() Key {
	return Key{Type: r.Type, Version: r.Version}
}

// tier yields the key to try for a node and request, or false to skip.
type tier struct {
	source Source
	key    func(nodeID string, requested Key) (Key, bool)
}

// Resolver picks the firmware a node is served.
// Resolver is safe for concurrent use.
type Resolver struct {
	catalog *Catalog
	tiers   []tier
}

// NewResolver creates a Resolver over catalog.
func NewResolver(catalog *Catalog) *Resolver {
	if catalog == nil {
		panic("catalog cannot be nil")
	}

	r := &Resolver{catalog: catalog}
	r.tiers = []tier{
		{source: SourceNode, key: r.assigned},
		{source: SourceRequest, key: requested},
		{source: SourceDefault, key: r.fallback},
	}

	return r
}

// Resolve returns the firmware for nodeID given the type and version it
// requested. It never fails: an unresolved firmware has an empty Path.
func (r *Resolver) Resolve(nodeID string, reqType, reqVersion uint16) Resolution {
	res := Resolution{
		Source:      SourceNone,
		Type:        reqType,
		Version:     reqVersion,
		TypeName:    r.catalog.TypeName(reqType),
		VersionName: r.catalog.VersionName(reqVersion),
	}
	req := Key{Type: reqType, Version: reqVersion}

	for _, t := range r.tiers {
		key, ok := t.key(nodeID, req)
		if !ok {
			continue
		}

		res.Type, res.Version = key.Type, key.Version
		res.TypeName = r.catalog.TypeName(key.Type)
		res.VersionName = r.catalog.VersionName(key.Version)

		if path := r.catalog.Path(key); path != "" {
			res.Source = t.source
			res.Path = path
			return res
		}
	}

	return res
}

func (r *Resolver) assigned(nodeID string, _ Key) (Key, bool) {
	a, ok := r.catalog.Assignment(nodeID)
	return a.Key(), ok
}

func requested(_ string, req Key) (Key, bool) {
	return req, true
}

func (r *Resolver) fallback(_ string, _ Key) (Key, bool) {
	a, ok := r.catalog.Assignment(DefaultNode)
	return a.Key(), ok
}
