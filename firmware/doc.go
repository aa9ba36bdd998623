// Package firmware decides which firmware image a node is served and keeps
// loaded images in memory.
//
// A Catalog is the static configuration: display names for firmware types and
// versions, the (type, version) to file mapping, and per-node assignments,
// including the "default" pseudo-node.
//
// Resolver walks three tiers in order and stops at the first one that yields
// a file:
//
//  1. the node's own assignment
//  2. the (type, version) the node asked for
//  3. the "default" assignment
//
// Store memoizes loaded images per (type, version). Concurrent requests for the
// same image share a single load.
//
// Example:
//
//	res := firmware.NewResolver(catalog).Resolve("12", 1, 1)
//	if !res.Found() {
//	    return
//	}
//	img, err := store.Get(res.Key(), res.Path)
package firmware
