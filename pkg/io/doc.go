// Package io provides JSON import and export for dependency graphs.
//
// # JSON Format
//
//	{
//	  "root": "A",
//	  "nodes": [
//	    {"id": "A", "depth": 0, "entry": true},
//	    {"id": "B", "depth": 1, "entry": true},
//	    {"id": "C", "depth": 1}
//	  ],
//	  "edges": [
//	    {"from": "A", "to": "B"},
//	    {"from": "A", "to": "C"}
//	  ]
//	}
//
// Nodes are listed in first-seen order; the first node is the root. A node
// with "entry": true had an adjacency list in the index. A node without one
// was referenced but never described, or was cut off by the depth limit.
// Edges keep their insertion order, so a re-imported graph yields the same
// DOT output and load order as the original.
//
// # Import and Export
//
// [WriteJSON] and [ReadJSON] work on any writer and reader; [ExportJSON] and
// [ImportJSON] are file-based wrappers:
//
//	if err := io.ExportJSON(g, "busybox.json"); err != nil {
//	    return err
//	}
//	g, err := io.ImportJSON("busybox.json")
//
// Decoding failures are FORMAT_ERROR; a missing file is FILE_NOT_FOUND.
package io
