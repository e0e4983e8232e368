// Package document provides the serialized form of a rendered treemap.
//
// This package defines the wire format used for `squaremap layout` output,
// API responses, the layout cache and persisted records. It sits at the
// boundary between the in-memory scene and external formats:
//
//   - [Layout]: serialized treemap (this package)
//   - pkg/core/render.Scene: internal scene (layout, colors, content plans)
//
// Use [FromScene] and [Layout.Scene] to convert between them. A scene
// rebuilt from a document draws exactly like the original; content is not
// re-planned.
//
// # Format
//
//	{
//	  "viz_type": "treemap",
//	  "width": 800, "height": 600, "padding": 2,
//	  "total": 100,
//	  "cells": [{"index": 0, "name": "ACME", "value": 60, "rect": {...}, ...}],
//	  "rows": [{"index": 0, "vertical": true, "members": [0], ...}]
//	}
//
// Common operations:
//
//	doc, _ := document.ReadLayoutFile("layout.json")
//	scene := doc.Scene()
//	data, _ := document.MarshalLayout(document.FromScene(scene))
package document
