// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

// NodeId is a content-addressable identifier: the ASCII string
// "ir-" + the first 16 hex characters of SHA-256 over the node's
// canonical content bytes. NodeIds are stable across re-parses of
// equivalent input and form a total (lexicographic) order.
type NodeId string

// nodeIdHexLen is the number of hex characters kept from the full digest.
const nodeIdHexLen = 16

// nodeIdPrefix is prepended to every NodeId.
const nodeIdPrefix = "ir-"

var nodeIdPattern = regexp.MustCompile(`^ir-[a-f0-9]{16}$`)

// MakeNodeId computes the content-addressable id for a byte encoding.
//
// MakeNodeId is a pure function: identical input bytes always produce
// identical output, and distinct input bytes produce distinct output with
// overwhelming probability (SHA-256 collision resistance).
func MakeNodeId(content []byte) NodeId {
	sum := sha256.Sum256(content)
	return NodeId(nodeIdPrefix + hex.EncodeToString(sum[:])[:nodeIdHexLen])
}

// MakeNodeIdFromString is a convenience wrapper for string content, used
// throughout lowering to derive ids from "kind:file:component:name"-style
// keys.
func MakeNodeIdFromString(content string) NodeId {
	return MakeNodeId([]byte(content))
}

// Valid reports whether id has the expected "ir-" + 16 hex char shape.
func (id NodeId) Valid() bool {
	return nodeIdPattern.MatchString(string(id))
}

// String returns the identifier as a plain string.
func (id NodeId) String() string {
	return string(id)
}
