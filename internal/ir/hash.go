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
	"encoding/json"
)

// CanonicalJSON serializes ir with Metadata.IntegrityHash cleared, in the
// byte-stable encoding used by both invariant V007 and the integrity hash
// itself. encoding/json already sorts map keys and preserves struct field
// order, so two equal IRs always produce identical bytes.
func CanonicalJSON(m MigrationIr) ([]byte, error) {
	m.Metadata.IntegrityHash = ""
	return json.Marshal(m)
}

// ComputeIntegrityHash computes SHA-256(CanonicalJSON(ir)) as 64 hex
// characters. Tampering with any field of ir changes the result.
func ComputeIntegrityHash(m MigrationIr) (string, error) {
	canon, err := CanonicalJSON(m)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}

// StampIntegrityHash computes and sets Metadata.IntegrityHash on a copy of
// m, returning the stamped IR.
func StampIntegrityHash(m MigrationIr) (MigrationIr, error) {
	h, err := ComputeIntegrityHash(m)
	if err != nil {
		return m, err
	}
	m.Metadata.IntegrityHash = h
	return m, nil
}
