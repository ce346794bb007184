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
	"errors"
	"fmt"
)

// ValidationCode identifies which invariant (V001..V007) a ValidationError
// violates.
type ValidationCode string

const (
	V001SchemaVersion    ValidationCode = "V001"
	V002ViewTreeAcyclic  ValidationCode = "V002"
	V003DanglingID       ValidationCode = "V003"
	V004UnsortedChildren ValidationCode = "V004"
	V005DanglingRef      ValidationCode = "V005"
	V006BadProvenance    ValidationCode = "V006"
	V007IntegrityHash    ValidationCode = "V007"
)

// ErrInvalidIr is the sentinel wrapped by every ValidationError, so callers
// can test errors.Is(err, ErrInvalidIr) without inspecting codes.
var ErrInvalidIr = errors.New("invalid migration ir")

// ValidationError carries one structural violation of an IR invariant.
type ValidationError struct {
	Code    ValidationCode
	Message string
	NodeID  NodeId // empty when the violation isn't node-scoped
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("%s: %s (node %s)", e.Code, e.Message, e.NodeID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap allows errors.Is(err, ErrInvalidIr) to succeed for any
// ValidationError.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidIr
}

// ValidationErrors is a non-empty-means-fatal collection of ValidationError.
// It implements error so validate_ir's result can be returned and checked
// with a single `if err != nil`, while callers that need the full list can
// type-assert to ValidationErrors.
type ValidationErrors []*ValidationError

// Error implements the error interface, joining all messages.
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "no validation errors"
	}
	if len(v) == 1 {
		return v[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors, first: %s", len(v), v[0].Error())
	return msg
}

// HasCode reports whether any error in the collection carries the given
// code.
func (v ValidationErrors) HasCode(code ValidationCode) bool {
	for _, e := range v {
		if e.Code == code {
			return true
		}
	}
	return false
}
