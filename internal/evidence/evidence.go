// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package evidence persists the Bayesian contract's per-mapping success and
// failure counts across runs in a BadgerDB store, so the posterior an
// operator sees on day 30 reflects every migration decision made since day
// 1, not just the current process's in-memory tally.
//
// Key format: "mapping:{signature}". Value: JSON-encoded Record.
package evidence

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/nightisyang/frankentui-migrate/internal/contract"
	"github.com/nightisyang/frankentui-migrate/pkg/logging"
)

// ErrStoreClosed is returned by any operation on a closed Store.
var ErrStoreClosed = errors.New("evidence: store is closed")

// StoreError wraps a failure from the underlying BadgerDB.
type StoreError struct {
	Signature string
	Message   string
	Cause     error
}

func (e *StoreError) Error() string {
	if e.Signature != "" {
		return fmt.Sprintf("evidence: %s: %s (signature %s)", e.Message, e.Cause, e.Signature)
	}
	return fmt.Sprintf("evidence: %s: %s", e.Message, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Record is the persisted evidence tally for one mapping signature.
type Record struct {
	Successes float64 `json:"successes"`
	Failures  float64 `json:"failures"`
}

const keyPrefix = "mapping:"

func mappingKey(signature string) []byte {
	return []byte(keyPrefix + signature)
}

// Store is a BadgerDB-backed evidence ledger, safe for concurrent use (all
// mutation goes through BadgerDB's own transaction machinery).
type Store struct {
	db     *badger.DB
	log    *logging.Logger
	closed bool
}

// Open opens (creating if necessary) a BadgerDB store at path.
func Open(path string, log *logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.Default()
	}
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, &StoreError{Message: "open failed", Cause: err}
	}
	log.Info("evidence store opened", "path", path)
	return &Store{db: db, log: log}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Get returns the current Record for signature, or a zero Record if no
// evidence has been recorded yet.
func (s *Store) Get(signature string) (Record, error) {
	if s.closed {
		return Record{}, ErrStoreClosed
	}
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(mappingKey(signature))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return Record{}, &StoreError{Signature: signature, Message: "get failed", Cause: err}
	}
	return rec, nil
}

// RecordSuccess increments the success count for signature by one.
func (s *Store) RecordSuccess(signature string) error {
	return s.adjust(signature, 1, 0)
}

// RecordFailure increments the failure count for signature by one.
func (s *Store) RecordFailure(signature string) error {
	return s.adjust(signature, 0, 1)
}

func (s *Store) adjust(signature string, successDelta, failureDelta float64) error {
	if s.closed {
		return ErrStoreClosed
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		var rec Record
		item, err := txn.Get(mappingKey(signature))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			// zero-value rec
		case err != nil:
			return err
		default:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
		}
		rec.Successes += successDelta
		rec.Failures += failureDelta
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set(mappingKey(signature), data)
	})
	if err != nil {
		return &StoreError{Signature: signature, Message: "adjust failed", Cause: err}
	}
	return nil
}

// Posterior computes the current BayesianPosterior for signature, folding
// the persisted Record into prior at the given credible level.
func (s *Store) Posterior(signature string, prior contract.Prior, credibleLevel float64) (contract.BayesianPosterior, error) {
	rec, err := s.Get(signature)
	if err != nil {
		return contract.BayesianPosterior{}, err
	}
	return contract.ComputePosterior(prior, rec.Successes, rec.Failures, credibleLevel), nil
}

// All returns every recorded signature's Record, keyed by signature, for
// operator review and export. The map is unordered; Signatures gives the
// sorted key list.
func (s *Store) All() (map[string]Record, error) {
	if s.closed {
		return nil, ErrStoreClosed
	}
	out := map[string]Record{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek([]byte(keyPrefix)); it.ValidForPrefix([]byte(keyPrefix)); it.Next() {
			item := it.Item()
			key := string(item.Key())[len(keyPrefix):]
			var rec Record
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			out[key] = rec
		}
		return nil
	})
	if err != nil {
		return nil, &StoreError{Message: "scan failed", Cause: err}
	}
	return out, nil
}

// Signatures returns the sorted keys of All(), for deterministic output in
// review and explain tooling.
func Signatures(records map[string]Record) []string {
	out := make([]string, 0, len(records))
	for k := range records {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
