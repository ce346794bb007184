// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package signals evaluates the planner's optional evidence-adjustment
// rules: boolean expr-lang expressions over a per-segment environment that
// boost or penalize a strategy's posterior evidence before the decision
// gate runs. Compiled programs are cached so re-evaluating the same rule
// across many IR segments compiles the expression once.
package signals

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Env is the per-segment evaluation environment a signal rule sees.
type Env struct {
	Category        string
	HandlingClass   string
	Risk            string
	Confidence      float64
	IsInteractive   bool
	HasCleanup      bool
	IsDeterministic bool
	WriterCount     int
}

// Adjustment is one signal rule's effect on a strategy's evidence: Boost
// adds to successes, Penalty adds to failures, applied only when the rule's
// condition evaluates true for the segment.
type Adjustment struct {
	Name      string
	Condition string
	Boost     float64
	Penalty   float64
}

// cacheCapacity bounds the compiled-program LRU, mirroring the bound used
// for the condition cache this package is grounded on.
const cacheCapacity = 256

// programCache is a thread-safe LRU of compiled expr-lang programs, keyed
// by condition source text, so repeated evaluation across many segments
// compiles each distinct condition only once.
type programCache struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List
	capacity int
}

type cacheEntry struct {
	key     string
	program *vm.Program
}

func newProgramCache(capacity int) *programCache {
	return &programCache{
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		capacity: capacity,
	}
}

func (c *programCache) compileAndCache(condition string) (*vm.Program, error) {
	c.mu.Lock()
	if el, ok := c.entries[condition]; ok {
		c.order.MoveToFront(el)
		entry := el.Value.(*cacheEntry)
		c.mu.Unlock()
		return entry.program, nil
	}
	c.mu.Unlock()

	program, err := expr.Compile(condition, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("signals: compile %q: %w", condition, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[condition]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*cacheEntry).program, nil
	}
	el := c.order.PushFront(&cacheEntry{key: condition, program: program})
	c.entries[condition] = el
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}
	return program, nil
}

// Evaluator evaluates a set of Adjustment rules against a segment Env,
// caching compiled conditions across calls.
type Evaluator struct {
	cache *programCache
}

// NewEvaluator returns an Evaluator with a fresh compiled-program cache.
func NewEvaluator() *Evaluator {
	return &Evaluator{cache: newProgramCache(cacheCapacity)}
}

// Evaluate runs condition against env and reports whether it's true. A
// condition that fails to compile or fails to evaluate is treated as false
// rather than aborting the planner run.
func (e *Evaluator) Evaluate(condition string, env Env) (bool, error) {
	if condition == "" {
		return true, nil
	}
	program, err := e.cache.compileAndCache(condition)
	if err != nil {
		return false, err
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("signals: run %q: %w", condition, err)
	}
	result, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("signals: condition %q did not evaluate to a bool", condition)
	}
	return result, nil
}

// ApplyAll evaluates every adjustment against env and sums the boosts and
// penalties of the ones whose condition is true. Evaluation errors are
// swallowed into a zero contribution for that rule — a malformed signal
// rule must never abort planning.
func (e *Evaluator) ApplyAll(adjustments []Adjustment, env Env) (successBoost, failurePenalty float64) {
	for _, adj := range adjustments {
		ok, err := e.Evaluate(adj.Condition, env)
		if err != nil || !ok {
			continue
		}
		successBoost += adj.Boost
		failurePenalty += adj.Penalty
	}
	return successBoost, failurePenalty
}
