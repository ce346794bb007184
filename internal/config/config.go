// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the operator-facing policy file: the Beta prior,
// decision-gate thresholds, expected-loss constants, and planner signal
// rules that parameterize the Bayesian contract and the translation
// planner. A missing config file is not an error — Load writes out the
// documented defaults and continues, mirroring how an operator's first run
// bootstraps its own policy file rather than failing closed.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nightisyang/frankentui-migrate/internal/contract"
	"github.com/nightisyang/frankentui-migrate/internal/planner/signals"
)

// ErrInvalidConfig is the sentinel wrapped by every ConfigError.
var ErrInvalidConfig = errors.New("invalid migration config")

// ConfigError carries one policy-file loading or validation failure.
type ConfigError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("config: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return ErrInvalidConfig
}

func newConfigError(path, message string, cause error) *ConfigError {
	return &ConfigError{Path: path, Message: message, Cause: cause}
}

// PriorConfig mirrors contract.Prior with yaml/validate tags for the
// policy file.
type PriorConfig struct {
	Alpha0 float64 `yaml:"alpha0" validate:"gt=0"`
	Beta0  float64 `yaml:"beta0" validate:"gt=0"`
}

// ThresholdConfig mirrors contract.GateThresholds for the policy file.
type ThresholdConfig struct {
	AutoApproveMean          float64 `yaml:"auto_approve_mean" validate:"gte=0,lte=1"`
	AutoApproveCredibleLower float64 `yaml:"auto_approve_credible_lower" validate:"gte=0,lte=1"`
	HumanReviewMean          float64 `yaml:"human_review_mean" validate:"gte=0,lte=1"`
	RejectMean               float64 `yaml:"reject_mean" validate:"gte=0,lte=1"`
	HardRejectMean           float64 `yaml:"hard_reject_mean" validate:"gte=0,lte=1"`
	ConservativeVarianceCap  float64 `yaml:"conservative_variance_cap" validate:"gte=0"`
}

// LossConfig mirrors contract.LossPolicy for the policy file.
type LossConfig struct {
	AcceptLossIfWrong float64 `yaml:"accept_loss_if_wrong" validate:"gte=0"`
	RejectLossIfRight float64 `yaml:"reject_loss_if_right" validate:"gte=0"`
	HoldLoss          float64 `yaml:"hold_loss" validate:"gte=0"`
}

// SignalRuleConfig is one planner signal rule as it appears in the policy
// file, toggled independently of the others.
type SignalRuleConfig struct {
	Name      string  `yaml:"name" validate:"required"`
	Condition string  `yaml:"condition" validate:"required"`
	Boost     float64 `yaml:"boost" validate:"gte=0"`
	Penalty   float64 `yaml:"penalty" validate:"gte=0"`
	Enabled   bool    `yaml:"enabled"`
}

// Config is the full operator policy file.
type Config struct {
	Prior           PriorConfig        `yaml:"prior" validate:"required"`
	CredibleLevel   float64            `yaml:"credible_level" validate:"gt=0,lt=1"`
	Thresholds      ThresholdConfig    `yaml:"thresholds" validate:"required"`
	Loss            LossConfig         `yaml:"loss" validate:"required"`
	SignalRules     []SignalRuleConfig `yaml:"signal_rules" validate:"dive"`
	AtlasPath       string             `yaml:"atlas_path" validate:"required"`
	EvidenceDBPath  string             `yaml:"evidence_db_path" validate:"required"`
}

// DefaultConfig returns the documented default policy, matching the
// contract package's own defaults so an operator who never edits the
// bootstrapped file gets identical behavior to the library defaults.
func DefaultConfig() Config {
	prior := contract.DefaultPrior()
	thresholds := contract.DefaultGateThresholds()
	loss := contract.DefaultLossPolicy()
	return Config{
		Prior:         PriorConfig{Alpha0: prior.Alpha0, Beta0: prior.Beta0},
		CredibleLevel: 0.95,
		Thresholds: ThresholdConfig{
			AutoApproveMean:          thresholds.AutoApproveMean,
			AutoApproveCredibleLower: thresholds.AutoApproveCredibleLower,
			HumanReviewMean:          thresholds.HumanReviewMean,
			RejectMean:               thresholds.RejectMean,
			HardRejectMean:           thresholds.HardRejectMean,
			ConservativeVarianceCap:  thresholds.ConservativeVarianceCap,
		},
		Loss: LossConfig{
			AcceptLossIfWrong: loss.AcceptLossIfWrong,
			RejectLossIfRight: loss.RejectLossIfRight,
			HoldLoss:          loss.HoldLoss,
		},
		SignalRules:    nil,
		AtlasPath:      "atlas.toml",
		EvidenceDBPath: "evidence.badger",
	}
}

// ToPrior converts back to the contract package's runtime type.
func (c Config) ToPrior() contract.Prior {
	return contract.Prior{Alpha0: c.Prior.Alpha0, Beta0: c.Prior.Beta0}
}

// ToThresholds converts back to the contract package's runtime type.
func (c Config) ToThresholds() contract.GateThresholds {
	return contract.GateThresholds{
		AutoApproveMean:          c.Thresholds.AutoApproveMean,
		AutoApproveCredibleLower: c.Thresholds.AutoApproveCredibleLower,
		HumanReviewMean:          c.Thresholds.HumanReviewMean,
		RejectMean:               c.Thresholds.RejectMean,
		HardRejectMean:           c.Thresholds.HardRejectMean,
		ConservativeVarianceCap:  c.Thresholds.ConservativeVarianceCap,
	}
}

// ToLossPolicy converts back to the contract package's runtime type.
func (c Config) ToLossPolicy() contract.LossPolicy {
	return contract.LossPolicy{
		AcceptLossIfWrong: c.Loss.AcceptLossIfWrong,
		RejectLossIfRight: c.Loss.RejectLossIfRight,
		HoldLoss:          c.Loss.HoldLoss,
	}
}

// ActiveSignalRules converts the enabled signal rules to the planner
// signals package's Adjustment type, skipping any the operator toggled off.
func (c Config) ActiveSignalRules() []signals.Adjustment {
	var out []signals.Adjustment
	for _, r := range c.SignalRules {
		if !r.Enabled {
			continue
		}
		out = append(out, signals.Adjustment{
			Name:      r.Name,
			Condition: r.Condition,
			Boost:     r.Boost,
			Penalty:   r.Penalty,
		})
	}
	return out
}

var (
	global     Config
	globalOnce sync.Once
	globalErr  error
)

// validate is a single shared validator instance, mirroring the package
// pattern of validating with one long-lived *validator.Validate.
var validate = validator.New()

// Load reads, bootstraps if necessary, and validates the policy file at
// path. Subsequent calls with the same process reuse the first call's
// result; use LoadFresh to bypass the cache (Load calls it once; tests
// call it directly).
func Load(path string) (Config, error) {
	globalOnce.Do(func() {
		global, globalErr = LoadFresh(path)
	})
	return global, globalErr
}

// LoadFresh reads and validates the policy file at path every call,
// writing out DefaultConfig() first if the file does not yet exist.
func LoadFresh(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := createDefault(path); err != nil {
			return Config{}, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, newConfigError(path, "read failed", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, newConfigError(path, "yaml parse failed", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, newConfigError(path, "validation failed", err)
	}

	return cfg, nil
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return newConfigError(path, "could not create config directory", err)
		}
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return newConfigError(path, "could not marshal default config", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return newConfigError(path, "could not write default config", err)
	}
	return nil
}

// IsInvalidConfig reports whether err is, or wraps, ErrInvalidConfig.
func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
