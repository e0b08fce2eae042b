package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator validates a Config comprehensively, stopping at the first
// failure (fail-fast, spec.md §4.14).
type Validator struct {
	v   *validator.Validate
	cfg *Config
}

// NewValidator builds a Validator for cfg.
func NewValidator(cfg *Config) *Validator {
	return &Validator{v: validator.New(), cfg: cfg}
}

// ValidateAll runs struct-tag validation first, then the cross-field
// invariants the struct tags can't express, in dependency order: the
// minhash band/row/hash-count relationship must hold before the filter
// pipeline that references it is checked.
func (val *Validator) ValidateAll() error {
	if err := val.v.Struct(val.cfg); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}
	if err := val.validateMinhashShape(); err != nil {
		return fmt.Errorf("minhash validation failed: %w", err)
	}
	if err := val.validateFilterPipeline(); err != nil {
		return fmt.Errorf("filter pipeline validation failed: %w", err)
	}
	if err := val.validateLengthRatios(); err != nil {
		return fmt.Errorf("length ratio validation failed: %w", err)
	}
	return nil
}

// validateMinhashShape enforces bands × rows = num_hashes (spec.md §4.14)
// when all three are explicitly set at this layer.
func (val *Validator) validateMinhashShape() error {
	c := val.cfg
	if c.MinhashBands == nil || c.MinhashRows == nil || c.MinhashNumHashes == nil {
		return nil
	}
	if *c.MinhashBands*(*c.MinhashRows) != *c.MinhashNumHashes {
		return fmt.Errorf("minhash_bands (%d) * minhash_rows (%d) must equal minhash_num_hashes (%d)",
			*c.MinhashBands, *c.MinhashRows, *c.MinhashNumHashes)
	}
	return nil
}

func (val *Validator) validateFilterPipeline() error {
	for _, stage := range val.cfg.FilterPipeline {
		if !stage.IsValid() {
			return fmt.Errorf("unrecognized filter stage %q", stage)
		}
	}
	if len(val.cfg.FilterPipeline) > 0 {
		last := val.cfg.FilterPipeline[len(val.cfg.FilterPipeline)-1]
		for _, stage := range val.cfg.FilterPipeline[:len(val.cfg.FilterPipeline)-1] {
			if stage == FilterStageRapidFuzz {
				return fmt.Errorf("rapidfuzz must be the last stage, got it before %q", last)
			}
		}
	}
	return nil
}

func (val *Validator) validateLengthRatios() error {
	c := val.cfg
	if c.LengthMinRatio == nil || c.LengthMaxRatio == nil {
		return nil
	}
	if *c.LengthMinRatio > *c.LengthMaxRatio {
		return fmt.Errorf("length_min_ratio (%v) must be <= length_max_ratio (%v)", *c.LengthMinRatio, *c.LengthMaxRatio)
	}
	return nil
}
