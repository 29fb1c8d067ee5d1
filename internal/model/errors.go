package model

import "errors"

var (
	// ErrInvalidConfiguration marks an out-of-range or internally
	// inconsistent parameter. Raised before any generation runs.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidChromosome marks a gene sequence whose length does not
	// match the configured chromosome length. The engine only produces
	// fixed-length chromosomes, so hitting this is a programming error.
	ErrInvalidChromosome = errors.New("invalid chromosome")

	// ErrEmptyClientSet marks a run attempted with zero clients loaded.
	ErrEmptyClientSet = errors.New("empty client set")
)
