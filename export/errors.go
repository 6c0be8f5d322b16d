package export

import "errors"

var (
	// ErrUnknownCategory is returned for categories without a feature list
	// or without a label encoding.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrInvalidLabelCombination is returned when a record's label tags do
	// not fit the requested category.
	ErrInvalidLabelCombination = errors.New("invalid label-category combination")

	// ErrSourceResolution wraps failures to list the eligible IDs of a source.
	ErrSourceResolution = errors.New("source resolution failed")

	// ErrRecordProcessing wraps failures to load, prepare or label a record.
	ErrRecordProcessing = errors.New("record processing failed")

	ErrMissingFeature     = errors.New("missing feature")
	ErrFeatureOverflow    = errors.New("more features than tensor columns")
	ErrNoStandardShape    = errors.New("no standard shape")
	ErrShapeMismatch      = errors.New("shape mismatch")
	ErrUnknownRecordShape = errors.New("cannot determine record shape")
)
