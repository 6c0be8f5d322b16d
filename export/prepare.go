package export

import (
	"fmt"

	"github.com/jenshnielsen/nanotune/algorithms/common"
	"github.com/jenshnielsen/nanotune/algorithms/filters"
	"github.com/jenshnielsen/nanotune/algorithms/transform"
	"github.com/jenshnielsen/nanotune/config"
	"github.com/jenshnielsen/nanotune/dataset"
	"github.com/jenshnielsen/nanotune/logging"
)

// Prepared is the condensed form of one record: one row of values per
// tensor channel, ordered by channel index.
type Prepared struct {
	Channels [][]float64
	Shape    []int

	// Corrected is set when the range guard rescaled the record's signal.
	Corrected bool
}

// Preparer turns measurement records into condensed tensor rows: the
// resized signal, its power spectrum, its gradient magnitude and the
// category's scalar features.
type Preparer struct {
	cfg    *config.Config
	guard  common.RangeGuard
	edge   *transform.Resizer
	zeroed *transform.Resizer
	logger logging.Logger
}

// NewPreparer creates a preparer; a nil logger uses the global one.
func NewPreparer(cfg *config.Config, logger logging.Logger) *Preparer {
	return &Preparer{
		cfg:    cfg,
		guard:  common.NewRangeGuard(cfg.Core.SignalCeiling, cfg.Core.DotSignalScale),
		edge:   transform.NewResizer(common.Nearest, 0),
		zeroed: transform.NewResizer(common.Constant, 0),
		logger: logging.OrGlobal(logger),
	}
}

// Prepare condenses rec for category using the given readout.
//
// When the stored signal exceeds the signal ceiling it is rescaled, and the
// corrected signal and its spectrum are written back to rec through
// rec.ReplaceSignal. With flip set the signal is reversed along every axis
// after that correction, so the record itself is never flipped.
func (p *Preparer) Prepare(rec *dataset.MeasurementRecord, category string, flip bool, readout string) (*Prepared, error) {
	if !p.cfg.HasCategory(category) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	if err := rec.EnsurePowerSpectrum(); err != nil {
		return nil, err
	}

	signal, err := rec.Signal(readout)
	if err != nil {
		return nil, err
	}

	shape, err := p.cfg.StandardShape(signal.Dims())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoStandardShape, err)
	}
	length := common.ShapeSize(shape)

	features, err := p.features(rec, category, readout, length)
	if err != nil {
		return nil, err
	}

	corrected, fired := p.guard.NormalizeAndFlag(signal.Values)
	if fired {
		signal = common.Grid{Shape: signal.Shape, Values: corrected}
		if err := rec.ReplaceSignal(readout, signal.Clone()); err != nil {
			return nil, err
		}
		p.logger.Debug("rescaled out-of-range signal", logging.Fields{
			"source":  rec.Source,
			"id":      rec.ID,
			"readout": readout,
		})
	}

	if flip {
		signal = signal.Flip()
	}

	resized, err := p.edge.Resize(signal, shape)
	if err != nil {
		return nil, fmt.Errorf("%w: resize signal: %w", ErrShapeMismatch, err)
	}

	gradient, err := filters.GradientMagnitude(signal, common.Reflect)
	if err != nil {
		return nil, err
	}
	gradient, err = p.zeroed.Resize(gradient, shape)
	if err != nil {
		return nil, fmt.Errorf("%w: resize gradient: %w", ErrShapeMismatch, err)
	}

	frequencies, err := p.zeroed.Resize(rec.PowerSpectrum[readout], shape)
	if err != nil {
		return nil, fmt.Errorf("%w: resize spectrum: %w", ErrShapeMismatch, err)
	}

	channels := make([][]float64, p.cfg.ChannelCount())
	channels[p.cfg.ChannelIndex(config.ChannelSignal)] = resized.Values
	channels[p.cfg.ChannelIndex(config.ChannelFrequencies)] = frequencies.Values
	channels[p.cfg.ChannelIndex(config.ChannelGradient)] = gradient.Values
	channels[p.cfg.ChannelIndex(config.ChannelFeatures)] = features
	for i, ch := range channels {
		if len(ch) != length {
			return nil, fmt.Errorf("%w: channel %d has %d values, want %d", ErrShapeMismatch, i, len(ch), length)
		}
	}

	return &Prepared{Channels: channels, Shape: shape, Corrected: fired}, nil
}

// features selects the category's features and pads them with the fill
// value up to length. A record without any features yields pure fill.
func (p *Preparer) features(rec *dataset.MeasurementRecord, category, readout string, length int) ([]float64, error) {
	out := make([]float64, 0, length)

	if !rec.Features.IsEmpty() {
		vals, err := rec.Features.Select(readout, p.cfg.FeatureNames(category))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMissingFeature, err)
		}
		if len(vals) > length {
			return nil, fmt.Errorf("%w: %d features, %d columns", ErrFeatureOverflow, len(vals), length)
		}
		out = append(out, vals...)
	}

	for len(out) < length {
		out = append(out, p.cfg.Core.FillValue)
	}
	return out, nil
}
