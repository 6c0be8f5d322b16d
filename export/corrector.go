package export

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/jenshnielsen/nanotune/algorithms/common"
	"github.com/jenshnielsen/nanotune/algorithms/filters"
	"github.com/jenshnielsen/nanotune/algorithms/spectral"
	"github.com/jenshnielsen/nanotune/config"
	"github.com/jenshnielsen/nanotune/logging"
	"github.com/jenshnielsen/nanotune/npy"
)

// CorrectionResult reports what a correction pass changed.
type CorrectionResult struct {
	Path string

	// Corrected holds the record indices whose signal was rescaled.
	Corrected []int
}

// Corrector repairs tensors written before the range guard existed by
// rescaling out-of-range signal rows and recomputing their derived
// channels.
type Corrector struct {
	cfg      *config.Config
	guard    common.RangeGuard
	spectrum *spectral.PowerSpectrum
	logger   logging.Logger
}

// NewCorrector creates a corrector; a nil logger uses the global one.
func NewCorrector(cfg *config.Config, logger logging.Logger) *Corrector {
	return &Corrector{
		cfg:      cfg,
		guard:    common.NewRangeGuard(cfg.Core.SignalCeiling, cfg.Core.DotSignalScale),
		spectrum: spectral.NewPowerSpectrum(),
		logger:   logging.OrGlobal(logger),
	}
}

// Correct rewrites fileName in folder (default db_folder). The file is only
// written when at least one record was rescaled, so running it twice
// changes nothing the second time.
func (c *Corrector) Correct(fileName, folder string) (*CorrectionResult, error) {
	if folder == "" {
		folder = c.cfg.DBFolder
	}
	path := npy.WithExt(filepath.Join(folder, fileName))
	logger := c.logger.WithFields(logging.Fields{"path": path})

	arr, err := npy.Load(path)
	if err != nil {
		return nil, err
	}
	tensor, err := TensorFromArray(arr)
	if err != nil {
		return nil, err
	}

	meta, err := ReadMetadata(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	shape, err := c.recordShape(meta, tensor.Length())
	if err != nil {
		return nil, err
	}

	signalIdx := c.cfg.ChannelIndex(config.ChannelSignal)
	freqIdx := c.cfg.ChannelIndex(config.ChannelFrequencies)
	gradIdx := c.cfg.ChannelIndex(config.ChannelGradient)
	for _, idx := range []int{signalIdx, freqIdx, gradIdx} {
		if idx >= tensor.Channels() {
			return nil, fmt.Errorf("%w: channel %d missing from %d-channel tensor", ErrShapeMismatch, idx, tensor.Channels())
		}
	}

	result := &CorrectionResult{Path: path}
	for r := 0; r < tensor.Records(); r++ {
		row := tensor.Row(signalIdx, r)
		corrected, fired := c.guard.NormalizeAndFlag(row)
		if !fired {
			continue
		}

		signal, err := common.NewGrid(shape, corrected)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrShapeMismatch, r, err)
		}
		frequencies, err := c.spectrum.Compute(signal)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", r, err)
		}
		gradient, err := filters.GradientMagnitude(signal, common.Reflect)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", r, err)
		}

		copy(row, signal.Values)
		copy(tensor.Row(freqIdx, r), frequencies.Values)
		copy(tensor.Row(gradIdx, r), gradient.Values)
		result.Corrected = append(result.Corrected, r)

		if meta != nil && r < len(meta.Records) {
			meta.Records[r].Corrected = true
		}
	}

	if len(result.Corrected) == 0 {
		logger.Info("no out-of-range records")
		return result, nil
	}

	if err := persist(path, tensor, meta); err != nil {
		return nil, err
	}
	logger.Info("corrected tensor", logging.Fields{"records": len(result.Corrected)})
	return result, nil
}

// recordShape prefers the shape recorded at export time and falls back to
// the only configured standard shape with length elements.
func (c *Corrector) recordShape(meta *Metadata, length int) ([]int, error) {
	if meta != nil && len(meta.Shape) > 0 {
		if common.ShapeSize(meta.Shape) != length {
			return nil, fmt.Errorf("%w: metadata shape %v does not hold %d values", ErrShapeMismatch, meta.Shape, length)
		}
		return meta.Shape, nil
	}
	shape, ok := c.cfg.ShapeForSize(length)
	if !ok {
		return nil, fmt.Errorf("%w: %d values per record", ErrUnknownRecordShape, length)
	}
	return shape, nil
}
