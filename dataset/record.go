// Package dataset models labelled measurement records and the stores they
// are read from.
package dataset

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/jenshnielsen/nanotune/algorithms/common"
	"github.com/jenshnielsen/nanotune/algorithms/spectral"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrUnknownReadout = errors.New("unknown readout method")
)

// MeasurementRecord is one acquired sweep with its labels and features.
type MeasurementRecord struct {
	Source string `json:"source"`
	ID     int    `json:"id"`

	// Readouts maps a readout method (transport, sensing, rf) to its signal.
	Readouts map[string]common.Grid `json:"readouts"`
	// PowerSpectrum maps a readout method to the magnitude spectrum of its
	// signal. Entries are computed on demand.
	PowerSpectrum map[string]common.Grid `json:"power_spectrum,omitempty"`

	Features FeatureSet `json:"features"`
	Labels   []string   `json:"labels"`
	Quality  int        `json:"quality"`
}

// Good reports the binary quality label.
func (r *MeasurementRecord) Good() bool { return r.Quality != 0 }

// Signal returns the readout's signal grid.
func (r *MeasurementRecord) Signal(method string) (common.Grid, error) {
	g, ok := r.Readouts[method]
	if !ok {
		return common.Grid{}, fmt.Errorf("%w: %q (have %v)", ErrUnknownReadout, method, r.ReadoutMethods())
	}
	return g, nil
}

// Dimension is the number of swept axes of a readout.
func (r *MeasurementRecord) Dimension(method string) (int, error) {
	g, err := r.Signal(method)
	if err != nil {
		return 0, err
	}
	return g.Dims(), nil
}

// ReadoutMethods lists the readout methods, sorted.
func (r *MeasurementRecord) ReadoutMethods() []string {
	methods := make([]string, 0, len(r.Readouts))
	for m := range r.Readouts {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// ComputePowerSpectrum recomputes the spectra of all readouts.
func (r *MeasurementRecord) ComputePowerSpectrum() error {
	ps := spectral.NewPowerSpectrum()
	spectra := make(map[string]common.Grid, len(r.Readouts))
	for method, g := range r.Readouts {
		s, err := ps.Compute(g)
		if err != nil {
			return fmt.Errorf("power spectrum of %q: %w", method, err)
		}
		spectra[method] = s
	}
	r.PowerSpectrum = spectra
	return nil
}

// EnsurePowerSpectrum computes the spectra unless every readout has one.
func (r *MeasurementRecord) EnsurePowerSpectrum() error {
	for method := range r.Readouts {
		if _, ok := r.PowerSpectrum[method]; !ok {
			return r.ComputePowerSpectrum()
		}
	}
	return nil
}

// ReplaceSignal stores a corrected signal for method and recomputes its
// spectrum so both stay consistent.
func (r *MeasurementRecord) ReplaceSignal(method string, g common.Grid) error {
	if _, ok := r.Readouts[method]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownReadout, method)
	}
	if err := g.Validate(); err != nil {
		return err
	}

	s, err := spectral.NewPowerSpectrum().Compute(g)
	if err != nil {
		return fmt.Errorf("power spectrum of %q: %w", method, err)
	}
	r.Readouts[method] = g
	if r.PowerSpectrum == nil {
		r.PowerSpectrum = make(map[string]common.Grid)
	}
	r.PowerSpectrum[method] = s
	return nil
}

// Clone returns a deep copy.
func (r *MeasurementRecord) Clone() *MeasurementRecord {
	c := *r
	c.Readouts = cloneGrids(r.Readouts)
	c.PowerSpectrum = cloneGrids(r.PowerSpectrum)
	c.Features = r.Features.Clone()
	c.Labels = slices.Clone(r.Labels)
	return &c
}

func cloneGrids(in map[string]common.Grid) map[string]common.Grid {
	if in == nil {
		return nil
	}
	out := maps.Clone(in)
	for k, g := range out {
		out[k] = g.Clone()
	}
	return out
}
