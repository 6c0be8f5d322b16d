package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
)

var ErrFeatureNotFound = errors.New("feature not found")

// FeatureSet holds the scalar features extracted from a measurement. It is
// either flat (name -> value) or keyed by readout method first.
type FeatureSet struct {
	flat      map[string]float64
	perMethod map[string]map[string]float64
}

// FlatFeatures creates a feature set shared by all readout methods.
func FlatFeatures(m map[string]float64) FeatureSet {
	return FeatureSet{flat: maps.Clone(m)}
}

// PerMethodFeatures creates a feature set keyed by readout method.
func PerMethodFeatures(m map[string]map[string]float64) FeatureSet {
	out := make(map[string]map[string]float64, len(m))
	for method, feats := range m {
		out[method] = maps.Clone(feats)
	}
	return FeatureSet{perMethod: out}
}

// IsPerMethod reports whether the set is keyed by readout method.
func (f FeatureSet) IsPerMethod() bool { return f.perMethod != nil }

// IsEmpty reports whether the set holds no features at all.
func (f FeatureSet) IsEmpty() bool {
	return len(f.flat) == 0 && len(f.perMethod) == 0
}

// Lookup returns the named feature for readout method. Flat sets ignore
// the method.
func (f FeatureSet) Lookup(method, name string) (float64, error) {
	if f.perMethod != nil {
		feats, ok := f.perMethod[method]
		if !ok {
			return 0, fmt.Errorf("%w: no features for readout %q", ErrFeatureNotFound, method)
		}
		v, ok := feats[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q for readout %q", ErrFeatureNotFound, name, method)
		}
		return v, nil
	}

	v, ok := f.flat[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrFeatureNotFound, name)
	}
	return v, nil
}

// Select looks up names in order.
func (f FeatureSet) Select(method string, names []string) ([]float64, error) {
	out := make([]float64, 0, len(names))
	for _, name := range names {
		v, err := f.Lookup(method, name)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (f FeatureSet) Clone() FeatureSet {
	if f.perMethod != nil {
		return PerMethodFeatures(f.perMethod)
	}
	if f.flat != nil {
		return FlatFeatures(f.flat)
	}
	return FeatureSet{}
}

func (f FeatureSet) MarshalJSON() ([]byte, error) {
	if f.perMethod != nil {
		return json.Marshal(f.perMethod)
	}
	if f.flat == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(f.flat)
}

// UnmarshalJSON decodes a flat object of numbers, or an object whose values
// are all objects, which becomes a per-method set.
func (f *FeatureSet) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*f = FeatureSet{}
		return nil
	}

	nested := len(raw) > 0
	for _, v := range raw {
		if !bytes.HasPrefix(bytes.TrimSpace(v), []byte("{")) {
			nested = false
			break
		}
	}

	if nested {
		var m map[string]map[string]float64
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("decode per-method features: %w", err)
		}
		*f = FeatureSet{perMethod: m}
		return nil
	}

	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode features: %w", err)
	}
	*f = FeatureSet{flat: m}
	return nil
}
