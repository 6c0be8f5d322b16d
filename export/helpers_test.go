package export_test

import (
	"github.com/jenshnielsen/nanotune/algorithms/common"
	"github.com/jenshnielsen/nanotune/config"
	"github.com/jenshnielsen/nanotune/dataset"
)

// testConfig shrinks the standard shapes so expected values can be worked
// out by hand.
func testConfig(folder string) *config.Config {
	cfg := config.Default()
	cfg.DBFolder = folder
	cfg.Core.StandardShapes = map[string][]int{
		"1": {4},
		"2": {3, 3},
	}
	cfg.Core.Features["pinchoff"] = []string{"amplitude", "slope"}
	cfg.Core.Features["singledot"] = []string{"triple_points"}
	cfg.Core.Features["doubledot"] = []string{"triple_points"}
	cfg.Core.Features["dotregime"] = []string{"triple_points"}
	return cfg
}

func trace(values ...float64) common.Grid {
	return common.Grid{Shape: []int{len(values)}, Values: values}
}

func image(rows, cols int, fn func(r, c int) float64) common.Grid {
	g := common.Zeros([]int{rows, cols})
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			g.Values[r*cols+c] = fn(r, c)
		}
	}
	return g
}

func pinchoff(source string, id int, quality int, values ...float64) *dataset.MeasurementRecord {
	return &dataset.MeasurementRecord{
		Source:   source,
		ID:       id,
		Readouts: map[string]common.Grid{"transport": trace(values...)},
		Features: dataset.FlatFeatures(map[string]float64{"amplitude": 0.5, "slope": 2}),
		Labels:   []string{"pinchoff"},
		Quality:  quality,
	}
}

func dot(source string, id int, label string, quality int, scale float64) *dataset.MeasurementRecord {
	return &dataset.MeasurementRecord{
		Source: source,
		ID:     id,
		Readouts: map[string]common.Grid{
			"transport": image(6, 6, func(r, c int) float64 { return scale * float64(r+c) / 10 }),
		},
		Features: dataset.FlatFeatures(map[string]float64{"triple_points": 3}),
		Labels:   []string{label},
		Quality:  quality,
	}
}
