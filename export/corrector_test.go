package export_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jenshnielsen/nanotune/algorithms/common"
	"github.com/jenshnielsen/nanotune/algorithms/filters"
	"github.com/jenshnielsen/nanotune/algorithms/spectral"
	"github.com/jenshnielsen/nanotune/export"
	"github.com/jenshnielsen/nanotune/logging"
	"github.com/jenshnielsen/nanotune/npy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// legacyTensor builds a 2D tensor as written before the range guard: the
// second record carries raw, out-of-range currents.
func legacyTensor() *export.Tensor {
	t := export.NewTensor(4, 2, 9)
	for i := range 9 {
		t.Row(0, 0)[i] = float64(i) / 10
		t.Row(0, 1)[i] = float64(i) * 2
		t.Row(3, 0)[i] = -1
		t.Row(3, 1)[i] = -1
	}
	t.SetLabel(0, 1)
	t.SetLabel(1, 3)
	return t
}

func saveLegacy(t *testing.T, folder, name string) string {
	t.Helper()
	path := filepath.Join(folder, name+".npy")
	require.NoError(t, npy.Save(path, legacyTensor().Array()))
	return path
}

func TestCorrect_FixesOutOfRangeRecords(t *testing.T) {
	folder := t.TempDir()
	path := saveLegacy(t, folder, "dots")
	c := export.NewCorrector(testConfig(folder), &logging.NoOpLogger{})

	res, err := c.Correct("dots", "")
	require.NoError(t, err)
	assert.Equal(t, path, res.Path)
	assert.Equal(t, []int{1}, res.Corrected)

	arr, err := npy.Load(path)
	require.NoError(t, err)
	tensor, err := export.TensorFromArray(arr)
	require.NoError(t, err)

	legacy := legacyTensor()
	assert.Equal(t, legacy.Row(0, 0), tensor.Row(0, 0))
	assert.Equal(t, legacy.Labels(), tensor.Labels())
	assert.Equal(t, legacy.Row(3, 1), tensor.Row(3, 1))

	signal := tensor.Row(0, 1)
	assert.InDelta(t, 0, signal[0], 1e-12)
	assert.InDelta(t, 0.3, signal[8], 1e-12)

	grid, err := common.NewGrid([]int{3, 3}, signal)
	require.NoError(t, err)
	spectrum, err := spectral.NewPowerSpectrum().Compute(grid)
	require.NoError(t, err)
	gradient, err := filters.GradientMagnitude(grid, common.Reflect)
	require.NoError(t, err)
	assert.InDeltaSlice(t, spectrum.Values, tensor.Row(1, 1), 1e-12)
	assert.InDeltaSlice(t, gradient.Values, tensor.Row(2, 1), 1e-12)
}

func TestCorrect_Idempotent(t *testing.T) {
	folder := t.TempDir()
	path := saveLegacy(t, folder, "dots")
	c := export.NewCorrector(testConfig(folder), &logging.NoOpLogger{})

	_, err := c.Correct("dots.npy", folder)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	res, err := c.Correct("dots.npy", folder)
	require.NoError(t, err)
	assert.Empty(t, res.Corrected)

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCorrect_UsesExportMetadata(t *testing.T) {
	folder := t.TempDir()
	store := pinchoffStore()
	cfg := testConfig(folder)

	res, err := export.NewExporter(cfg, store, &logging.NoOpLogger{}).Export(t.Context(), export.Options{
		Category: "pinchoff",
		Sources:  []string{"a"},
	})
	require.NoError(t, err)

	// Undo the export-time correction to simulate an old file.
	tensor := res.Tensor
	copy(tensor.Row(0, 1), []float64{0, 2, 4, 6})
	require.NoError(t, npy.Save(res.Path, tensor.Array()))

	// A 4-value shape is ambiguous without the sidecar once 2x2 is configured.
	cfg.Core.StandardShapes["2"] = []int{2, 2}
	fix, err := export.NewCorrector(cfg, &logging.NoOpLogger{}).Correct("pinchoff", folder)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, fix.Corrected)

	meta, err := export.ReadMetadata(res.Path)
	require.NoError(t, err)
	assert.Equal(t, res.Metadata.RunID, meta.RunID)
	assert.True(t, meta.Records[1].Corrected)

	arr, err := npy.Load(res.Path)
	require.NoError(t, err)
	fixed, err := export.TensorFromArray(arr)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0.1, 0.2, 0.3}, fixed.Row(0, 1), 1e-12)
}

func TestCorrect_UnknownShape(t *testing.T) {
	folder := t.TempDir()
	tensor := export.NewTensor(4, 1, 7)
	tensor.Row(0, 0)[0] = 5
	require.NoError(t, npy.Save(filepath.Join(folder, "odd.npy"), tensor.Array()))

	_, err := export.NewCorrector(testConfig(folder), &logging.NoOpLogger{}).Correct("odd", folder)
	require.ErrorIs(t, err, export.ErrUnknownRecordShape)
}

func TestCorrect_MissingFile(t *testing.T) {
	_, err := export.NewCorrector(testConfig(t.TempDir()), &logging.NoOpLogger{}).Correct("nothing", "")
	require.ErrorIs(t, err, os.ErrNotExist)
}
