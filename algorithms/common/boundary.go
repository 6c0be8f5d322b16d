package common

// BoundaryMode decides how samples outside [0, n) are read.
type BoundaryMode int

const (
	// Reflect mirrors about the array edge, repeating the edge sample:
	// (d c b a | a b c d | d c b a).
	Reflect BoundaryMode = iota
	// Nearest repeats the edge sample: (a a a a | a b c d | d d d d).
	Nearest
	// Constant reads a fixed value outside the array.
	Constant
)

func (m BoundaryMode) String() string {
	switch m {
	case Reflect:
		return "reflect"
	case Nearest:
		return "nearest"
	case Constant:
		return "constant"
	default:
		return "unknown"
	}
}

// Sample reads line[i] honoring mode; cval is used only by Constant.
func Sample(line []float64, i int, mode BoundaryMode, cval float64) float64 {
	n := len(line)
	if n == 0 {
		return cval
	}
	if i >= 0 && i < n {
		return line[i]
	}

	switch mode {
	case Nearest:
		if i < 0 {
			return line[0]
		}
		return line[n-1]
	case Constant:
		return cval
	default:
		period := 2 * n
		i %= period
		if i < 0 {
			i += period
		}
		if i >= n {
			i = period - 1 - i
		}
		return line[i]
	}
}
