package export

import (
	"fmt"
	"sort"
)

// Condensed dot regime labels.
const (
	PoorSingleDot = 0
	GoodSingleDot = 1
	PoorDoubleDot = 2
	GoodDoubleDot = 3
)

const (
	stageSingleDot = "singledot"
	stageDoubleDot = "doubledot"
)

var binaryCategories = map[string]bool{
	"outerbarriers": true,
	"pinchoff":      true,
	"singledot":     true,
	"doubledot":     true,
}

type dotLabel struct {
	double bool
	good   bool
}

var dotRegimeLabels = map[dotLabel]int{
	{double: false, good: false}: PoorSingleDot,
	{double: false, good: true}:  GoodSingleDot,
	{double: true, good: false}:  PoorDoubleDot,
	{double: true, good: true}:   GoodDoubleDot,
}

// EncodeLabel condenses a record's label tags and quality into the integer
// label used for training. For "dotregime" the single/double dot tag and
// the quality select one of four classes; binary categories return the
// quality when the tags are exactly {category}.
func EncodeLabel(labels []string, good bool, category string) (int, error) {
	tags := tagSet(labels)

	switch {
	case category == "dotregime":
		single, double := tags[stageSingleDot], tags[stageDoubleDot]
		if single == double {
			return 0, fmt.Errorf("%w: dotregime needs exactly one of singledot, doubledot; got %v",
				ErrInvalidLabelCombination, sortedTags(tags))
		}
		return dotRegimeLabels[dotLabel{double: double, good: good}], nil

	case binaryCategories[category]:
		if len(tags) != 1 || !tags[category] {
			return 0, fmt.Errorf("%w: category %s, labels %v",
				ErrInvalidLabelCombination, category, sortedTags(tags))
		}
		if good {
			return 1, nil
		}
		return 0, nil

	default:
		return 0, fmt.Errorf("%w: no label encoding for %q", ErrUnknownCategory, category)
	}
}

func tagSet(labels []string) map[string]bool {
	tags := make(map[string]bool, len(labels))
	for _, l := range labels {
		tags[l] = true
	}
	return tags
}

func sortedTags(tags map[string]bool) []string {
	out := make([]string, 0, len(tags))
	for t := range tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
