package config

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
)

// DotRegime is the aggregate category covering single and double dots.
const DotRegime = "dotregime"

// HasCategory reports whether category has a feature list.
func (c *Config) HasCategory(category string) bool {
	_, ok := c.Core.Features[category]
	return ok
}

// Categories returns the configured feature categories, sorted.
func (c *Config) Categories() []string {
	out := make([]string, 0, len(c.Core.Features))
	for k := range c.Core.Features {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// FeatureNames returns the ordered feature names of category.
func (c *Config) FeatureNames(category string) []string {
	return c.Core.Features[category]
}

// Dimensionality returns 1 for categories measured as traces, 2 otherwise.
func (c *Config) Dimensionality(category string) int {
	if slices.Contains(c.Core.OneDimensional, category) {
		return 1
	}
	return 2
}

// Stages lists the stages whose records make up category.
func (c *Config) Stages(category string) []string {
	if category == DotRegime {
		return []string{"singledot", "doubledot"}
	}
	return []string{category}
}

// StandardShape returns a copy of the target shape for dim-dimensional data.
func (c *Config) StandardShape(dim int) ([]int, error) {
	shape, ok := c.Core.StandardShapes[strconv.Itoa(dim)]
	if !ok {
		return nil, fmt.Errorf("no standard shape for %dD data", dim)
	}
	return slices.Clone(shape), nil
}

// ChannelCount is the number of tensor channels.
func (c *Config) ChannelCount() int {
	return len(c.Core.DataTypes)
}

// ChannelIndex returns the tensor index of the named channel.
func (c *Config) ChannelIndex(name string) int {
	return c.Core.DataTypes[name]
}

// ShapeForSize returns the unique standard shape with n elements.
func (c *Config) ShapeForSize(n int) ([]int, bool) {
	var match []int
	count := 0
	for _, shape := range c.Core.StandardShapes {
		size := 1
		for _, s := range shape {
			size *= s
		}
		if size == n {
			match = shape
			count++
		}
	}
	if count != 1 {
		return nil, false
	}
	return slices.Clone(match), true
}
