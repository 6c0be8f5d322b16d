package main

import (
	"fmt"
	"strconv"
	"strings"
)

// splitList splits a comma separated list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseSkip reads "source:id,id;source:id" into per-source id lists.
func parseSkip(s string) (map[string][]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	out := make(map[string][]int)
	for _, group := range strings.Split(s, ";") {
		group = strings.TrimSpace(group)
		if group == "" {
			continue
		}
		source, ids, ok := strings.Cut(group, ":")
		source = strings.TrimSpace(source)
		if !ok || source == "" {
			return nil, fmt.Errorf("%w: bad skip group %q, want source:id,id", errUsage, group)
		}
		for _, item := range splitList(ids) {
			id, err := strconv.Atoi(item)
			if err != nil {
				return nil, fmt.Errorf("%w: bad id %q for source %s", errUsage, item, source)
			}
			out[source] = append(out[source], id)
		}
	}
	return out, nil
}

func parseQuality(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	q, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%w: bad quality %q", errUsage, s)
	}
	return &q, nil
}
