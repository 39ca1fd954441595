package metrics

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
)

// WriteText writes every metric in reg to w in the Prometheus text
// exposition format. Dots and dashes in metric names become underscores and
// a non-empty namespace is prepended. Histograms are written as summaries
// with _count and _sum, plus _min, _max and _mean once something has been
// observed. Output is sorted by name within each metric kind.
func WriteText(w io.Writer, reg *Registry, namespace string) error {
	bw := bufio.NewWriter(w)

	reg.mu.RLock()
	for _, name := range sortedKeys(reg.counters) {
		pn := promName(namespace, name)
		writeHeader(bw, pn, "counter", name)
		fmt.Fprintf(bw, "%s %d\n", pn, reg.counters[name].Value())
	}
	for _, name := range sortedKeys(reg.gauges) {
		pn := promName(namespace, name)
		writeHeader(bw, pn, "gauge", name)
		fmt.Fprintf(bw, "%s %d\n", pn, reg.gauges[name].Value())
	}
	for _, name := range sortedKeys(reg.histograms) {
		pn := promName(namespace, name)
		s := reg.histograms[name].Snapshot()
		writeHeader(bw, pn, "summary", name)
		fmt.Fprintf(bw, "%s_count %d\n", pn, s.Count)
		fmt.Fprintf(bw, "%s_sum %s\n", pn, formatFloat(s.Sum))
		if s.Count > 0 {
			fmt.Fprintf(bw, "%s_min %s\n", pn, formatFloat(s.Min))
			fmt.Fprintf(bw, "%s_max %s\n", pn, formatFloat(s.Max))
			fmt.Fprintf(bw, "%s_mean %s\n", pn, formatFloat(s.Mean))
		}
	}
	reg.mu.RUnlock()

	return bw.Flush()
}

// promName converts a dot-separated metric name to Prometheus form.
func promName(namespace, name string) string {
	sanitized := strings.NewReplacer(".", "_", "-", "_").Replace(name)
	if namespace != "" {
		return namespace + "_" + sanitized
	}
	return sanitized
}

func writeHeader(w io.Writer, name, metricType, help string) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s %s\n", name, metricType)
}

// formatFloat formats a float64 for Prometheus output, handling special
// values.
func formatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case math.IsNaN(v):
		return "NaN"
	}
	return fmt.Sprintf("%g", v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
