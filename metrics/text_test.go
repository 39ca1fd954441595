package metrics

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestWriteText(t *testing.T) {
	r := NewRegistry()
	r.Counter("cpu.instructions").Add(12)
	r.Counter("cpu.format.i-load").Inc()
	r.Gauge("loader.image_bytes").Set(64)
	r.Histogram("cpu.run_us").Observe(1.5)
	r.Histogram("cpu.idle_us")

	var buf bytes.Buffer
	if err := WriteText(&buf, r, "cpusim"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# TYPE cpusim_cpu_instructions counter\ncpusim_cpu_instructions 12\n",
		"cpusim_cpu_format_i_load 1\n",
		"# HELP cpusim_loader_image_bytes loader.image_bytes\n",
		"# TYPE cpusim_loader_image_bytes gauge\ncpusim_loader_image_bytes 64\n",
		"# TYPE cpusim_cpu_run_us summary\n",
		"cpusim_cpu_run_us_count 1\n",
		"cpusim_cpu_run_us_sum 1.5\n",
		"cpusim_cpu_run_us_max 1.5\n",
		"cpusim_cpu_idle_us_count 0\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "cpusim_cpu_idle_us_min") {
		t.Error("empty histogram should not report min")
	}
	// Counters are sorted by name.
	if strings.Index(out, "cpusim_cpu_format_i_load") > strings.Index(out, "cpusim_cpu_instructions") {
		t.Error("counters not sorted")
	}
}

func TestWriteText_NoNamespace(t *testing.T) {
	r := NewRegistry()
	r.Counter("mem.loads").Inc()
	var buf bytes.Buffer
	if err := WriteText(&buf, r, ""); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if !strings.Contains(buf.String(), "\nmem_loads 1\n") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{2.5, "2.5"},
		{math.Inf(1), "+Inf"},
		{math.Inf(-1), "-Inf"},
		{math.NaN(), "NaN"},
	}
	for _, tt := range tests {
		if got := formatFloat(tt.in); got != tt.want {
			t.Errorf("formatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
