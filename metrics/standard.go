package metrics

// Predefined simulator metrics. All live in DefaultRegistry. Per-format
// instruction counters ("cpu.format.<name>") and per-reason halt counters
// ("cpu.halts.<reason>") are created by the riscv package on demand.

var (
	// ---- Execution ----

	// InstructionsRetired counts instructions that completed.
	InstructionsRetired = DefaultRegistry.Counter("cpu.instructions")
	// BranchesTaken counts conditional branches that were taken.
	BranchesTaken = DefaultRegistry.Counter("cpu.branches_taken")
	// RunTime records the duration of each Run call in microseconds.
	RunTime = DefaultRegistry.Histogram("cpu.run_us")

	// ---- Memory ----

	// LoadsExecuted counts completed loads.
	LoadsExecuted = DefaultRegistry.Counter("mem.loads")
	// StoresExecuted counts completed stores, console stores included.
	StoresExecuted = DefaultRegistry.Counter("mem.stores")
	// ConsoleBytes counts payload bytes written to the console port,
	// excluding the trailing newline.
	ConsoleBytes = DefaultRegistry.Counter("console.bytes")

	// ---- Halts ----

	// Halts counts every transition to the halted state.
	Halts = DefaultRegistry.Counter("cpu.halts")
	// DecodeErrors counts halts caused by illegal instructions.
	DecodeErrors = DefaultRegistry.Counter("cpu.decode_errors")
	// MemoryFaults counts halts caused by out-of-bounds accesses.
	MemoryFaults = DefaultRegistry.Counter("cpu.memory_faults")

	// ---- Loader ----

	// ImageBytes tracks the size of the last loaded program image.
	ImageBytes = DefaultRegistry.Gauge("loader.image_bytes")
)
