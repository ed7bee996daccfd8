package scanner

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// Features reports the hardware capabilities of the current CPU. It never
// gates which code path runs — the kernel has exactly one portable
// implementation (spec §1 Non-goals exclude runtime CPU-dispatch glue) — it
// exists so the Stream Driver can log what hardware it's running on.
type Features struct {
	Arch  string
	AVX2  bool
	SSE42 bool
	NEON  bool
}

func DetectFeatures() Features {
	f := Features{Arch: runtime.GOARCH}
	switch runtime.GOARCH {
	case "amd64", "386":
		f.AVX2 = cpu.X86.HasAVX2
		f.SSE42 = cpu.X86.HasSSE42
	case "arm64":
		f.NEON = cpu.ARM64.HasASIMD
	}
	return f
}
