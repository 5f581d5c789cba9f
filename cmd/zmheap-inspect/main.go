// Command zmheap-inspect builds a region, runs a scripted sequence of
// allocate/free/resize operations read from a JSON fixture, and prints
// a JSON report of the resulting heap state. It exists for exercising
// the allocator outside of go test and for reproducing a reported
// corruption from a captured operation script.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"unsafe"

	"github.com/zmlabs/zmheap"
	"github.com/zmlabs/zmheap/internal/cliutil"
)

// op is one scripted operation. Kind is one of "allocate", "free",
// "resize", "calloc". Handle names a slot in the script's pointer table
// so later operations can reference a pointer an earlier one produced.
type op struct {
	Kind   string `json:"kind"`
	Handle string `json:"handle"`
	Arg    string `json:"arg,omitempty"` // handle to free/resize
	Size   uint32 `json:"size,omitempty"`
	Count  uint32 `json:"count,omitempty"`
}

type script struct {
	RegionSize uint32 `json:"region_size"`
	Ops        []op   `json:"ops"`
}

type blockReport struct {
	Offset  uint32 `json:"offset"`
	Used    bool   `json:"used"`
	Payload uint32 `json:"payload"`
}

type report struct {
	Total    uint32        `json:"total"`
	Used     uint32        `json:"used"`
	Peak     uint32        `json:"peak"`
	Blocks   []blockReport `json:"blocks"`
	Failures []string      `json:"failures,omitempty"`
}

func main() {
	var (
		scriptPath  string
		regionSize  uint
		outPath     string
		showVersion bool
		jsonVersion bool
		verbose     bool
		debug       bool
	)

	flag.StringVar(&scriptPath, "script", "", "path to a JSON operation script")
	flag.UintVar(&regionSize, "region-size", 0, "override the script's region_size")
	flag.StringVar(&outPath, "out", "", "write the JSON report here instead of stdout")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.BoolVar(&jsonVersion, "json-version", false, "print version information as JSON")
	flag.BoolVar(&verbose, "verbose", false, "log each scripted operation as it runs")
	flag.BoolVar(&debug, "debug", false, "log internal detail alongside -verbose")
	flag.Parse()

	if showVersion || jsonVersion {
		cliutil.PrintVersion("zmheap-inspect", jsonVersion)
		return
	}

	log := cliutil.NewLogger(verbose, debug)

	if scriptPath == "" {
		fmt.Fprintln(os.Stderr, "zmheap-inspect: -script is required")
		os.Exit(2)
	}

	data, err := os.ReadFile(scriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zmheap-inspect: %v\n", err)
		os.Exit(1)
	}

	var s script
	if err := json.Unmarshal(data, &s); err != nil {
		fmt.Fprintf(os.Stderr, "zmheap-inspect: parse script: %v\n", err)
		os.Exit(1)
	}

	size := s.RegionSize
	if regionSize != 0 {
		size = uint32(regionSize)
	}
	if size == 0 {
		size = 4096
	}
	log.Debug("building a %d-byte region", size)

	h, err := zmheap.New(make([]byte, size))
	if err != nil {
		fmt.Fprintf(os.Stderr, "zmheap-inspect: %v\n", err)
		os.Exit(1)
	}

	rpt := runScript(h, s.Ops, log)

	out, err := json.MarshalIndent(rpt, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "zmheap-inspect: marshal report: %v\n", err)
		os.Exit(1)
	}

	if outPath == "" {
		fmt.Println(string(out))
		return
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "zmheap-inspect: write report: %v\n", err)
		os.Exit(1)
	}
}

func runScript(h *zmheap.Heap, ops []op, log *cliutil.Logger) report {
	if log == nil {
		log = cliutil.NewLogger(false, false)
	}

	handles := map[string]unsafe.Pointer{}
	var failures []string

	for i, o := range ops {
		log.Info("op %d: %s %s", i, o.Kind, o.Handle)

		switch o.Kind {
		case "allocate":
			p := h.Allocate(o.Size)
			if p == nil {
				failures = append(failures, fmt.Sprintf("op %d: allocate(%d) failed", i, o.Size))
				continue
			}
			handles[o.Handle] = p

		case "calloc":
			p := h.Calloc(o.Count, o.Size)
			if p == nil {
				failures = append(failures, fmt.Sprintf("op %d: calloc(%d, %d) failed", i, o.Count, o.Size))
				continue
			}
			handles[o.Handle] = p

		case "resize":
			p, ok := handles[o.Arg]
			if !ok {
				failures = append(failures, fmt.Sprintf("op %d: resize references unknown handle %q", i, o.Arg))
				continue
			}
			got := h.Resize(p, o.Size)
			delete(handles, o.Arg)
			if got != nil {
				handles[o.Handle] = got
			} else if o.Size != 0 {
				failures = append(failures, fmt.Sprintf("op %d: resize(%q, %d) failed", i, o.Arg, o.Size))
			}

		case "free":
			p, ok := handles[o.Arg]
			if !ok {
				failures = append(failures, fmt.Sprintf("op %d: free references unknown handle %q", i, o.Arg))
				continue
			}
			h.Free(p)
			delete(handles, o.Arg)

		default:
			failures = append(failures, fmt.Sprintf("op %d: unknown kind %q", i, o.Kind))
		}
	}

	for _, f := range failures {
		log.Error("%s", f)
	}

	var blocks []blockReport
	for _, b := range h.Blocks() {
		blocks = append(blocks, blockReport{Offset: b.Offset, Used: b.Used, Payload: b.Payload})
	}

	return report{
		Total:    h.Total(),
		Used:     h.Used(),
		Peak:     h.Peak(),
		Blocks:   blocks,
		Failures: failures,
	}
}
