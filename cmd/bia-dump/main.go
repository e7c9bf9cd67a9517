// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// bia-dump displays the impedance samples stored in LCIO files.
//
// Usage: bia-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> bia-dump -v ./bia_run_000042.slcio
//	=== file ./bia_run_000042.slcio ===
//	run=42 evt=0 f=  50000.000 Hz Z=(  998.372 +  -12.003i) |Z|=  998.444 phase=  -0.689
//	[...]
//	events: 100
//	f=  50000.000 Hz n=100 |Z|: mean=  998.512 std=    0.231 phase: mean=  -0.688 std=   0.002
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/go-lpc/bioz/bia"
	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/lcio"
)

const usage = `bia-dump displays the impedance samples stored in LCIO files.

Usage: bia-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> bia-dump -v ./bia_run_000042.slcio

`

func main() {
	xmain(os.Stdout, os.Args[1:])
}

func xmain(w io.Writer, args []string) {
	log.SetPrefix("bia-dump: ")
	log.SetFlags(0)

	var (
		fset = flag.NewFlagSet("bia-dump", flag.ExitOnError)

		verbose = fset.Bool("v", false, "display all samples")
		nbins   = fset.Int("nbins", 100, "number of bins of the summary histograms")
	)

	fset.Usage = func() {
		fmt.Print(usage)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() == 0 {
		fset.Usage()
		log.Fatalf("missing path to input LCIO file")
	}

	for _, fname := range fset.Args() {
		err := process(w, fname, *verbose, *nbins)
		if err != nil {
			log.Fatalf("could not dump file %q: %+v", fname, err)
		}
	}
}

func process(w io.Writer, fname string, verbose bool, nbins int) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	r, err := lcio.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open LCIO file: %w", err)
	}
	defer r.Close()

	fmt.Fprintf(wbuf, "=== file %s ===\n", fname)

	var (
		nevts int
		data  = make(map[float64][]bia.Impedance)
	)
	err = bia.ReadLCIO(r, func(evt bia.Event) error {
		nevts++
		for _, imp := range evt.Imps {
			data[imp.Freq] = append(data[imp.Freq], imp)
			if verbose {
				fmt.Fprintf(wbuf, "run=%d evt=%d f=%11.3f Hz Z=(%9.3f + %9.3fi) |Z|=%9.3f phase=%8.3f\n",
					evt.Run, evt.ID, imp.Freq, imp.Z.Real, imp.Z.Imag, imp.Mag(), imp.Phase(),
				)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not read impedance events: %w", err)
	}

	fmt.Fprintf(wbuf, "events: %d\n", nevts)

	freqs := make([]float64, 0, len(data))
	for f := range data {
		freqs = append(freqs, f)
	}
	sort.Float64s(freqs)

	for _, f := range freqs {
		var (
			imps = data[f]
			mag  = hist(nbins, imps, bia.Impedance.Mag)
			phi  = hist(nbins, imps, bia.Impedance.Phase)
		)
		fmt.Fprintf(wbuf, "f=%11.3f Hz n=%d |Z|: mean=%9.3f std=%9.3f phase: mean=%8.3f std=%8.3f\n",
			f, mag.Entries(),
			mag.XMean(), mag.XStdDev(),
			phi.XMean(), phi.XStdDev(),
		)
	}

	return nil
}

// hist histograms the quantity fct of the provided impedances.
func hist(nbins int, imps []bia.Impedance, fct func(bia.Impedance) float64) *hbook.H1D {
	vs := make([]float64, len(imps))
	for i, imp := range imps {
		vs[i] = fct(imp)
	}

	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	pad := 0.01*(hi-lo) + 1
	h := hbook.NewH1D(nbins, lo-pad, hi+pad)
	for _, v := range vs {
		h.Fill(v, 1)
	}
	return h
}
