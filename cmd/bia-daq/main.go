// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command bia-daq runs a bio-impedance acquisition in stand-alone mode.
//
// The impedance samples are stored in an LCIO file, one event per
// serviced interrupt. The electrode routing may be changed between
// acquisitions with the -mux flag.
//
// Example:
//
//	$> bia-daq -run 42 -freq 50e3 -odr 20 -n 100 -mux "0,1,2,3;4,5,6,7"
package main // import "github.com/go-lpc/bioz/cmd/bia-daq"

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-lpc/bioz"
	"github.com/go-lpc/bioz/ad5940"
	"github.com/go-lpc/bioz/bia"
	"github.com/go-lpc/bioz/caldb"
	"github.com/go-lpc/bioz/internal/spidev"
	"github.com/go-lpc/bioz/mux"
	"github.com/sbinet/pmon"
	"go-hep.org/x/hep/lcio"
	"golang.org/x/sync/errgroup"
	mail "gopkg.in/gomail.v2"
)

func main() {
	var (
		runnbr = flag.Int("run", -1, "run number (default: next run from -db)")
		odir   = flag.String("o", ".", "output directory")
		spi    = flag.String("spi", "/dev/spidev0.0", "path to the spidev device")
		speed  = flag.Uint("spi-speed", 8000000, "SPI clock frequency (Hz)")
		pin    = flag.Int("irq", 25, "GPIO pin of the interrupt line")
		freq   = flag.Float64("freq", 50e3, "excitation frequency (Hz)")
		odr    = flag.Float64("odr", 20, "output data rate (Hz)")
		ndata  = flag.Int("n", -1, "number of samples per acquisition (-1: unlimited)")
		sweep  = flag.String("sweep", "", "frequency sweep start:stop:points")
		logsw  = flag.Bool("log", false, "logarithmic frequency sweep")
		muxs   = flag.String("mux", "", "list of F+,S+,S-,F- electrode combinations (e.g. \"0,1,2,3;4,5,6,7\")")
		i2c    = flag.Int("i2c", 1, "I2C bus of the crosspoint switch")
		dbname = flag.String("db", "", "calibration database name")
		calrun = flag.Int("cal-run", -1, "reuse the RTIA calibration of that run (needs -db)")
		doMon  = flag.Bool("pmon", false, "enable pmon monitoring")
		monFrq = flag.Duration("pmon-freq", 1*time.Second, "pmon frequency")
	)

	flag.Parse()

	log.SetPrefix("bia-daq: ")
	log.SetFlags(0)

	if vers, _ := bioz.Version(); vers != "" {
		log.Printf("version: %s", vers)
	}

	opts := []bia.Option{
		bia.WithSinFreq(*freq),
		bia.WithODR(*odr),
		bia.WithNumOfData(*ndata),
	}
	if *sweep != "" {
		opt, err := parseSweep(*sweep, *logsw)
		if err != nil {
			log.Fatalf("could not parse sweep: %+v", err)
		}
		opts = append(opts, opt)
	}

	combos, err := parseCombinations(*muxs)
	if err != nil {
		log.Fatalf("could not parse electrode combinations: %+v", err)
	}
	if len(combos) > 1 && *ndata <= 0 {
		log.Fatalf("electrode combinations need a finite number of samples (-n)")
	}

	if *doMon {
		err = monitor(*odir, *monFrq)
		if err != nil {
			log.Fatalf("could not start monitoring: %+v", err)
		}
	}

	dev, err := spidev.Open(*spi, uint32(*speed))
	if err != nil {
		log.Fatalf("could not open SPI device: %+v", err)
	}
	defer dev.Close()

	irq, err := spidev.OpenIRQ(*pin)
	if err != nil {
		log.Fatalf("could not open interrupt line: %+v", err)
	}
	defer irq.Close()

	d := daq{
		run:    int32(*runnbr),
		odir:   *odir,
		combos: combos,
		calrun: int32(*calrun),
	}

	if len(combos) > 0 {
		sw, err := mux.Open(*i2c, mux.Addr)
		if err != nil {
			log.Fatalf("could not open crosspoint switch: %+v", err)
		}
		defer sw.Close()
		d.sw = sw
	}

	if *dbname != "" {
		db, err := caldb.Open(*dbname)
		if err != nil {
			log.Fatalf("could not open calibration db: %+v", err)
		}
		defer db.Close()
		d.db = db
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	defer signal.Stop(stop)

	app := bia.New(ad5940.New(dev), opts...)
	err = d.Run(ctx, app, irq, stop)
	if err != nil {
		alertMail(d.run, err)
		log.Fatalf("could not run acquisition: %+v", err)
	}
}

// router changes the electrode routing.
type router interface {
	Route(c mux.Combination) error
}

// store persists runs and calibrations.
type store interface {
	LastRun(ctx context.Context) (int32, error)
	SaveRun(ctx context.Context, run caldb.Run) error
	SaveRtiaCal(ctx context.Context, run int32, rcal float64, cal []caldb.CalPoint) error
	RtiaCal(ctx context.Context, run int32) ([]caldb.CalPoint, error)
}

type daq struct {
	run    int32
	odir   string
	combos []mux.Combination
	calrun int32

	sw router
	db store
}

// Run runs one acquisition per electrode combination, or a single one
// when no combination is provided, until completion or until a value
// is received on stop.
func (d *daq) Run(ctx context.Context, app *bia.App, irq bia.IRQ, stop chan os.Signal) error {
	err := d.setup(ctx, app)
	if err != nil {
		return err
	}

	fname := filepath.Join(d.odir, fmt.Sprintf("bia_run_%06d.slcio", d.run))
	w, err := lcio.Create(fname)
	if err != nil {
		return fmt.Errorf("could not create LCIO file: %w", err)
	}
	defer w.Close()

	out, err := bia.NewLCIOWriter(w, d.run, app.Config())
	if err != nil {
		return fmt.Errorf("could not create LCIO writer: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	grp, ctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	grp.Go(func() error {
		select {
		case <-done:
		case <-ctx.Done():
		case <-stop:
			log.Printf("received interrupt, stopping acquisition...")
			err := app.StopNow()
			if err != nil {
				log.Printf("could not stop acquisition: %+v", err)
			}
			cancel()
		}
		return nil
	})

	grp.Go(func() error {
		defer close(done)
		return d.acquire(ctx, app, irq, out)
	})

	err = grp.Wait()
	if err != nil {
		return err
	}

	log.Printf("run %d: %d events written to %q", d.run, out.Events(), fname)

	err = app.Shutdown()
	if err != nil {
		return fmt.Errorf("could not shutdown front-end: %w", err)
	}

	err = w.Close()
	if err != nil {
		return fmt.Errorf("could not close LCIO file: %w", err)
	}
	return nil
}

// setup allocates the run number and installs a stored calibration.
func (d *daq) setup(ctx context.Context, app *bia.App) error {
	if d.db == nil {
		if d.run < 0 {
			return fmt.Errorf("missing run number")
		}
		return nil
	}

	if d.run < 0 {
		last, err := d.db.LastRun(ctx)
		if err != nil {
			return fmt.Errorf("could not retrieve last run: %w", err)
		}
		d.run = last + 1
	}

	if d.calrun >= 0 {
		pts, err := d.db.RtiaCal(ctx, d.calrun)
		if err != nil {
			return fmt.Errorf("could not load calibration of run %d: %w", d.calrun, err)
		}
		cal := make([]ad5940.Complex, len(pts))
		for i, pt := range pts {
			cal[i] = pt.Cal
		}
		err = app.SetCalibration(cal)
		if err != nil {
			return fmt.Errorf("could not install calibration of run %d: %w", d.calrun, err)
		}
		log.Printf("using calibration of run %d", d.calrun)
	}

	cfg := app.Config()
	err := d.db.SaveRun(ctx, caldb.Run{
		ID:        d.run,
		SinFreq:   cfg.SinFreq,
		ODR:       cfg.ODR,
		NumOfData: cfg.NumOfData,
		Sweep:     cfg.Sweep,
		Rcal:      cfg.RcalVal,
	})
	if err != nil {
		return fmt.Errorf("could not record run %d: %w", d.run, err)
	}
	return nil
}

func (d *daq) acquire(ctx context.Context, app *bia.App, irq bia.IRQ, out *bia.LCIOWriter) error {
	buf := make([]uint32, app.Config().MaxSeqLen)
	combos := d.combos
	if len(combos) == 0 {
		combos = []mux.Combination{{}}
	}

	for i, c := range combos {
		if len(d.combos) > 0 {
			err := d.sw.Route(c)
			if err != nil {
				return fmt.Errorf("could not route electrodes %v: %w", c, err)
			}
		}

		err := app.Init(ctx, buf)
		if err != nil {
			return fmt.Errorf("could not initialize acquisition: %w", err)
		}

		if i == 0 {
			err = d.saveCal(ctx, app)
			if err != nil {
				return err
			}
		}

		err = app.Start()
		if err != nil {
			return fmt.Errorf("could not start acquisition: %w", err)
		}

		err = app.Acquire(ctx, irq, out.Write)
		if err != nil {
			return fmt.Errorf("could not acquire data: %w", err)
		}
		if err := app.Err(); err != nil {
			return fmt.Errorf("acquisition halted: %w", err)
		}

		log.Printf("acquisition %d/%d: %d samples", i+1, len(combos), app.Status().Samples)
		if ctx.Err() != nil {
			break
		}
	}
	return nil
}

func (d *daq) saveCal(ctx context.Context, app *bia.App) error {
	if d.db == nil || d.calrun >= 0 {
		return nil
	}
	var (
		cal   = app.Calibration()
		freqs = app.CalFreqs()
		pts   = make([]caldb.CalPoint, len(cal))
	)
	for i := range cal {
		pts[i] = caldb.CalPoint{Freq: freqs[i], Cal: cal[i]}
	}
	err := d.db.SaveRtiaCal(ctx, d.run, app.Config().RcalVal, pts)
	if err != nil {
		return fmt.Errorf("could not store calibration: %w", err)
	}
	return nil
}

func parseSweep(s string, logSpacing bool) (bia.Option, error) {
	toks := strings.Split(s, ":")
	if len(toks) != 3 {
		return nil, fmt.Errorf("invalid sweep %q (want start:stop:points)", s)
	}
	start, err := strconv.ParseFloat(toks[0], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep start %q: %w", toks[0], err)
	}
	stop, err := strconv.ParseFloat(toks[1], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep stop %q: %w", toks[1], err)
	}
	pts, err := strconv.Atoi(toks[2])
	if err != nil {
		return nil, fmt.Errorf("invalid sweep points %q: %w", toks[2], err)
	}
	return bia.WithSweep(start, stop, pts, logSpacing), nil
}

func parseCombinations(s string) ([]mux.Combination, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []mux.Combination
	for _, v := range strings.Split(s, ";") {
		c, err := mux.ParseCombination(strings.TrimSpace(v))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func monitor(dir string, freq time.Duration) error {
	p, err := pmon.Monitor(os.Getpid())
	if err != nil {
		return fmt.Errorf("could not monitor pid=%d: %w", os.Getpid(), err)
	}
	f, err := os.Create(filepath.Join(dir, "bia-daq-pmon.log"))
	if err != nil {
		return fmt.Errorf("could not create pmon log file: %w", err)
	}
	p.W = f
	p.Freq = freq

	go func() {
		defer f.Close()
		log.Printf("run pmon...")
		err := p.Run()
		if err != nil {
			log.Printf("could not run monitoring: %+v", err)
		}
	}()
	return nil
}

var (
	alertMailUsr  = os.Getenv("MAIL_USERNAME")
	alertMailPwd  = os.Getenv("MAIL_PASSWORD")
	alertMailSrv  = os.Getenv("MAIL_SERVER")
	alertMailPort = atoi(os.Getenv("MAIL_PORT"))
	alertMailTgts = strings.Split(os.Getenv("MAIL_TGTS"), ",")
)

func alertMail(run int32, cause error) {
	if alertMailUsr == "" || alertMailPwd == "" ||
		alertMailSrv == "" || alertMailPort == 0 ||
		len(alertMailTgts) == 0 || alertMailTgts[0] == "" {
		log.Printf("could not send mail alert: missing credentials")
		return
	}

	host, _ := os.Hostname()
	msg := mail.NewMessage()
	msg.SetHeader("From", alertMailUsr)
	msg.SetHeader("Bcc", alertMailTgts...)
	msg.SetHeader("Subject", fmt.Sprintf("[bia-daq] run %d halted", run))
	msg.SetBody("text/plain", fmt.Sprintf("host:  %s\nrun:   %d\nerror: %+v\n",
		host, run, cause,
	))

	dial := mail.NewDialer(alertMailSrv, alertMailPort, alertMailUsr, alertMailPwd)
	dial.TLSConfig = &tls.Config{
		InsecureSkipVerify: true,
	}
	err := dial.DialAndSend(msg)
	if err != nil {
		log.Printf("could not send mail alert: %+v", err)
	}
}

func atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
