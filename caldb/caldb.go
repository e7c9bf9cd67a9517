// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package caldb stores RTIA calibration tables and acquisition runs
// in the bio-impedance database.
package caldb // import "github.com/go-lpc/bioz/caldb"

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/go-lpc/bioz/ad5940"
	_ "github.com/go-sql-driver/mysql"
)

const (
	timeout = 5 * time.Second
)

var (
	host = "localhost"
	usr  = "username"
	pwd  = "s3cr3t"

	drvName = "mysql"
)

func init() {
	if v := os.Getenv("BIOZ_DB_HOST"); v != "" {
		host = v
	}
	if v := os.Getenv("BIOZ_DB_USER"); v != "" {
		usr = v
	}
	if v := os.Getenv("BIOZ_DB_PASS"); v != "" {
		pwd = v
	}
}

// DB exposes convenience methods to store and retrieve calibration
// tables and run records.
type DB struct {
	db   *sql.DB
	name string
}

// Open opens a connection to the database dbname.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("caldb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &DB{db: db, name: dbname}, nil
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("caldb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// CalPoint is the RTIA calibration factor at one frequency.
type CalPoint struct {
	Freq float64        // excitation frequency, in Hz
	Cal  ad5940.Complex // calibration factor
}

// Run describes an acquisition run.
type Run struct {
	ID        int32
	SinFreq   float64
	ODR       float64
	NumOfData int
	Sweep     ad5940.Sweep
	Rcal      float64
	Time      time.Time
}

// SaveRun records a new acquisition run.
func (db *DB) SaveRun(ctx context.Context, run Run) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if run.Time.IsZero() {
		run.Time = time.Now().UTC()
	}
	_, err := db.db.ExecContext(
		ctx,
		`INSERT INTO runs
		(run, sin_freq, odr, ndata, sweep_en, sweep_start, sweep_stop, sweep_pts, sweep_log, rcal, datetime)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SinFreq, run.ODR, run.NumOfData,
		run.Sweep.Enable, run.Sweep.Start, run.Sweep.Stop, run.Sweep.Points, run.Sweep.Log,
		run.Rcal, run.Time,
	)
	if err != nil {
		return fmt.Errorf("caldb: could not insert run %d: %w", run.ID, err)
	}
	return nil
}

// LastRun returns the most recent acquisition run number.
// It returns 0 when no run was recorded.
func (db *DB) LastRun(ctx context.Context) (int32, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var run int32
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT run FROM runs ORDER BY run DESC LIMIT 1",
	)
	if err != nil {
		return run, fmt.Errorf("caldb: could not query last run: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		err = rows.Scan(&run)
		if err != nil {
			return run, fmt.Errorf("caldb: could not get last run value: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return run, fmt.Errorf("caldb: could not scan db for last run: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return run, fmt.Errorf("caldb: context error while retrieving last run: %w", err)
	}

	return run, nil
}

// SaveRtiaCal stores the calibration table of run, atomically.
func (db *DB) SaveRtiaCal(ctx context.Context, run int32, rcal float64, cal []CalPoint) (err error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if len(cal) == 0 {
		return fmt.Errorf("caldb: empty calibration table for run %d", run)
	}

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("caldb: could not start transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, pt := range cal {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO rtiacal (run, idx, freq, re, im, rcal) VALUES (?, ?, ?, ?, ?, ?)`,
			run, i, pt.Freq, pt.Cal.Real, pt.Cal.Imag, rcal,
		)
		if err != nil {
			return fmt.Errorf("caldb: could not insert calibration point %d of run %d: %w", i, run, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("caldb: could not commit calibration of run %d: %w", run, err)
	}
	return nil
}

// RtiaCal returns the calibration table of run, ordered by sweep index.
func (db *DB) RtiaCal(ctx context.Context, run int32) ([]CalPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rows, err := db.db.QueryContext(
		ctx,
		"SELECT freq, re, im FROM rtiacal WHERE run=? ORDER BY idx",
		run,
	)
	if err != nil {
		return nil, fmt.Errorf("caldb: could not query calibration of run %d: %w", run, err)
	}
	defer rows.Close()

	var cal []CalPoint
	for rows.Next() {
		var pt CalPoint
		err = rows.Scan(&pt.Freq, &pt.Cal.Real, &pt.Cal.Imag)
		if err != nil {
			return nil, fmt.Errorf("caldb: could not get calibration point: %w", err)
		}
		cal = append(cal, pt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("caldb: could not scan db for calibration of run %d: %w", run, err)
	}

	if len(cal) == 0 {
		return nil, fmt.Errorf("caldb: no calibration for run %d", run)
	}

	return cal, nil
}
