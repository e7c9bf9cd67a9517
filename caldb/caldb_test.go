// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package caldb

import (
	"context"
	"database/sql/driver"
	"reflect"
	"strings"
	"testing"

	"github.com/go-lpc/bioz/ad5940"
	"github.com/go-lpc/bioz/internal/fakedb"
)

func init() {
	drvName = "fakedb"
}

func TestOpen(t *testing.T) {
	db, err := Open("testdb")
	if err != nil {
		t.Fatalf("could not open db: %+v", err)
	}
	defer db.Close()

	if got, want := dsn("testdb"), usr+":"+pwd+"@tcp("+host+")/testdb"; got != want {
		t.Fatalf("invalid dsn: got=%q, want=%q", got, want)
	}
}

func TestLastRun(t *testing.T) {
	db, err := Open("testdb")
	if err != nil {
		t.Fatalf("could not open db: %+v", err)
	}
	defer db.Close()

	for _, tc := range []struct {
		name string
		rows [][]driver.Value
		want int32
	}{
		{"empty", nil, 0},
		{"run-42", [][]driver.Value{{int64(42)}}, 42},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_ = fakedb.Run(context.Background(), fakedb.Rows{
				Names:  []string{"run"},
				Values: tc.rows,
			}, func(ctx context.Context) error {
				got, err := db.LastRun(ctx)
				if err != nil {
					t.Fatalf("could not get last run: %+v", err)
				}
				if got != tc.want {
					t.Fatalf("invalid run: got=%d, want=%d", got, tc.want)
				}
				return nil
			})
		})
	}
}

func TestSaveRun(t *testing.T) {
	db, err := Open("testdb")
	if err != nil {
		t.Fatalf("could not open db: %+v", err)
	}
	defer db.Close()

	_ = fakedb.Run(context.Background(), fakedb.Rows{}, func(ctx context.Context) error {
		err := db.SaveRun(ctx, Run{
			ID:        3,
			SinFreq:   50e3,
			ODR:       20,
			NumOfData: -1,
			Rcal:      10e3,
		})
		if err != nil {
			t.Fatalf("could not save run: %+v", err)
		}

		execs := fakedb.Execs()
		if got, want := len(execs), 1; got != want {
			t.Fatalf("invalid number of statements: got=%d, want=%d", got, want)
		}
		if !strings.Contains(execs[0].Query, "INSERT INTO runs") {
			t.Fatalf("invalid statement: %q", execs[0].Query)
		}
		if got, want := execs[0].Args[0], driver.Value(int64(3)); got != want {
			t.Fatalf("invalid run id: got=%v (%T), want=%v", got, got, want)
		}
		return nil
	})
}

func TestRtiaCal(t *testing.T) {
	db, err := Open("testdb")
	if err != nil {
		t.Fatalf("could not open db: %+v", err)
	}
	defer db.Close()

	cal := []CalPoint{
		{Freq: 1e3, Cal: ad5940.Complex{Real: 10e3, Imag: -1}},
		{Freq: 10e3, Cal: ad5940.Complex{Real: 9990, Imag: -12}},
	}

	_ = fakedb.Run(context.Background(), fakedb.Rows{}, func(ctx context.Context) error {
		err := db.SaveRtiaCal(ctx, 7, 10e3, cal)
		if err != nil {
			t.Fatalf("could not save calibration: %+v", err)
		}
		execs := fakedb.Execs()
		if got, want := len(execs), len(cal); got != want {
			t.Fatalf("invalid number of statements: got=%d, want=%d", got, want)
		}
		for i, exec := range execs {
			if got, want := exec.Args[1], driver.Value(int64(i)); got != want {
				t.Fatalf("invalid index for point %d: got=%v, want=%v", i, got, want)
			}
		}
		commit, rollback := fakedb.Commits()
		if commit != 1 || rollback != 0 {
			t.Fatalf("invalid transaction: commit=%d, rollback=%d", commit, rollback)
		}

		err = db.SaveRtiaCal(ctx, 7, 10e3, nil)
		if err == nil {
			t.Fatalf("expected an error for an empty table")
		}
		return nil
	})

	_ = fakedb.Run(context.Background(), fakedb.Rows{
		Names: []string{"freq", "re", "im"},
		Values: [][]driver.Value{
			{1e3, 10e3, -1.0},
			{10e3, 9990.0, -12.0},
		},
	}, func(ctx context.Context) error {
		got, err := db.RtiaCal(ctx, 7)
		if err != nil {
			t.Fatalf("could not load calibration: %+v", err)
		}
		if !reflect.DeepEqual(got, cal) {
			t.Fatalf("invalid calibration:\ngot= %+v\nwant=%+v", got, cal)
		}
		return nil
	})

	_ = fakedb.Run(context.Background(), fakedb.Rows{
		Names: []string{"freq", "re", "im"},
	}, func(ctx context.Context) error {
		_, err := db.RtiaCal(ctx, 8)
		if err == nil {
			t.Fatalf("expected an error for a missing calibration")
		}
		return nil
	})
}
