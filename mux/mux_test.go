// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mux

import (
	"fmt"
	"io"
	"reflect"
	"testing"
)

type fakeConn struct {
	writes [][3]uint8
	fail   int
}

func (c *fakeConn) WriteReg(addr, reg, v uint8) error {
	if c.fail > 0 && len(c.writes)+1 == c.fail {
		return fmt.Errorf("nack")
	}
	c.writes = append(c.writes, [3]uint8{addr, reg, v})
	return nil
}

func (c *fakeConn) Close() error { return nil }

func TestSelector(t *testing.T) {
	for _, tc := range []struct {
		on   bool
		x, y uint8
		want uint8
	}{
		{false, 0, 0, 0x00},
		{true, 0, 0, 0x80},
		{true, 1, 2, 0x8a},
		{false, 11, 3, 0x5b},
	} {
		t.Run(fmt.Sprintf("%v-%d-%d", tc.on, tc.x, tc.y), func(t *testing.T) {
			got := Selector(tc.on, tc.x, tc.y)
			if got != tc.want {
				t.Fatalf("invalid selector: got=0x%02x, want=0x%02x", got, tc.want)
			}
		})
	}
}

func TestRoute(t *testing.T) {
	c := &fakeConn{}
	sw := newSwitch(c, Addr)
	sw.SetOutput(io.Discard)
	defer sw.Close()

	if _, ok := sw.Current(); ok {
		t.Fatalf("unexpected initial route")
	}

	err := sw.Route(Combination{0, 1, 2, 3})
	if err != nil {
		t.Fatalf("could not route: %+v", err)
	}
	want := [][3]uint8{
		{Addr, 0x80, 0},
		{Addr, 0x89, 0},
		{Addr, 0x92, 0},
		{Addr, 0x9b, 1},
	}
	if !reflect.DeepEqual(c.writes, want) {
		t.Fatalf("invalid writes:\ngot= %x\nwant=%x", c.writes, want)
	}

	c.writes = nil
	err = sw.Route(Combination{4, 5, 6, 7})
	if err != nil {
		t.Fatalf("could not re-route: %+v", err)
	}
	if got, want := len(c.writes), 8; got != want {
		t.Fatalf("invalid number of writes: got=%d, want=%d", got, want)
	}
	for i, w := range c.writes[:4] {
		if w[1]&0x80 != 0 || w[2] != 0 {
			t.Fatalf("write %d should open a switch without latching: %x", i, w)
		}
	}
	if got := c.writes[7][2]; got != 1 {
		t.Fatalf("last write should latch")
	}
	if cur, _ := sw.Current(); cur != (Combination{4, 5, 6, 7}) {
		t.Fatalf("invalid current route: %v", cur)
	}

	c.writes = nil
	err = sw.Reset()
	if err != nil {
		t.Fatalf("could not reset: %+v", err)
	}
	if got, want := len(c.writes), 4; got != want {
		t.Fatalf("invalid number of writes: got=%d, want=%d", got, want)
	}
	if _, ok := sw.Current(); ok {
		t.Fatalf("unexpected route after reset")
	}
}

func TestRouteErrors(t *testing.T) {
	c := &fakeConn{fail: 2}
	sw := newSwitch(c, Addr)
	sw.SetOutput(io.Discard)

	err := sw.Route(Combination{0, 1, 12, 3})
	if err == nil || err.Error() != "mux: invalid electrode 12 on input 2" {
		t.Fatalf("invalid error: %v", err)
	}

	err = sw.Route(Combination{0, 1, 2, 3})
	if err == nil {
		t.Fatalf("expected an i2c error")
	}
	if _, ok := sw.Current(); ok {
		t.Fatalf("unexpected route after failure")
	}
}

func TestParseCombination(t *testing.T) {
	for _, tc := range []struct {
		str  string
		want Combination
		err  bool
	}{
		{str: "0,1,2,3", want: Combination{0, 1, 2, 3}},
		{str: "11,10,9,8", want: Combination{11, 10, 9, 8}},
		{str: "0,1,2", err: true},
		{str: "0,1,2,12", err: true},
		{str: "a,b,c,d", err: true},
	} {
		t.Run(tc.str, func(t *testing.T) {
			got, err := ParseCombination(tc.str)
			switch {
			case tc.err && err == nil:
				t.Fatalf("expected an error")
			case !tc.err && err != nil:
				t.Fatalf("could not parse: %+v", err)
			}
			if got != tc.want && !tc.err {
				t.Fatalf("invalid combination: got=%v, want=%v", got, tc.want)
			}
		})
	}
}
