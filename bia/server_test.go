// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bia

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"strings"
	"testing"
)

func TestServerFail(t *testing.T) {
	app, _ := newTestApp()
	err := Serve(context.Background(), ":invalid", app)
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestServer(t *testing.T) {
	app, chip := newTestApp()
	pushCal(chip, 1)

	srv, err := NewServer("localhost:0", app)
	if err != nil {
		t.Fatal(err)
	}
	srv.msg = log.New(io.Discard, "", 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx)
	}()

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("could not dial server: %+v", err)
	}
	defer conn.Close()

	var (
		enc = json.NewEncoder(conn)
		dec = json.NewDecoder(conn)
	)
	send := func(name string, args interface{}) Reply {
		t.Helper()
		req := struct {
			Name string      `json:"name"`
			Args interface{} `json:"args,omitempty"`
		}{name, args}
		err := enc.Encode(req)
		if err != nil {
			t.Fatalf("could not send %q: %+v", name, err)
		}
		var rep Reply
		err = dec.Decode(&rep)
		if err != nil {
			t.Fatalf("could not receive reply to %q: %+v", name, err)
		}
		return rep
	}

	for _, tc := range []struct {
		name  string
		args  interface{}
		msg   string
		check func(rep Reply)
	}{
		{name: "start", msg: "not initialized"},
		{
			name: "init",
			args: InitArgs{SinFreq: 20e3, ODR: 10},
			msg:  "ok",
			check: func(rep Reply) {
				var st Status
				err := json.Unmarshal(rep.Data, &st)
				if err != nil {
					t.Fatalf("could not decode status: %+v", err)
				}
				if st.State != "armed" || st.Freq != 20e3 || !st.Calib {
					t.Fatalf("invalid status: %+v", st)
				}
			},
		},
		{name: "start", msg: "ok"},
		{
			name: "freq",
			msg:  "ok",
			check: func(rep Reply) {
				var freq float64
				err := json.Unmarshal(rep.Data, &freq)
				if err != nil {
					t.Fatalf("could not decode frequency: %+v", err)
				}
				if freq != 20e3 {
					t.Fatalf("invalid frequency: %v", freq)
				}
			},
		},
		{
			name: "cal",
			msg:  "ok",
			check: func(rep Reply) {
				if !strings.Contains(string(rep.Data), `"real":`) {
					t.Fatalf("invalid calibration reply: %s", rep.Data)
				}
			},
		},
		{
			name: "dump",
			msg:  "ok",
			check: func(rep Reply) {
				if !strings.Contains(string(rep.Data), "ADIID") {
					t.Fatalf("invalid register dump: %s", rep.Data)
				}
			},
		},
		{name: "stop-sync", msg: "ok"},
		{name: "stop", msg: "ok"},
		{name: "reboot", msg: "unknown control command"},
		{name: "init", args: "not-an-object", msg: "could not decode"},
		{name: "shutdown", msg: "ok"},
		{
			name: "status",
			msg:  "ok",
			check: func(rep Reply) {
				var st Status
				err := json.Unmarshal(rep.Data, &st)
				if err != nil {
					t.Fatalf("could not decode status: %+v", err)
				}
				if st.State != "stopped" {
					t.Fatalf("invalid status: %+v", st)
				}
			},
		},
	} {
		rep := send(tc.name, tc.args)
		if !strings.Contains(rep.Msg, tc.msg) {
			t.Fatalf("%s: invalid reply: got=%q, want=%q", tc.name, rep.Msg, tc.msg)
		}
		if tc.check != nil {
			tc.check(rep)
		}
	}

	_ = conn.Close()
	cancel()
	err = <-done
	if err != nil {
		t.Fatalf("could not run server: %+v", err)
	}
}
