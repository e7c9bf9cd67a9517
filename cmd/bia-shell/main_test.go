// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"reflect"
	"strings"
	"testing"

	"github.com/go-lpc/bioz/ad5940"
	"github.com/go-lpc/bioz/ad5940/ad5940test"
	"github.com/go-lpc/bioz/bia"
)

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		line string
		name string
		args map[string]interface{}
		err  string
	}{
		{line: "start", name: "start"},
		{line: "STATUS", name: "status"},
		{line: "init", name: "init"},
		{
			line: "init freq=10e3 odr=4 ndata=100",
			name: "init",
			args: map[string]interface{}{"freq": 10e3, "odr": 4.0, "ndata": 100.0},
		},
		{
			line: "init sweep=1e3:100e3:10 log recal",
			name: "init",
			args: map[string]interface{}{
				"recal": true,
				"sweep": map[string]interface{}{
					"start": 1e3, "stop": 100e3, "points": 10.0, "log": true,
				},
			},
		},
		{line: "start now", err: `command "start" takes no argument`},
		{line: "init log", err: "log argument needs a sweep"},
		{line: "init foo=1", err: `unknown init argument "foo=1"`},
		{line: "init sweep=1:2", err: `invalid sweep "1:2" (want start:stop:points)`},
	} {
		t.Run(tc.line, func(t *testing.T) {
			req, err := parse(tc.line)
			if tc.err != "" {
				if err == nil || err.Error() != tc.err {
					t.Fatalf("invalid error: got=%v, want=%q", err, tc.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("could not parse line: %+v", err)
			}
			if req.Name != tc.name {
				t.Fatalf("invalid name: got=%q, want=%q", req.Name, tc.name)
			}
			if tc.args == nil {
				if req.Args != nil {
					t.Fatalf("unexpected arguments: %s", req.Args)
				}
				return
			}
			var got map[string]interface{}
			err = json.Unmarshal(req.Args, &got)
			if err != nil {
				t.Fatalf("could not decode arguments: %+v", err)
			}
			if !reflect.DeepEqual(got, tc.args) {
				t.Fatalf("invalid arguments:\ngot= %v\nwant=%v", got, tc.args)
			}
		})
	}
}

func TestComplete(t *testing.T) {
	got := complete("st")
	want := []string{"start", "stop", "stop-sync", "status"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid completion: got=%q, want=%q", got, want)
	}
}

func TestClient(t *testing.T) {
	chip := ad5940test.New()
	msg := log.New(io.Discard, "", 0)
	app := bia.New(ad5940.New(chip, ad5940.WithLogger(msg)), bia.WithLogger(msg))
	chip.PushDFT([2]int32{1000, 0}, [2]int32{-1000, 0})

	srv, err := bia.NewServer("localhost:0", app)
	if err != nil {
		t.Fatalf("could not create server: %+v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Serve(ctx) }()

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("could not dial server: %+v", err)
	}
	defer conn.Close()

	var (
		cli = newClient(conn)
		out = new(bytes.Buffer)
	)
	err = cli.run(out, "init freq=10e3")
	if err != nil {
		t.Fatalf("could not run init: %+v", err)
	}
	if !strings.Contains(out.String(), `"state":"armed"`) {
		t.Fatalf("invalid init reply: %q", out.String())
	}

	out.Reset()
	err = cli.run(out, "freq")
	if err != nil {
		t.Fatalf("could not run freq: %+v", err)
	}
	if got, want := strings.TrimSpace(out.String()), "10000"; got != want {
		t.Fatalf("invalid frequency: got=%q, want=%q", got, want)
	}

	err = cli.run(out, "stop-sync")
	if err == nil {
		t.Fatalf("expected an error stopping an idle acquisition")
	}
}
