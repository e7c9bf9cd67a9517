// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
)

// InitArgs are the optional arguments of the "init" control request.
type InitArgs struct {
	SinFreq   float64 `json:"freq,omitempty"`
	ODR       float64 `json:"odr,omitempty"`
	NumOfData int     `json:"ndata,omitempty"`
	Sweep     *struct {
		Start  float64 `json:"start"`
		Stop   float64 `json:"stop"`
		Points int     `json:"points"`
		Log    bool    `json:"log"`
	} `json:"sweep,omitempty"`
	ReCal bool `json:"recal,omitempty"`
}

func (args InitArgs) options() []Option {
	var opts []Option
	if args.SinFreq > 0 {
		opts = append(opts, WithSinFreq(args.SinFreq))
	}
	if args.ODR > 0 {
		opts = append(opts, WithODR(args.ODR))
	}
	if args.NumOfData != 0 {
		opts = append(opts, WithNumOfData(args.NumOfData))
	}
	if sw := args.Sweep; sw != nil {
		opts = append(opts, WithSweep(sw.Start, sw.Stop, sw.Points, sw.Log))
	}
	return opts
}

// Reply is the answer to a control request.
type Reply struct {
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Server exposes the control surface of an acquisition over TCP.
// Requests are JSON objects {"name": ..., "args": ...}, answered with
// a Reply.
type Server struct {
	ctl net.Listener
	msg *log.Logger

	app *App
	buf []uint32 // sequence generator buffer
}

// Serve serves control requests for app on addr.
func Serve(ctx context.Context, addr string, app *App) error {
	srv, err := NewServer(addr, app)
	if err != nil {
		return fmt.Errorf("bia: could not create control server: %w", err)
	}
	return srv.Serve(ctx)
}

// NewServer creates a control server listening on addr.
func NewServer(addr string, app *App) (*Server, error) {
	ctl, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bia: could not listen on %q: %w", addr, err)
	}
	return &Server{
		ctl: ctl,
		msg: log.New(os.Stdout, "bia-srv: ", 0),
		app: app,
		buf: make([]uint32, app.Config().MaxSeqLen),
	}, nil
}

// Addr returns the listening address of the server.
func (srv *Server) Addr() net.Addr { return srv.ctl.Addr() }

// Close stops accepting connections.
func (srv *Server) Close() error { return srv.ctl.Close() }

// Serve accepts and serves connections, one at a time, until ctx is
// canceled or the listener is closed.
func (srv *Server) Serve(ctx context.Context) error {
	defer srv.Close()

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	for {
		conn, err := srv.ctl.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("bia: could not accept connection: %w", err)
		}

		err = srv.handle(ctx, conn)
		if err != nil {
			srv.msg.Printf("could not serve %v: %+v", conn.RemoteAddr(), err)
			continue
		}
	}
}

func (srv *Server) handle(ctx context.Context, conn net.Conn) error {
	defer conn.Close()
	srv.msg.Printf("serving %v...", conn.RemoteAddr())
	defer srv.msg.Printf("serving %v... [done]", conn.RemoteAddr())

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	dec := json.NewDecoder(conn)
	for {
		var req struct {
			Name string           `json:"name"`
			Args *json.RawMessage `json:"args"`
		}

		err := dec.Decode(&req)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			srv.msg.Printf("could not decode command request: %+v", err)
			srv.reply(conn, nil, err)
			return err
		}
		srv.msg.Printf("received request: name=%q", req.Name)

		data, err := srv.dispatch(ctx, req.Name, req.Args)
		if err != nil {
			srv.msg.Printf("could not run %q: %+v", req.Name, err)
		}
		srv.reply(conn, data, err)
	}
}

func (srv *Server) dispatch(ctx context.Context, name string, raw *json.RawMessage) (interface{}, error) {
	switch name := strings.ToLower(name); name {
	case "init":
		var args InitArgs
		if raw != nil {
			err := json.Unmarshal(*raw, &args)
			if err != nil {
				return nil, fmt.Errorf("could not decode %q payload: %w", name, err)
			}
		}
		if opts := args.options(); len(opts) > 0 {
			err := srv.app.SetConfig(opts...)
			if err != nil {
				return nil, err
			}
		}
		if args.ReCal {
			srv.app.RequestCalibration()
		}
		err := srv.app.Init(ctx, srv.buf)
		if err != nil {
			return nil, err
		}
		return srv.app.Status(), nil

	case "status":
		return srv.app.Status(), nil

	case "cal":
		return srv.app.Calibration(), nil

	case "dump":
		o := new(bytes.Buffer)
		err := srv.app.Device().DumpRegisters(o)
		if err != nil {
			return nil, err
		}
		return o.String(), nil

	default:
		cmd, err := ParseCmd(name)
		if err != nil {
			return nil, err
		}
		var freq float64
		err = srv.app.Ctrl(cmd, &freq)
		if err != nil {
			return nil, err
		}
		if cmd == CtrlGetFreq {
			return freq, nil
		}
		return nil, nil
	}
}

func (srv *Server) reply(conn net.Conn, data interface{}, err error) {
	rep := Reply{Msg: "ok"}
	if err != nil {
		rep.Msg = fmt.Sprintf("%+v", err)
	}
	if data != nil && err == nil {
		raw, e := json.Marshal(data)
		if e != nil {
			rep.Msg = fmt.Sprintf("could not encode reply: %+v", e)
		} else {
			rep.Data = raw
		}
	}

	_ = json.NewEncoder(conn).Encode(rep)
}
