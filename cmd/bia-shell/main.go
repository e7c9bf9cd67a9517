// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command bia-shell is an interactive client for bia-srv.
//
// Example:
//
//	$> bia-shell -addr rpi:8866
//	bia> init freq=10e3 odr=4 ndata=100
//	{"state":"armed","freq":10000,"samples":0,"calibrated":true}
//	bia> start
//	bia> status
//	bia> stop
package main // import "github.com/go-lpc/bioz/cmd/bia-shell"

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-lpc/bioz/bia"
	"github.com/peterh/liner"
)

var cmds = []string{
	"init", "start", "stop", "stop-sync", "freq",
	"status", "cal", "dump", "shutdown", "help", "quit",
}

const help = `commands:
  init [freq=F] [odr=R] [ndata=N] [sweep=START:STOP:POINTS] [log] [recal]
  start | stop | stop-sync | shutdown
  freq | status | cal | dump
  help | quit
`

func main() {
	log.SetPrefix("bia-shell: ")
	log.SetFlags(0)

	addr := flag.String("addr", ":8866", "bia-srv [ip]:port to dial")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Fatalf("could not dial bia-srv %q: %+v", *addr, err)
	}
	defer conn.Close()

	term := liner.NewLiner()
	defer term.Close()

	term.SetCtrlCAborts(true)
	term.SetCompleter(complete)

	hist := filepath.Join(os.TempDir(), ".bia-shell.history")
	if f, err := os.Open(hist); err == nil {
		_, _ = term.ReadHistory(f)
		f.Close()
	}
	defer func() {
		f, err := os.Create(hist)
		if err != nil {
			return
		}
		defer f.Close()
		_, _ = term.WriteHistory(f)
	}()

	cli := newClient(conn)
	for {
		line, err := term.Prompt("bia> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return
			}
			log.Printf("could not read line: %+v", err)
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		term.AppendHistory(line)

		switch line {
		case "quit", "exit":
			return
		case "help":
			fmt.Print(help)
			continue
		}

		err = cli.run(os.Stdout, line)
		if err != nil {
			log.Printf("%+v", err)
			if errors.Is(err, io.EOF) {
				return
			}
		}
	}
}

func complete(line string) []string {
	var out []string
	for _, cmd := range cmds {
		if strings.HasPrefix(cmd, strings.ToLower(line)) {
			out = append(out, cmd)
		}
	}
	return out
}

type client struct {
	enc *json.Encoder
	dec *json.Decoder
}

func newClient(rw io.ReadWriter) *client {
	return &client{
		enc: json.NewEncoder(rw),
		dec: json.NewDecoder(rw),
	}
}

type request struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// run sends the command line to the server and prints its reply.
func (cli *client) run(w io.Writer, line string) error {
	req, err := parse(line)
	if err != nil {
		return err
	}

	err = cli.enc.Encode(req)
	if err != nil {
		return fmt.Errorf("could not send %q: %w", req.Name, err)
	}

	var rep bia.Reply
	err = cli.dec.Decode(&rep)
	if err != nil {
		return fmt.Errorf("could not decode %q reply: %w", req.Name, err)
	}
	if rep.Msg != "ok" {
		return fmt.Errorf("%s: %s", req.Name, rep.Msg)
	}

	switch {
	case len(rep.Data) == 0:
	case req.Name == "dump":
		var txt string
		err = json.Unmarshal(rep.Data, &txt)
		if err != nil {
			return fmt.Errorf("could not decode register dump: %w", err)
		}
		fmt.Fprint(w, txt)
	default:
		fmt.Fprintf(w, "%s\n", rep.Data)
	}
	return nil
}

// parse converts a command line into a control request.
func parse(line string) (request, error) {
	toks := strings.Fields(line)
	req := request{Name: strings.ToLower(toks[0])}
	if req.Name != "init" {
		if len(toks) > 1 {
			return req, fmt.Errorf("command %q takes no argument", req.Name)
		}
		return req, nil
	}

	var (
		args  = make(map[string]interface{})
		sweep map[string]interface{}
	)
	for _, tok := range toks[1:] {
		k, v, _ := strings.Cut(tok, "=")
		switch k {
		case "freq", "odr":
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return req, fmt.Errorf("invalid %s value %q: %w", k, v, err)
			}
			args[k] = f
		case "ndata":
			n, err := strconv.Atoi(v)
			if err != nil {
				return req, fmt.Errorf("invalid %s value %q: %w", k, v, err)
			}
			args[k] = n
		case "sweep":
			vs := strings.Split(v, ":")
			if len(vs) != 3 {
				return req, fmt.Errorf("invalid sweep %q (want start:stop:points)", v)
			}
			start, err := strconv.ParseFloat(vs[0], 64)
			if err != nil {
				return req, fmt.Errorf("invalid sweep start %q: %w", vs[0], err)
			}
			stop, err := strconv.ParseFloat(vs[1], 64)
			if err != nil {
				return req, fmt.Errorf("invalid sweep stop %q: %w", vs[1], err)
			}
			pts, err := strconv.Atoi(vs[2])
			if err != nil {
				return req, fmt.Errorf("invalid sweep points %q: %w", vs[2], err)
			}
			if sweep == nil {
				sweep = make(map[string]interface{})
			}
			sweep["start"] = start
			sweep["stop"] = stop
			sweep["points"] = pts
		case "log":
			if sweep == nil {
				sweep = make(map[string]interface{})
			}
			sweep["log"] = true
		case "recal":
			args["recal"] = true
		default:
			return req, fmt.Errorf("unknown init argument %q", tok)
		}
	}
	if sweep != nil {
		if _, ok := sweep["points"]; !ok {
			return req, fmt.Errorf("log argument needs a sweep")
		}
		args["sweep"] = sweep
	}
	if len(args) == 0 {
		return req, nil
	}

	raw, err := json.Marshal(args)
	if err != nil {
		return req, fmt.Errorf("could not encode init arguments: %w", err)
	}
	req.Args = raw
	return req, nil
}
