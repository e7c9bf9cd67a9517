// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fakedb holds types to fake an in-memory DB.
//
// Queries return the rows installed by Run; statements executed
// during Run are recorded and returned by Run's callback via Execs.
package fakedb // import "github.com/go-lpc/bioz/internal/fakedb"

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"sync"
)

// Exec is a recorded statement execution.
type Exec struct {
	Query string
	Args  []driver.Value
}

var query struct {
	mu   sync.Mutex
	rows Rows

	emu   sync.Mutex
	execs []Exec
	txs   struct{ commit, rollback int }
}

// Run runs f with rows as the result of every query.
func Run(ctx context.Context, rows Rows, f func(ctx context.Context) error) error {
	query.mu.Lock()
	defer query.mu.Unlock()
	query.rows = rows

	query.emu.Lock()
	query.execs = nil
	query.txs.commit = 0
	query.txs.rollback = 0
	query.emu.Unlock()

	return f(ctx)
}

// Execs returns the statements executed since the start of the current Run.
func Execs() []Exec {
	query.emu.Lock()
	defer query.emu.Unlock()
	out := make([]Exec, len(query.execs))
	copy(out, query.execs)
	return out
}

// Commits returns the number of committed and rolled back transactions
// since the start of the current Run.
func Commits() (commit, rollback int) {
	query.emu.Lock()
	defer query.emu.Unlock()
	return query.txs.commit, query.txs.rollback
}

func init() {
	sql.Register("fakedb", &Driver{})
}

type Driver struct{}

func (drv *Driver) Open(name string) (driver.Conn, error) {
	return &Conn{}, nil
}

type Conn struct{}

func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return &Stmt{query: query}, nil
}

func (c *Conn) Close() error {
	return nil
}

func (c *Conn) Begin() (driver.Tx, error) {
	return &Tx{}, nil
}

type Tx struct{}

func (tx *Tx) Commit() error {
	query.emu.Lock()
	defer query.emu.Unlock()
	query.txs.commit++
	return nil
}

func (tx *Tx) Rollback() error {
	query.emu.Lock()
	defer query.emu.Unlock()
	query.txs.rollback++
	return nil
}

type Stmt struct {
	query string
}

func (stmt *Stmt) Close() error {
	return nil
}

// NumInput returns -1: argument counts are not checked.
func (stmt *Stmt) NumInput() int {
	return -1
}

func (stmt *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	query.emu.Lock()
	defer query.emu.Unlock()
	vs := make([]driver.Value, len(args))
	copy(vs, args)
	query.execs = append(query.execs, Exec{Query: stmt.query, Args: vs})
	return driver.RowsAffected(1), nil
}

func (stmt *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	return &query.rows, nil
}

type Rows struct {
	Names  []string
	Values [][]driver.Value
}

func (rows *Rows) Columns() []string {
	return rows.Names
}

func (rows *Rows) Close() error {
	return nil
}

// Next returns io.EOF when there are no more rows.
func (rows *Rows) Next(dest []driver.Value) error {
	if len(rows.Values) == 0 {
		return io.EOF
	}
	copy(dest, rows.Values[0])
	rows.Values = rows.Values[1:]
	return nil
}

var (
	_ driver.Driver = (*Driver)(nil)
	_ driver.Conn   = (*Conn)(nil)
	_ driver.Tx     = (*Tx)(nil)
	_ driver.Stmt   = (*Stmt)(nil)
	_ driver.Rows   = (*Rows)(nil)
)
