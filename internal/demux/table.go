// Package demux maps the 4-tuple of an incoming segment to its connection
// record. It is the mechanical glue of spec.md §2: a hash-table lookup that
// either hands back an existing record or reports that none exists yet.
package demux

import "github.com/YaoZengzeng/microtcp/internal/tcp"

// Key identifies a connection by the 4-tuple of an incoming segment. Per
// spec.md §6, the table is always keyed on the *incoming* direction: the
// same logical connection is keyed by its peer's source as Key.SrcAddr and
// our own address as Key.DstAddr, even though outgoing segments we emit
// carry those reversed.
type Key struct {
	SrcAddr [4]byte
	SrcPort uint16
	DstAddr [4]byte
	DstPort uint16
}

// Table is the connection table: one Nic's worth of live TCBs. It is not
// safe for concurrent use — the spec's single-threaded loop is the only
// writer and reader, and a lookup's returned *tcp.Connection is only valid
// for the duration of the one segment being processed (no cross-record
// aliasing is possible in a single-threaded loop).
type Table struct {
	conns map[Key]*tcp.Connection
}

// New creates an empty connection table.
func New() *Table {
	return &Table{conns: make(map[Key]*tcp.Connection)}
}

// Lookup returns the connection record for key, if any.
func (t *Table) Lookup(key Key) (*tcp.Connection, bool) {
	c, ok := t.conns[key]
	return c, ok
}

// Insert adds a newly accepted connection to the table. There is no
// eviction path: per spec.md I6/§3 Lifecycle, TIME-WAIT is terminal in
// memory and no reaper is specified.
func (t *Table) Insert(key Key, conn *tcp.Connection) {
	t.conns[key] = conn
}

// Len reports the number of live connection records, for metrics.
func (t *Table) Len() int {
	return len(t.conns)
}
