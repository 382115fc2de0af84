// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/rankit/core"
)

// Encoded values start with a format version so the layout can change
// without a migration.
const (
	recordFormat uint64 = 1
	themeFormat  uint64 = 1
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// MarshalRecord serializes a Record to bytes. Ranking annotations are
// not persisted.
func MarshalRecord(record *core.Record) []byte {
	var e encoder
	for pass := 0; pass < 2; pass++ {
		e.begin()
		e.uint64(recordFormat)
		e.uint64(uint64(record.Id))
		e.string(record.Title)
		e.string(record.Description)
		e.string(record.Content)
		e.string(record.Author)
		e.string(record.URL)
		e.string(record.Source)
		e.strings(record.Tags)
		e.strings(record.Themes)
		e.time(record.PublishedAt)
		e.time(record.InsertedAt)
		e.time(record.UpdatedAt)
		e.floats(record.Vector)
		e.uint64(math.Float64bits(record.Score))
	}
	return e.buf
}

// UnmarshalRecord deserializes a Record from bytes.
func UnmarshalRecord(data []byte) (*core.Record, error) {
	d := decoder{bs: data}
	if v := d.uint64(); d.err == nil && v != recordFormat {
		return nil, fmt.Errorf("%w: record format %d", ErrSerializationFailed, v)
	}

	record := &core.Record{
		Id:          core.ID(d.uint64()),
		Title:       d.string(),
		Description: d.string(),
		Content:     d.string(),
		Author:      d.string(),
		URL:         d.string(),
		Source:      d.string(),
		Tags:        d.strings(),
		Themes:      d.strings(),
		PublishedAt: d.time(),
		InsertedAt:  d.time(),
		UpdatedAt:   d.time(),
		Vector:      d.floats(),
		Score:       math.Float64frombits(d.uint64()),
	}
	if d.err != nil {
		return nil, fmt.Errorf("%w: record: %w", ErrSerializationFailed, d.err)
	}
	return record, nil
}

// MarshalTheme serializes a Theme to bytes.
func MarshalTheme(theme *core.Theme) []byte {
	var e encoder
	for pass := 0; pass < 2; pass++ {
		e.begin()
		e.uint64(themeFormat)
		e.uint64(uint64(theme.Id))
		e.string(theme.Name)
		e.strings(theme.Tags)
		e.time(theme.InsertedAt)
		e.time(theme.UpdatedAt)
	}
	return e.buf
}

// UnmarshalTheme deserializes a Theme from bytes.
func UnmarshalTheme(data []byte) (*core.Theme, error) {
	d := decoder{bs: data}
	if v := d.uint64(); d.err == nil && v != themeFormat {
		return nil, fmt.Errorf("%w: theme format %d", ErrSerializationFailed, v)
	}

	theme := &core.Theme{
		Id:         core.ID(d.uint64()),
		Name:       d.string(),
		Tags:       d.strings(),
		InsertedAt: d.time(),
		UpdatedAt:  d.time(),
	}
	if d.err != nil {
		return nil, fmt.Errorf("%w: theme: %w", ErrSerializationFailed, d.err)
	}
	return theme, nil
}

// encoder runs in two passes: the first sizes the buffer, the second fills it.
type encoder struct {
	buf  []byte
	size int
	n    int
}

func (e *encoder) begin() {
	if e.n > 0 || e.size > 0 {
		e.buf = make([]byte, e.size)
	}
	e.size, e.n = 0, 0
}

func (e *encoder) sizing() bool {
	return e.buf == nil
}

func (e *encoder) uint64(v uint64) {
	if e.sizing() {
		e.size += varint.Uint64.Size(v)
		return
	}
	e.n += varint.Uint64.Marshal(v, e.buf[e.n:])
}

func (e *encoder) int64(v int64) {
	if e.sizing() {
		e.size += varint.Int64.Size(v)
		return
	}
	e.n += varint.Int64.Marshal(v, e.buf[e.n:])
}

func (e *encoder) string(v string) {
	if e.sizing() {
		e.size += ord.String.Size(v)
		return
	}
	e.n += ord.String.Marshal(v, e.buf[e.n:])
}

func (e *encoder) strings(v []string) {
	e.uint64(uint64(len(v)))
	for _, s := range v {
		e.string(s)
	}
}

func (e *encoder) floats(v []float32) {
	e.uint64(uint64(len(v)))
	for _, f := range v {
		e.uint64(uint64(math.Float32bits(f)))
	}
}

// time writes a presence flag followed by Unix microseconds.
func (e *encoder) time(t time.Time) {
	if t.IsZero() {
		e.uint64(0)
		return
	}
	e.uint64(1)
	e.int64(t.UnixMicro())
}

// decoder reads fields in order and keeps the first error.
type decoder struct {
	bs  []byte
	n   int
	err error
}

func (d *decoder) uint64() uint64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *decoder) int64() int64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *decoder) string() string {
	if d.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

// length reads a collection length. Every element takes at least one
// byte, so a length beyond the remaining input is corrupt.
func (d *decoder) length() int {
	l := d.uint64()
	if d.err == nil && l > uint64(len(d.bs)-d.n) {
		d.err = ErrTruncatedData
	}
	if d.err != nil {
		return 0
	}
	return int(l)
}

func (d *decoder) strings() []string {
	l := d.length()
	if l == 0 {
		return nil
	}
	out := make([]string, l)
	for i := range out {
		out[i] = d.string()
	}
	return out
}

func (d *decoder) floats() []float32 {
	l := d.length()
	if l == 0 {
		return nil
	}
	out := make([]float32, l)
	for i := range out {
		out[i] = math.Float32frombits(uint32(d.uint64()))
	}
	return out
}

func (d *decoder) time() time.Time {
	if d.uint64() == 0 {
		return time.Time{}
	}
	v := d.int64()
	if d.err != nil {
		return time.Time{}
	}
	return time.UnixMicro(v).UTC()
}
