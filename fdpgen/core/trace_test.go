package core

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fxamacker/cbor/v2"
	msgp "github.com/tinylib/msgp/msgp"
)

var traceData = []byte{0x8A, 0x19, 0x0D, 0x44, 0x37, 0x0D, 0x38, 0x5E, 0x9B, 0xAA, 0xF3, 0xDA}

func mustOps(t *testing.T, script string) []Op {
	t.Helper()
	ops, err := ParseScript(script)
	if err != nil {
		t.Fatalf("ParseScript(%q): %v", script, err)
	}
	return ops
}

func TestExecuteScript(t *testing.T) {
	ops := mustOps(t, "range:i32:10:30 bytes:4 bool rest")
	trace := ExecuteScript(ops, traceData)

	if len(trace.Entries) != 4 {
		t.Fatalf("got %d entries", len(trace.Entries))
	}
	// 0xDA comes off the tail: 218 % 21 = 8, so 10+8.
	if v := trace.Entries[0].Value; v != int64(18) {
		t.Fatalf("range value = %v (%T)", v, v)
	}
	if v, ok := trace.Entries[1].Value.([]byte); !ok || !bytes.Equal(v, traceData[:4]) {
		t.Fatalf("bytes value = %v", trace.Entries[1].Value)
	}
	// 0xF3 comes off the tail next; its low bit is set.
	if v := trace.Entries[2].Value; v != true {
		t.Fatalf("bool value = %v", v)
	}
	if v, ok := trace.Entries[3].Value.([]byte); !ok || !bytes.Equal(v, traceData[4:10]) {
		t.Fatalf("rest value = %v", trace.Entries[3].Value)
	}
	if trace.Remaining != 0 {
		t.Fatalf("remaining = %d", trace.Remaining)
	}
}

func TestExecuteScriptExhaustedDefaults(t *testing.T) {
	ops := mustOps(t, "u64 i8 bool prob64 str:8 pick:3")
	trace := ExecuteScript(ops, nil)

	want := []any{uint64(0), int64(-128), false, float64(0), "", int64(0)}
	for i, w := range want {
		if got := trace.Entries[i].Value; got != w {
			t.Fatalf("entry %d = %v (%T), want %v", i, got, got, w)
		}
	}
}

func TestEncodeTraceJSON(t *testing.T) {
	trace := ExecuteScript(mustOps(t, "u16 bool"), traceData)
	out, err := EncodeTrace(trace, "json")
	if err != nil {
		t.Fatalf("EncodeTrace: %v", err)
	}
	var decoded struct {
		Trace []struct {
			Op string `json:"op"`
		} `json:"trace"`
		Remaining int `json:"remaining"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("round-trip: %v", err)
	}
	if len(decoded.Trace) != 2 || decoded.Trace[0].Op != "u16" || decoded.Trace[1].Op != "bool" {
		t.Fatalf("decoded = %+v", decoded)
	}
	if decoded.Remaining != len(traceData)-3 {
		t.Fatalf("remaining = %d, want %d", decoded.Remaining, len(traceData)-3)
	}
}

func TestEncodeTraceCBOR(t *testing.T) {
	trace := ExecuteScript(mustOps(t, "u16 str:4"), traceData)
	out, err := EncodeTrace(trace, "cbor")
	if err != nil {
		t.Fatalf("EncodeTrace: %v", err)
	}
	var decoded map[string]any
	if err := cbor.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("round-trip: %v", err)
	}
	entries, ok := decoded["trace"].([]any)
	if !ok || len(entries) != 2 {
		t.Fatalf("decoded trace = %#v", decoded["trace"])
	}
}

func TestEncodeTraceMsgpack(t *testing.T) {
	trace := ExecuteScript(mustOps(t, "range:i32:10:30 bool str:4"), traceData)
	out, err := EncodeTrace(trace, "msgpack")
	if err != nil {
		t.Fatalf("EncodeTrace: %v", err)
	}

	// Walk the envelope with the msgp runtime: a two-entry map whose
	// "trace" value is an array of {op, value} maps.
	sz, rest, err := msgp.ReadMapHeaderBytes(out)
	if err != nil || sz != 2 {
		t.Fatalf("map header = %d, err %v", sz, err)
	}
	key, rest, err := msgp.ReadStringBytes(rest)
	if err != nil || key != "trace" {
		t.Fatalf("first key = %q, err %v", key, err)
	}
	n, rest, err := msgp.ReadArrayHeaderBytes(rest)
	if err != nil || n != 3 {
		t.Fatalf("array header = %d, err %v", n, err)
	}

	wantOps := []string{"range:i32:10:30", "bool", "str:4"}
	for i, wantOp := range wantOps {
		var esz uint32
		esz, rest, err = msgp.ReadMapHeaderBytes(rest)
		if err != nil || esz != 2 {
			t.Fatalf("entry %d map header = %d, err %v", i, esz, err)
		}
		key, rest, err = msgp.ReadStringBytes(rest)
		if err != nil || key != "op" {
			t.Fatalf("entry %d key = %q, err %v", i, key, err)
		}
		var op string
		op, rest, err = msgp.ReadStringBytes(rest)
		if err != nil || op != wantOp {
			t.Fatalf("entry %d op = %q, err %v", i, op, err)
		}
		key, rest, err = msgp.ReadStringBytes(rest)
		if err != nil || key != "value" {
			t.Fatalf("entry %d key = %q, err %v", i, key, err)
		}
		rest, err = msgp.Skip(rest)
		if err != nil {
			t.Fatalf("entry %d value skip: %v", i, err)
		}
	}

	key, rest, err = msgp.ReadStringBytes(rest)
	if err != nil || key != "remaining" {
		t.Fatalf("second key = %q, err %v", key, err)
	}
	rem, rest, err := msgp.ReadIntBytes(rest)
	if err != nil || rem != trace.Remaining {
		t.Fatalf("remaining = %d, err %v", rem, err)
	}
	if len(rest) != 0 {
		t.Fatalf("%d trailing bytes", len(rest))
	}
}

func TestEncodeTraceUnknownFormat(t *testing.T) {
	if _, err := EncodeTrace(Trace{}, "yaml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
