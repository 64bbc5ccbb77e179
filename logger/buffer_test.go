package logger

import "testing"

func TestBuffer_Log(t *testing.T) {
	b := NewBuffer(10)
	b.Log("one %d", 1)
	b.Log("two")

	entries := b.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(entries)=%d; expect 2", len(entries))
	}
	if entries[0].Log != "one 1" {
		t.Errorf("entries[0]=%q; expect 'one 1'", entries[0].Log)
	}
	if entries[0].At.IsZero() {
		t.Errorf("entries[0].At is zero")
	}
}

func TestBuffer_Cap(t *testing.T) {
	b := NewBuffer(3)
	for i := 0; i < 5; i++ {
		b.Log("entry %d", i)
	}

	entries := b.Entries()
	if len(entries) != 3 {
		t.Fatalf("len(entries)=%d; expect 3", len(entries))
	}
	if entries[0].Log != "entry 2" {
		t.Errorf("entries[0]=%q; expect oldest retained entry 'entry 2'", entries[0].Log)
	}
}

func TestBuffer_Logger(t *testing.T) {
	b := NewBuffer(10)
	l := b.Logger("test")
	l.Printf("hello %s", "world")

	entries := b.Entries()
	if len(entries) != 1 {
		t.Fatalf("len(entries)=%d; expect 1", len(entries))
	}
	// The buffered line carries the label, matching the standard log.
	if entries[0].Log != "[test]\thello world" {
		t.Errorf("entries[0]=%q; expect '[test]\\thello world'", entries[0].Log)
	}
}
