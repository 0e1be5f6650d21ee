//go:build fuzz
// +build fuzz

package codec

import (
	"testing"
)

// FuzzDecoder feeds arbitrary regions to every read primitive; none may panic
func FuzzDecoder(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{TagNone})
	f.Add([]byte{0x03, 'a', 'b', 'c'})
	f.Add([]byte{TagInt32, 0xFC, 0xFF, 0xFF, 0xFF, 'h', 0, 'i', 0})
	f.Add([]byte{TagUint16, 0xF5, 0xFF, 0xFF, 0xFF, 0x02, 0, 0, 0, 0x02, 0, 'a', 'b', 0x01, 0, 'c', TagNone})

	f.Fuzz(func(t *testing.T, data []byte) {
		readers := []func(d *Decoder) error{
			func(d *Decoder) error { _, _, err := d.ReadString(); return err },
			func(d *Decoder) error { _, _, err := d.ReadBytes(); return err },
			func(d *Decoder) error { _, err := d.ReadTime(); return err },
			func(d *Decoder) error { _, err := d.ReadStringList(); return err },
			func(d *Decoder) error { _, err := d.ReadStringArray(); return err },
		}

		for _, read := range readers {
			dec := NewDecoder(data)
			_ = read(dec)
			if dec.Offset() > len(data) {
				t.Fatalf("cursor %d past region of %d bytes", dec.Offset(), len(data))
			}
		}
	})
}

// FuzzString_RoundTrip checks that any valid text survives both widths
func FuzzString_RoundTrip(f *testing.F) {
	f.Add("")
	f.Add("uninstall")
	f.Add("ユーザー")

	f.Fuzz(func(t *testing.T, s string) {
		size, err := StringSize(s, Wide)
		if err != nil {
			t.Skip("not encodable")
		}
		enc := NewEncoder(make([]byte, size))
		if err := enc.WriteString(s, Wide); err != nil {
			t.Fatalf("WriteString failed after sizing: %v", err)
		}

		got, ok, err := NewDecoder(enc.Bytes()).ReadString()
		if err != nil || !ok {
			t.Fatalf("ReadString failed: ok=%v err=%v", ok, err)
		}
		if got != s {
			t.Errorf("round trip mismatch: got %q want %q", got, s)
		}
	})
}
