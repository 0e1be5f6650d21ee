//go:build bench

package block

import (
	"bytes"
	"io"
	"testing"
)

func BenchmarkStream_Write(b *testing.B) {
	data := make([]byte, 1<<20)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		w := NewWriter(io.Discard, Config{})
		if _, err := w.Write(data); err != nil {
			b.Fatal(err)
		}
		if err := w.FinalizeBlock(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkStream_Read(b *testing.B) {
	var framed bytes.Buffer
	w := NewWriter(&framed, Config{})
	data := make([]byte, 1<<20)
	if _, err := w.Write(data); err != nil {
		b.Fatal(err)
	}
	if err := w.FinalizeBlock(); err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		r, err := NewReader(bytes.NewReader(framed.Bytes()), Config{})
		if err != nil {
			b.Fatal(err)
		}
		if _, err := io.Copy(io.Discard, r); err != nil {
			b.Fatal(err)
		}
	}
}
