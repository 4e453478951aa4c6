package persistence

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestHeader_WriteRead(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHeader(&buf, VersionCurrent, CompressionZSTD); err != nil {
		t.Fatalf("WriteHeader failed: %v", err)
	}
	if buf.Len() != 8 {
		t.Fatalf("header size: got %d, want 8", buf.Len())
	}

	header, err := ReadHeader(&buf)
	if err != nil {
		t.Fatalf("ReadHeader failed: %v", err)
	}
	if header.Version != VersionCurrent {
		t.Errorf("Version mismatch: got %d, want %d", header.Version, VersionCurrent)
	}
	if Compression(header.Compression) != CompressionZSTD {
		t.Errorf("Compression mismatch: got %d, want %d", header.Compression, CompressionZSTD)
	}
}

func TestHeader_Invalid(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xde, 0xad, 0xbe, 0xef, 2, 0, 0, 0})
	if _, err := ReadHeader(&buf); !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("expected ErrInvalidMagic, got %v", err)
	}

	buf.Reset()
	if err := WriteHeader(&buf, 99, CompressionNone); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadHeader(&buf); !errors.Is(err, ErrInvalidVersion) {
		t.Errorf("expected ErrInvalidVersion, got %v", err)
	}

	buf.Reset()
	if err := WriteHeader(&buf, VersionCurrent, Compression(7)); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadHeader(&buf); !errors.Is(err, ErrInvalidCompression) {
		t.Errorf("expected ErrInvalidCompression, got %v", err)
	}
}

func TestPayload_WriteRead(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.WriteUint32(42); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteUint64(1 << 40); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteString("füße"); err != nil {
		t.Fatal(err)
	}
	vec := []float32{1.5, -2.25, 3.125}
	if err := w.WriteFloat32Slice(vec); err != nil {
		t.Fatal(err)
	}
	counts := []uint64{7, 0, 9}
	if err := w.WriteUint64Slice(counts); err != nil {
		t.Fatal(err)
	}

	r := NewReader(&buf)
	if v, err := r.ReadUint32(); err != nil || v != 42 {
		t.Errorf("ReadUint32: got %d, %v", v, err)
	}
	if v, err := r.ReadUint64(); err != nil || v != 1<<40 {
		t.Errorf("ReadUint64: got %d, %v", v, err)
	}
	if s, err := r.ReadString(); err != nil || s != "füße" {
		t.Errorf("ReadString: got %q, %v", s, err)
	}
	got, err := r.ReadFloat32Slice(len(vec))
	if err != nil {
		t.Fatal(err)
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("float32 mismatch at %d: got %f, want %f", i, got[i], vec[i])
		}
	}
	gotCounts, err := r.ReadUint64Slice(len(counts))
	if err != nil {
		t.Fatal(err)
	}
	for i := range counts {
		if gotCounts[i] != counts[i] {
			t.Errorf("uint64 mismatch at %d: got %d, want %d", i, gotCounts[i], counts[i])
		}
	}
}

func TestReadString_Truncated(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteUint32(100); err != nil {
		t.Fatal(err)
	}
	buf.WriteString("short")

	r := NewReader(&buf)
	if _, err := r.ReadString(); err == nil {
		t.Error("expected error on truncated string")
	}
}

func TestCompression_RoundTrip(t *testing.T) {
	payload := make([]float32, 1024)
	for i := range payload {
		payload[i] = float32(i % 17)
	}

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			cw, closer, err := WrapWriter(&buf, c)
			if err != nil {
				t.Fatal(err)
			}
			if err := NewWriter(cw).WriteFloat32Slice(payload); err != nil {
				t.Fatal(err)
			}
			if err := closer.Close(); err != nil {
				t.Fatal(err)
			}

			cr, err := WrapReader(&buf, c)
			if err != nil {
				t.Fatal(err)
			}
			got, err := NewReader(cr).ReadFloat32Slice(len(payload))
			if err != nil {
				t.Fatal(err)
			}
			for i := range payload {
				if got[i] != payload[i] {
					t.Fatalf("mismatch at %d: got %f, want %f", i, got[i], payload[i])
				}
			}
		})
	}
}

func TestSaveLoadFile(t *testing.T) {
	tmpfile := filepath.Join(t.TempDir(), "snapshot.bin")

	vec := []float32{1.1, 2.2, 3.3, 4.4}
	err := SaveToFile(tmpfile, func(w io.Writer) error {
		if err := WriteHeader(w, VersionCurrent, CompressionNone); err != nil {
			return err
		}
		return NewWriter(w).WriteFloat32Slice(vec)
	})
	if err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	err = LoadFromFile(tmpfile, func(r io.Reader) error {
		if _, err := ReadHeader(r); err != nil {
			return err
		}
		got, err := NewReader(r).ReadFloat32Slice(len(vec))
		if err != nil {
			return err
		}
		for i := range vec {
			if got[i] != vec[i] {
				t.Errorf("mismatch at %d: got %f, want %f", i, got[i], vec[i])
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(tmpfile))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the snapshot file, found %d entries", len(entries))
	}
}
