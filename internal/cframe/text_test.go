package cframe

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cascii/internal/services"
)

func TestReadTextGrid(t *testing.T) {
	g, err := ReadTextGrid(strings.NewReader("abc\ndef\n"))
	if err != nil {
		t.Fatalf("ReadTextGrid: %v", err)
	}
	if g.Width != 3 || g.Height != 2 {
		t.Fatalf("unexpected dimensions %dx%d", g.Width, g.Height)
	}
	if g.At(2, 1) != 'f' {
		t.Fatalf("unexpected cell: %c", g.At(2, 1))
	}
	if g.HasColors() {
		t.Fatal("text grids carry no colors")
	}
}

func TestReadTextGridRejectsRaggedRows(t *testing.T) {
	_, err := ReadTextGrid(strings.NewReader("abc\nde\n"))
	if !errors.Is(err, services.ErrMalformedGrid) {
		t.Fatalf("expected malformed grid error, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected offending line in error, got %v", err)
	}
}

func TestReadTextGridRejectsEmpty(t *testing.T) {
	if _, err := ReadTextGrid(strings.NewReader("")); !errors.Is(err, services.ErrMalformedGrid) {
		t.Fatalf("expected malformed grid error, got %v", err)
	}
}

func TestReadTextGridStripsCarriageReturns(t *testing.T) {
	g, err := ReadTextGrid(strings.NewReader("ab\r\ncd\r\n"))
	if err != nil {
		t.Fatalf("ReadTextGrid: %v", err)
	}
	if g.Width != 2 {
		t.Fatalf("expected CR stripped, width %d", g.Width)
	}
}

func TestLoadFileDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()

	g := testGrid(t, 4, 2)
	binPath := filepath.Join(dir, "frame_0001.cframe")
	if err := WriteBinaryFile(g, binPath); err != nil {
		t.Fatalf("WriteBinaryFile: %v", err)
	}
	txtPath := filepath.Join(dir, "frame_0001.txt")
	if err := WriteTextFile(g, txtPath); err != nil {
		t.Fatalf("WriteTextFile: %v", err)
	}

	fromBin, err := LoadFile(binPath)
	if err != nil {
		t.Fatalf("LoadFile cframe: %v", err)
	}
	if !fromBin.HasColors() {
		t.Fatal("binary form preserves colors")
	}
	fromTxt, err := LoadFile(txtPath)
	if err != nil {
		t.Fatalf("LoadFile txt: %v", err)
	}
	if fromTxt.Text != g.Text {
		t.Fatal("text mismatch after round trip")
	}
}

func TestLoadFileReportsPathOnCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame_0001.cframe")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFile(path)
	if !errors.Is(err, services.ErrCorruptFrame) {
		t.Fatalf("expected corrupt frame error, got %v", err)
	}
	if !strings.Contains(err.Error(), "frame_0001.cframe") {
		t.Fatalf("expected path in error, got %v", err)
	}
}
