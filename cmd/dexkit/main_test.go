package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/mossdeep/dexkit/core/savecrypt"
	"github.com/mossdeep/dexkit/core/sqlite"
	"github.com/mossdeep/dexkit/internal/blobio"
)

// writePlainBlock writes a minimal well-formed decrypted block to path.
func writePlainBlock(t *testing.T, path string, pid uint32) []byte {
	t.Helper()
	blob := make([]byte, savecrypt.MinBlockSize)
	binary.LittleEndian.PutUint32(blob, pid)
	var sum uint16
	for i := 0; i < 64; i++ {
		w := uint16(i * 7)
		binary.LittleEndian.PutUint16(blob[8+2*i:], w)
		sum += w
	}
	binary.LittleEndian.PutUint16(blob[6:], sum)
	if err := os.WriteFile(path, blob, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return blob
}

func TestSaveEncodeDecodeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	plainPath := filepath.Join(dir, "block.pkm")
	encPath := filepath.Join(dir, "block.enc")
	backPath := filepath.Join(dir, "block.back.pkm")
	blob := writePlainBlock(t, plainPath, 0x35C87A91)

	enc := SaveEncodeCmd{In: plainPath, Out: encPath}
	if err := enc.Run(); err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec := SaveDecodeCmd{In: encPath, Out: backPath}
	if err := dec.Run(); err != nil {
		t.Fatalf("decode: %v", err)
	}

	back, err := os.ReadFile(backPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(back, blob) {
		t.Error("encode/decode round trip did not restore the block")
	}
}

func TestSaveInfoCmd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "block.pkm")
	writePlainBlock(t, path, 1)

	cmd := SaveInfoCmd{In: path}
	if err := cmd.Run(); err != nil {
		t.Fatalf("info: %v", err)
	}

	// Malformed input surfaces an error rather than partial output.
	badPath := filepath.Join(dir, "short.pkm")
	if err := os.WriteFile(badPath, []byte{1, 2, 3}, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	bad := SaveInfoCmd{In: badPath}
	if err := bad.Run(); err == nil {
		t.Error("info should fail on a malformed block")
	}
}

func TestFuriganaFileCmd(t *testing.T) {
	dir := t.TempDir()
	kanjiPath := filepath.Join(dir, "kanji.txt")
	kanaPath := filepath.Join(dir, "kana.txt.xz") // mixed compression is fine
	outPath := filepath.Join(dir, "merged.txt")

	if err := blobio.WriteFile(kanjiPath, []byte("日本語\nポケモン\n")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := blobio.WriteFile(kanaPath, []byte("にほんご\nポケモン\n")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cmd := FuriganaFileCmd{KanjiFile: kanjiPath, KanaFile: kanaPath, Out: outPath}
	if err := cmd.Run(); err != nil {
		t.Fatalf("merge: %v", err)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "￹日本語￺にほんご￻\nポケモン\n"
	if string(got) != want {
		t.Errorf("merged output = %q, want %q", got, want)
	}
}

func TestFuriganaFileCmdLineCountMismatch(t *testing.T) {
	dir := t.TempDir()
	kanjiPath := filepath.Join(dir, "kanji.txt")
	kanaPath := filepath.Join(dir, "kana.txt")
	if err := os.WriteFile(kanjiPath, []byte("一\n二\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(kanaPath, []byte("いち\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cmd := FuriganaFileCmd{KanjiFile: kanjiPath, KanaFile: kanaPath}
	if err := cmd.Run(); err == nil {
		t.Error("mismatched line counts should fail")
	}
}

func TestDBLoadCmd(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "species.sql")
	dbPath := filepath.Join(dir, "dex.db")

	script := "CREATE TABLE species (id INTEGER PRIMARY KEY, name TEXT);\n" +
		"INSERT INTO species VALUES (143, 'snorlax');\n"
	if err := os.WriteFile(scriptPath, []byte(script), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cmd := DBLoadCmd{Script: scriptPath, Db: dbPath}
	if err := cmd.Run(); err != nil {
		t.Fatalf("load: %v", err)
	}

	db, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	var name string
	if err := db.QueryRow("SELECT name FROM species WHERE id = 143").Scan(&name); err != nil {
		t.Fatalf("SELECT: %v", err)
	}
	if name != "snorlax" {
		t.Errorf("name = %q, want snorlax", name)
	}
}

func TestVersionCmd(t *testing.T) {
	cmd := VersionCmd{}
	if err := cmd.Run(); err != nil {
		t.Fatalf("version: %v", err)
	}
}
