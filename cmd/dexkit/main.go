// Command dexkit is the CLI tool for the Pokémon reference-data toolkit.
// It provides commands for merging furigana text dumps, decoding save
// blocks, and loading generated SQL into a reference database.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/mossdeep/dexkit/core/errors"
	"github.com/mossdeep/dexkit/core/furigana"
	"github.com/mossdeep/dexkit/core/savecrypt"
	"github.com/mossdeep/dexkit/core/sqlite"
	"github.com/mossdeep/dexkit/internal/blobio"
	"github.com/mossdeep/dexkit/internal/loader"
	"github.com/mossdeep/dexkit/internal/logging"
)

const version = "0.2.0"

// CLI defines the command-line interface for dexkit.
var CLI struct {
	// Global flags
	LogLevel string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info" enum:"debug,info,warn,error"`
	LogJSON  bool   `name:"log-json" help:"Emit logs as JSON"`

	Furigana FuriganaGroup `cmd:"" help:"Furigana merging for parallel kanji/kana dumps"`
	Save     SaveGroup     `cmd:"" help:"Save block encode/decode operations"`
	DB       DBGroup       `cmd:"" help:"Reference database operations"`
	Version  VersionCmd    `cmd:"" help:"Print version information"`
}

// FuriganaGroup contains text alignment operations.
type FuriganaGroup struct {
	Merge FuriganaMergeCmd `cmd:"" help:"Merge one kanji/kana string pair"`
	File  FuriganaFileCmd  `cmd:"" help:"Merge two line-parallel text dump files"`
}

// SaveGroup contains save block operations.
type SaveGroup struct {
	Decode SaveDecodeCmd `cmd:"" help:"Decrypt and unshuffle an encrypted save block"`
	Encode SaveEncodeCmd `cmd:"" help:"Shuffle and encrypt a plain save block"`
	Info   SaveInfoCmd   `cmd:"" help:"Show pid, checksum and shuffle order of a block"`
}

// DBGroup contains database operations.
type DBGroup struct {
	Load DBLoadCmd `cmd:"" help:"Execute a generated SQL script against a SQLite database"`
}

// FuriganaMergeCmd merges a single pair of strings.
type FuriganaMergeCmd struct {
	Kanji string `arg:"" help:"Kanji rendering of the text"`
	Kana  string `arg:"" help:"Kana rendering of the same text"`
	HTML  bool   `help:"Emit HTML ruby markup instead of interlinear annotation characters"`
}

func (c *FuriganaMergeCmd) Run() error {
	fmt.Println(furigana.Merge(c.Kanji, c.Kana, c.HTML))
	return nil
}

// FuriganaFileCmd merges two line-parallel dump files.
type FuriganaFileCmd struct {
	KanjiFile string `arg:"" help:"Path to the kanji dump (xz-compressed accepted)" type:"existingfile"`
	KanaFile  string `arg:"" help:"Path to the kana dump (xz-compressed accepted)" type:"existingfile"`
	HTML      bool   `help:"Emit HTML ruby markup"`
	Out       string `help:"Output path (default: stdout)" type:"path"`
}

func (c *FuriganaFileCmd) Run() error {
	kanjiLines, err := readLines(c.KanjiFile)
	if err != nil {
		return err
	}
	kanaLines, err := readLines(c.KanaFile)
	if err != nil {
		return err
	}
	if len(kanjiLines) != len(kanaLines) {
		return errors.NewValidation("dumps",
			fmt.Sprintf("line counts differ: %d kanji vs %d kana", len(kanjiLines), len(kanaLines)))
	}

	var sb strings.Builder
	for i := range kanjiLines {
		sb.WriteString(furigana.Merge(kanjiLines[i], kanaLines[i], c.HTML))
		sb.WriteByte('\n')
	}

	if c.Out == "" {
		fmt.Print(sb.String())
		return nil
	}
	if err := blobio.WriteFile(c.Out, []byte(sb.String())); err != nil {
		return err
	}
	fmt.Printf("Merged %d lines into %s\n", len(kanjiLines), c.Out)
	return nil
}

// readLines reads a text dump and splits it into lines, dropping a single
// trailing empty line left by a final newline.
func readLines(path string) ([]string, error) {
	data, err := blobio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(data), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

// SaveDecodeCmd decrypts an on-disk save block.
type SaveDecodeCmd struct {
	In  string `arg:"" help:"Encrypted block (xz-compressed accepted)" type:"existingfile"`
	Out string `arg:"" help:"Output path for the decrypted block" type:"path"`
}

func (c *SaveDecodeCmd) Run() error {
	blob, hash, err := blobio.HashFile(c.In)
	if err != nil {
		return err
	}
	logging.ArtifactIngest(c.In, hash, len(blob))

	plain, err := savecrypt.Decrypt(blob)
	if err != nil {
		return err
	}
	if err := blobio.WriteFile(c.Out, plain); err != nil {
		return err
	}
	fmt.Printf("Decoded %s (%d bytes) -> %s\n", c.In, len(plain), c.Out)
	return nil
}

// SaveEncodeCmd encrypts a plain save block.
type SaveEncodeCmd struct {
	In  string `arg:"" help:"Decrypted block (xz-compressed accepted)" type:"existingfile"`
	Out string `arg:"" help:"Output path for the encrypted block" type:"path"`
}

func (c *SaveEncodeCmd) Run() error {
	blob, hash, err := blobio.HashFile(c.In)
	if err != nil {
		return err
	}
	logging.ArtifactIngest(c.In, hash, len(blob))

	enc, err := savecrypt.Encrypt(blob)
	if err != nil {
		return err
	}
	if err := blobio.WriteFile(c.Out, enc); err != nil {
		return err
	}
	fmt.Printf("Encoded %s (%d bytes) -> %s\n", c.In, len(enc), c.Out)
	return nil
}

// SaveInfoCmd inspects a save block.
type SaveInfoCmd struct {
	In        string `arg:"" help:"Save block (xz-compressed accepted)" type:"existingfile"`
	Encrypted bool   `help:"Treat the input as encrypted and decode it first"`
}

func (c *SaveInfoCmd) Run() error {
	blob, err := blobio.ReadFile(c.In)
	if err != nil {
		return err
	}

	var rec *savecrypt.Record
	if c.Encrypted {
		rec, err = savecrypt.FromEncrypted(blob)
	} else {
		rec, err = savecrypt.FromPlain(blob)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Block: %s\n", c.In)
	fmt.Printf("  Size: %d bytes\n", len(blob))
	fmt.Printf("  PID: 0x%08X\n", rec.PID())
	fmt.Printf("  Shuffle index: %d\n", rec.ShuffleIndex())
	fmt.Printf("  Checksum: 0x%04X (stored), 0x%04X (computed)\n", rec.Checksum(), rec.ComputeChecksum())
	if rec.VerifyChecksum() {
		fmt.Println("  Checksum: OK")
	} else {
		fmt.Println("  Checksum: MISMATCH")
	}
	return nil
}

// DBLoadCmd loads a SQL script into a SQLite database.
type DBLoadCmd struct {
	Script string `arg:"" help:"Generated SQL script (xz-compressed accepted)" type:"existingfile"`
	Db     string `name:"db" required:"" help:"SQLite database path" type:"path"`
}

func (c *DBLoadCmd) Run() error {
	script, hash, err := blobio.HashFile(c.Script)
	if err != nil {
		return err
	}
	logging.ArtifactIngest(c.Script, hash, len(script))

	db, err := sqlite.Open(c.Db)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer db.Close()

	res, err := loader.New(db).Load(context.Background(), script, c.Script)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %s into %s\n", c.Script, c.Db)
	fmt.Printf("  Run ID: %s\n", res.RunID)
	fmt.Printf("  Statements: %d\n", res.Statements)
	fmt.Printf("  BLAKE3: %s\n", res.ScriptHash)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("dexkit %s (sqlite driver: %s)\n", version, sqlite.DriverType())
	return nil
}

func initLogging() {
	level := logging.LevelInfo
	switch CLI.LogLevel {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	format := logging.FormatText
	if CLI.LogJSON {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("dexkit"),
		kong.Description("Pokémon reference-data toolkit"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	initLogging()
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
