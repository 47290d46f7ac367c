package savecrypt

import "encoding/binary"

// Byte offsets within the decrypted block.
const (
	checksumOffset = 6 // 16-bit checksum, after pid and the unused word
	dataOffset     = 8 // start of the 64 data words
)

// Record wraps a decrypted save block. It is constructed once from raw bytes
// and is immutable afterwards; every accessor and transformation returns new
// data, never a view into shared state.
type Record struct {
	blob []byte
}

// FromPlain wraps an already-decrypted block.
func FromPlain(blob []byte) (*Record, error) {
	if _, _, err := unpack(blob); err != nil {
		return nil, err
	}
	r := &Record{blob: make([]byte, len(blob))}
	copy(r.blob, blob)
	return r, nil
}

// FromEncrypted decrypts an on-disk block and wraps the result. The blob must
// be decrypted exactly once; feeding an already-plain block here scrambles it.
func FromEncrypted(blob []byte) (*Record, error) {
	plain, err := Decrypt(blob)
	if err != nil {
		return nil, err
	}
	return &Record{blob: plain}, nil
}

// Bytes returns a copy of the decrypted block, aka the .pkm layout.
func (r *Record) Bytes() []byte {
	out := make([]byte, len(r.blob))
	copy(out, r.blob)
	return out
}

// Encrypted returns the block in the encrypted form the game expects in a
// save file.
func (r *Record) Encrypted() []byte {
	// The blob was validated at construction, so Encrypt cannot fail.
	enc, err := Encrypt(r.blob)
	if err != nil {
		panic("savecrypt: validated record failed to encrypt: " + err.Error())
	}
	return enc
}

// PID returns the personality value.
func (r *Record) PID() uint32 {
	return binary.LittleEndian.Uint32(r.blob)
}

// Checksum returns the checksum word as stored in the block.
func (r *Record) Checksum() uint16 {
	return binary.LittleEndian.Uint16(r.blob[checksumOffset:])
}

// ShuffleIndex returns the chunk ordering this record's pid selects.
func (r *Record) ShuffleIndex() int {
	return ShuffleIndex(r.PID())
}

// ComputeChecksum sums the 64 data words, truncated to 16 bits. Extra words
// past the payload do not participate.
func (r *Record) ComputeChecksum() uint16 {
	var sum uint16
	for i := 0; i < dataWords; i++ {
		sum += binary.LittleEndian.Uint16(r.blob[dataOffset+2*i:])
	}
	return sum
}

// VerifyChecksum reports whether the stored checksum matches the data words.
func (r *Record) VerifyChecksum() bool {
	return r.Checksum() == r.ComputeChecksum()
}

// WithChecksum returns a copy of the record with the checksum word rewritten
// to match the data words.
func (r *Record) WithChecksum() *Record {
	out := &Record{blob: r.Bytes()}
	binary.LittleEndian.PutUint16(out.blob[checksumOffset:], r.ComputeChecksum())
	return out
}
