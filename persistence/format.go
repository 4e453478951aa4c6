package persistence

import "errors"

const (
	// MagicNumber identifies subvec snapshot files (ASCII: "SVC0")
	MagicNumber = 0x53564330

	// VersionLegacy is the packed-bucket format written by older tooling.
	// Readable, never written.
	VersionLegacy = 1
	// VersionCurrent is the format written by SaveSnapshot.
	VersionCurrent = 2
)

// Compression selects the payload codec applied after the fixed header.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionLZ4  Compression = 1
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidMagic       = errors.New("invalid magic number")
	ErrInvalidVersion     = errors.New("unsupported version")
	ErrInvalidCompression = errors.New("unsupported compression")
)

// FileHeader is the 8-byte header at the start of every snapshot file.
// Everything after it is payload under the declared compression.
type FileHeader struct {
	Magic       uint32
	Version     uint16
	Compression uint8
	Reserved    uint8
}
