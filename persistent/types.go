package persistent

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/outofforest/voxel/types"
)

const (
	// Version is the version of the file format produced by this build.
	Version uint16 = 1

	// HeaderLength is the size of encoded header.
	HeaderLength = 48
)

// Magic identifies volume files.
var Magic = [4]byte{'V', 'O', 'X', 'D'}

// Store keeps one encoded volume image.
type Store interface {
	// Write replaces stored image atomically.
	Write(image []byte) error

	// Read returns stored image. Returned bytes are valid until release is called.
	Read() (image []byte, release func(), err error)
}

// Codec defines how node table is encoded inside the image.
type Codec uint8

// Supported codecs.
const (
	CodecNone Codec = iota
	CodecZstd
)

var codecNames = map[Codec]string{
	CodecNone: "none",
	CodecZstd: "zstd",
}

// Valid returns true if codec is supported.
func (c Codec) Valid() bool {
	_, exists := codecNames[c]
	return exists
}

func (c Codec) String() string {
	if name, exists := codecNames[c]; exists {
		return name
	}
	return "unknown"
}

// ParseCodec returns codec of the given name.
func ParseCodec(name string) (Codec, error) {
	codec, exists := lo.FindKey(codecNames, name)
	if !exists {
		return 0, errors.Errorf("unknown codec %q, supported: %v", name, lo.Values(codecNames))
	}
	return codec, nil
}

// Header is stored at the beginning of the image.
type Header struct {
	Magic        [4]byte
	Version      uint16
	MaterialBits uint8
	UnitDepth    uint8
	EdgeLength   uint32
	Codec        Codec
	_            [3]byte
	Origin       types.Vector
	Root         types.NodeIndex
	NodeCount    uint64
	BodySize     uint64
}

// Record tags of the node table.
const (
	tagLeaf   byte = 1
	tagBranch byte = 2

	leafRecordLength   = 1 + 2
	branchRecordLength = 1 + types.ChildCount*4
)
