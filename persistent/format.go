package persistent

import (
	"math"
	"math/bits"

	"github.com/klauspost/compress/zstd"
	"github.com/outofforest/photon"
	"github.com/pkg/errors"

	"github.com/outofforest/voxel/checksum"
	"github.com/outofforest/voxel/types"
)

// Encode produces image of the node table. Children must precede their parents in nodes.
// Magic, version, material bits, node count and body size are set by the function.
func Encode(header Header, nodes []types.Node) ([]byte, error) {
	if len(nodes) == 0 {
		return nil, errors.New("node table is empty")
	}
	if uint64(len(nodes)) > math.MaxUint32 {
		return nil, errors.Errorf("node table is too large: %d", len(nodes))
	}
	if uint64(header.Root) >= uint64(len(nodes)) {
		return nil, errors.Errorf("root index %d out of range", header.Root)
	}

	body := make([]byte, 0, len(nodes)*leafRecordLength)
	for i, node := range nodes {
		switch node.State {
		case types.StateLeaf:
			material := node.Material
			body = append(body, tagLeaf)
			body = append(body, photon.NewFromValue(&material).B...)
		case types.StateBranch:
			children := node.Children
			for _, child := range children {
				if int(child) >= i {
					return nil, errors.Errorf("node %d references node %d placed after it", i, child)
				}
			}
			body = append(body, tagBranch)
			body = append(body, photon.NewFromValue(&children).B...)
		default:
			return nil, errors.Errorf("node %d has invalid state %d", i, node.State)
		}
	}

	switch header.Codec {
	case CodecNone:
	case CodecZstd:
		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return nil, errors.WithStack(err)
		}
		body = encoder.EncodeAll(body, nil)
		if err := encoder.Close(); err != nil {
			return nil, errors.WithStack(err)
		}
	default:
		return nil, errors.Errorf("unknown codec %d", header.Codec)
	}

	header.Magic = Magic
	header.Version = Version
	header.MaterialBits = types.MaterialBits
	header.NodeCount = uint64(len(nodes))
	header.BodySize = uint64(len(body))

	image := make([]byte, 0, HeaderLength+len(body)+types.ChecksumLength)
	image = append(image, photon.NewFromValue(&header).B...)
	image = append(image, body...)
	sum := checksum.Sum(image)
	return append(image, sum[:]...), nil
}

// Decode validates the image and returns its header and node table.
// Every validation failure is reported as types.ErrCorruptData.
func Decode(image []byte) (Header, []types.Node, error) {
	var header Header
	if len(image) < HeaderLength+types.ChecksumLength {
		return header, nil, errors.Wrapf(types.ErrCorruptData, "image is too short: %d bytes", len(image))
	}

	// Header is copied, so the image doesn't need to be aligned.
	copy(photon.NewFromValue(&header).B, image[:HeaderLength])
	if err := validateHeader(header, uint64(len(image))); err != nil {
		return header, nil, err
	}

	sumOffset := len(image) - types.ChecksumLength
	if !checksum.Verify(image[:sumOffset], image[sumOffset:]) {
		return header, nil, errors.Wrap(types.ErrCorruptData, "checksum mismatch")
	}

	body := image[HeaderLength:sumOffset]
	if header.Codec == CodecZstd {
		// Decoder requires the limit to cover the minimal window even if the table is smaller.
		maxSize := max(header.NodeCount*branchRecordLength, zstd.MinWindowSize)
		decoder, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxSize), zstd.WithDecoderConcurrency(1))
		if err != nil {
			return header, nil, errors.WithStack(err)
		}
		defer decoder.Close()

		body, err = decoder.DecodeAll(body, make([]byte, 0, header.NodeCount*leafRecordLength))
		if err != nil {
			return header, nil, errors.Wrapf(types.ErrCorruptData, "decompressing node table failed: %s", err)
		}
	}

	nodes, err := decodeNodes(body, header.NodeCount)
	if err != nil {
		return header, nil, err
	}
	return header, nodes, nil
}

func validateHeader(header Header, imageSize uint64) error {
	switch {
	case header.Magic != Magic:
		return errors.Wrapf(types.ErrCorruptData, "invalid magic %q", header.Magic[:])
	case header.Version != Version:
		return errors.Wrapf(types.ErrCorruptData, "unsupported version %d, expected %d", header.Version, Version)
	case header.MaterialBits != types.MaterialBits:
		return errors.Wrapf(types.ErrCorruptData, "material width is %d bits, expected %d",
			header.MaterialBits, types.MaterialBits)
	case bits.OnesCount32(header.EdgeLength) != 1:
		return errors.Wrapf(types.ErrCorruptData, "edge length %d is not a power of two", header.EdgeLength)
	case header.UnitDepth > types.MaxUnitDepth || header.EdgeLength != 1<<header.UnitDepth:
		return errors.Wrapf(types.ErrCorruptData, "unit depth %d doesn't match edge length %d",
			header.UnitDepth, header.EdgeLength)
	case int64(header.Origin.X)+int64(header.EdgeLength) > math.MaxInt32+1,
		int64(header.Origin.Y)+int64(header.EdgeLength) > math.MaxInt32+1,
		int64(header.Origin.Z)+int64(header.EdgeLength) > math.MaxInt32+1:
		return errors.Wrapf(types.ErrCorruptData, "region at %v doesn't fit coordinate space", header.Origin)
	case !header.Codec.Valid():
		return errors.Wrapf(types.ErrCorruptData, "unknown codec %d", header.Codec)
	case header.NodeCount == 0 || header.NodeCount > math.MaxUint32:
		return errors.Wrapf(types.ErrCorruptData, "invalid node count %d", header.NodeCount)
	case uint64(header.Root) >= header.NodeCount:
		return errors.Wrapf(types.ErrCorruptData, "root index %d out of range, %d nodes", header.Root, header.NodeCount)
	case header.BodySize != imageSize-HeaderLength-types.ChecksumLength:
		return errors.Wrapf(types.ErrCorruptData, "node table size is %d, %d bytes are present",
			header.BodySize, imageSize-HeaderLength-types.ChecksumLength)
	case header.Codec == CodecNone && header.BodySize < header.NodeCount*leafRecordLength:
		return errors.Wrapf(types.ErrCorruptData, "node table of %d bytes can't store %d nodes",
			header.BodySize, header.NodeCount)
	}
	return nil
}

func decodeNodes(body []byte, count uint64) ([]types.Node, error) {
	nodes := make([]types.Node, 0, min(count, uint64(len(body)/leafRecordLength)))
	for offset := 0; offset < len(body); {
		i := uint64(len(nodes))
		if i == count {
			return nil, errors.Wrapf(types.ErrCorruptData, "%d unexpected bytes after node table", len(body)-offset)
		}

		switch body[offset] {
		case tagLeaf:
			if len(body)-offset < leafRecordLength {
				return nil, errors.Wrapf(types.ErrCorruptData, "record of node %d is truncated", i)
			}
			var material types.MaterialID
			copy(photon.NewFromValue(&material).B, body[offset+1:offset+leafRecordLength])
			nodes = append(nodes, types.Leaf(material))
			offset += leafRecordLength
		case tagBranch:
			if len(body)-offset < branchRecordLength {
				return nil, errors.Wrapf(types.ErrCorruptData, "record of node %d is truncated", i)
			}
			var children [types.ChildCount]types.NodeIndex
			copy(photon.NewFromValue(&children).B, body[offset+1:offset+branchRecordLength])
			for _, child := range children {
				if uint64(child) >= i {
					return nil, errors.Wrapf(types.ErrCorruptData, "node %d references node %d placed after it", i, child)
				}
			}
			nodes = append(nodes, types.Branch(children))
			offset += branchRecordLength
		default:
			return nil, errors.Wrapf(types.ErrCorruptData, "node %d has unknown tag %d", i, body[offset])
		}
	}

	if uint64(len(nodes)) != count {
		return nil, errors.Wrapf(types.ErrCorruptData, "node table contains %d nodes, %d expected", len(nodes), count)
	}
	return nodes, nil
}
