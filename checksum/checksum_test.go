package checksum

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
	blake3luke "lukechampine.com/blake3"
)

func randData(size uint) []byte {
	data := make([]byte, size)
	if _, err := rand.Read(data); err != nil {
		panic(err)
	}
	return data
}

func TestChecksumMatchesReferenceImplementation(t *testing.T) {
	requireT := require.New(t)

	for _, size := range []uint{0, 1, 63, 64, 65, 1024, 4096, 100_000} {
		data := randData(size)
		requireT.Equal(blake3luke.Sum256(data), Sum(data))
	}
}

func TestVerify(t *testing.T) {
	requireT := require.New(t)

	data := randData(4096)
	sum := Sum(data)
	requireT.True(Verify(data, sum[:]))
	requireT.False(Verify(data, sum[:10]))

	data[100] ^= 0x01
	requireT.False(Verify(data, sum[:]))
}

// go test -bench=. -run=^$

func BenchmarkChecksum4K(b *testing.B) {
	data := randData(4096)
	b.ResetTimer()
	for range b.N {
		Sum(data)
	}
}
