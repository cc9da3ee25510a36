package ga

import (
	"encoding/binary"
	"hash/crc32"
	"math"

	"github.com/Parmeggiani-Lab/elfin/chain"
)

// Checksum is a content hash of a chromosome's realised shape: a CRC-32
// cascaded over the concatenated bytes of every gene's CoM, seeded at
// 0xffff rather than the conventional all-ones seed (matching the
// original checksumCascade() convention). Two chromosomes share a
// checksum, modulo collision, iff they synthesise to identical chains;
// it is used purely for survivor-set deduplication, never as a fitness
// signal.
func Checksum(genes chain.Sequence) uint32 {
	crc := uint32(0xffff)
	var buf [24]byte
	for _, g := range genes {
		binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(g.CoM.X))
		binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(g.CoM.Y))
		binary.LittleEndian.PutUint64(buf[16:24], math.Float64bits(g.CoM.Z))
		crc = crc32.Update(crc, crc32.IEEETable, buf[:])
	}
	return crc
}
