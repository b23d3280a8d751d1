package substructure

import (
	"encoding/binary"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"
)

// keySet is the set of target vertices or edges touched by a mapping.
type keySet = *roaring.Bitmap

func vertexKey(mapping []int) keySet {
	bm := roaring.New()
	for _, t := range mapping {
		bm.Add(uint32(t))
	}
	return bm
}

func edgeKey(query, target Graph, mapping []int) keySet {
	bm := roaring.New()
	for e := 0; e < query.EdgeCount(); e++ {
		a, b := query.Endpoints(e)
		if te := target.EdgeBetween(mapping[a], mapping[b]); te >= 0 {
			bm.Add(uint32(te))
		}
	}
	return bm
}

// uniqueSet remembers key sets.  Sets are bucketed by an xxhash of their
// sorted members and compared by bitmap equality inside a bucket.
type uniqueSet struct {
	buckets map[uint64][]keySet
	digest  *xxhash.Digest
	word    [4]byte
}

func newUniqueSet() *uniqueSet {
	return &uniqueSet{buckets: make(map[uint64][]keySet), digest: xxhash.New()}
}

// add records k and reports whether it was new.
func (u *uniqueSet) add(k keySet) bool {
	h := u.hash(k)
	for _, seen := range u.buckets[h] {
		if seen.Equals(k) {
			return false
		}
	}
	u.buckets[h] = append(u.buckets[h], k)
	return true
}

func (u *uniqueSet) hash(k keySet) uint64 {
	u.digest.Reset()
	it := k.Iterator()
	for it.HasNext() {
		binary.LittleEndian.PutUint32(u.word[:], it.Next())
		_, _ = u.digest.Write(u.word[:])
	}
	return u.digest.Sum64()
}
