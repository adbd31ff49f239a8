// Package hypercube implements layer enumeration over {0,...,w-1}^v for the
// top-level Poseidon message hash: mapping a field-element digest into a
// vertex that lies on a specific digit-sum layer.
package hypercube

import (
	"math/big"
	"sync"
)

// maxDimension bounds the dimension precomputed and cached per base.
const maxDimension = 100

// LayerInfo holds, for a fixed base w and dimension v, the size of every
// layer 0..v*(w-1) and the inclusive prefix sum over those sizes.
//
// Layer d is the set of vertices a in {0,...,w-1}^v whose coordinates sum to
// (w-1)*v - d, so layer 0 holds the single all-(w-1) vertex and layer
// v*(w-1) holds the single all-zero vertex.
type LayerInfo struct {
	Sizes      []*big.Int
	PrefixSums []*big.Int
}

// SizesSumInRange sums Sizes[start..=end], returning zero for an empty or
// inverted range.
func (info *LayerInfo) SizesSumInRange(start, end int) *big.Int {
	if start > end {
		return big.NewInt(0)
	}
	total := info.PrefixSums[end]
	if start == 0 {
		return new(big.Int).Set(total)
	}
	return new(big.Int).Sub(total, info.PrefixSums[start-1])
}

var layerCache = struct {
	sync.RWMutex
	data map[int][]*LayerInfo // base w -> LayerInfo for v = 0..maxDimension
}{data: make(map[int][]*LayerInfo)}

// buildLayerInfo computes LayerInfo for every dimension 0..maxDimension at
// base w by building each dimension's layer sizes from the previous
// dimension's, the same recurrence the reference implementation uses.
func buildLayerInfo(w int) []*LayerInfo {
	all := make([]*LayerInfo, 0, maxDimension+1)

	// v = 0: a single vertex (the empty tuple), trivially in layer 0.
	all = append(all, &LayerInfo{
		Sizes:      []*big.Int{big.NewInt(1)},
		PrefixSums: []*big.Int{big.NewInt(1)},
	})

	// v = 1: layer d holds exactly the coordinate value w-1-d, one vertex each.
	sizes1 := make([]*big.Int, w)
	pref1 := make([]*big.Int, w)
	running := big.NewInt(0)
	for d := 0; d < w; d++ {
		sizes1[d] = big.NewInt(1)
		running = new(big.Int).Add(running, sizes1[d])
		pref1[d] = new(big.Int).Set(running)
	}
	all = append(all, &LayerInfo{Sizes: sizes1, PrefixSums: pref1})

	for v := 2; v <= maxDimension; v++ {
		prev := all[v-1]
		maxD := v * (w - 1)
		maxDPrev := (v - 1) * (w - 1)
		sizes := make([]*big.Int, maxD+1)
		pref := make([]*big.Int, maxD+1)
		running := big.NewInt(0)
		for d := 0; d <= maxD; d++ {
			aStart := max(1, w-d)
			aEnd := min(w, maxDPrev+w-d)
			if aStart > aEnd {
				sizes[d] = big.NewInt(0)
			} else {
				dPrimeStart := d - (w - aStart)
				dPrimeEnd := d - (w - aEnd)
				sizes[d] = prev.SizesSumInRange(dPrimeStart, dPrimeEnd)
			}
			running = new(big.Int).Add(running, sizes[d])
			pref[d] = new(big.Int).Set(running)
		}
		all = append(all, &LayerInfo{Sizes: sizes, PrefixSums: pref})
	}
	return all
}

// GetLayerInfo returns the (cached) LayerInfo for base w, dimension v.
func GetLayerInfo(w, v int) *LayerInfo {
	layerCache.RLock()
	if arr, ok := layerCache.data[w]; ok {
		layerCache.RUnlock()
		return arr[v]
	}
	layerCache.RUnlock()

	layerCache.Lock()
	defer layerCache.Unlock()
	if arr, ok := layerCache.data[w]; ok {
		return arr[v]
	}
	arr := buildLayerInfo(w)
	layerCache.data[w] = arr
	return arr[v]
}

// HypercubePartSize returns the number of vertices lying in layers 0..=d.
func HypercubePartSize(w, v, d int) *big.Int {
	info := GetLayerInfo(w, v)
	return new(big.Int).Set(info.PrefixSums[d])
}

// HypercubeFindLayer locates the layer containing global index x: the
// smallest d with PrefixSums[d] > x, plus x's offset within that layer.
func HypercubeFindLayer(w, v int, x *big.Int) (int, *big.Int) {
	info := GetLayerInfo(w, v)
	lo, hi := 0, len(info.PrefixSums)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if info.PrefixSums[mid].Cmp(x) > 0 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	if lo == 0 {
		return 0, new(big.Int).Set(x)
	}
	rem := new(big.Int).Sub(x, info.PrefixSums[lo-1])
	return lo, rem
}

// MapToVertex maps offset x within layer d of the v-dimensional, base-w
// hypercube to its vertex, a length-v slice of digits in [0,w-1] summing to
// (w-1)*v - d.
func MapToVertex(w, v, d int, x *big.Int) []byte {
	out := make([]byte, v)
	xCurr := new(big.Int).Set(x)
	dCurr := d

	for i := v; i >= 1; i-- {
		if i == 1 {
			out[v-1] = byte(w - 1 - dCurr)
			break
		}
		maxDPrev := (i - 1) * (w - 1)
		aStart := max(1, w-dCurr)
		aEnd := min(w, maxDPrev+w-dCurr)
		prev := GetLayerInfo(w, i-1)

		found := -1
		for a := aEnd; a >= aStart; a-- {
			dPrime := dCurr - (w - a)
			sz := prev.Sizes[dPrime]
			if xCurr.Cmp(sz) < 0 {
				found = a
				break
			}
			xCurr.Sub(xCurr, sz)
		}
		if found == -1 {
			panic("hypercube: offset out of range for layer")
		}
		out[v-i] = byte(found - 1)
		dCurr -= w - found
	}

	return out
}

// MapToInteger is the inverse of MapToVertex: given a vertex a on layer d,
// recover its offset within that layer.
func MapToInteger(w, v, d int, a []byte) *big.Int {
	xCurr := big.NewInt(0)
	dCurr := 0

	for i := v - 1; i >= 0; i-- {
		ji := (w - 1) - int(a[i])
		dCurr += ji
		jStart := max(0, dCurr-(w-1)*(v-i-1))
		info := GetLayerInfo(w, v-i-1)
		xCurr.Add(xCurr, info.SizesSumInRange(dCurr-ji+1, dCurr-jStart))
	}

	return xCurr
}
