package entropy

import (
	"container/heap"
	"sort"
)

// MaxCodeLength caps Huffman code lengths so they serialize through
// Write17, whose range ends at 16.
const MaxCodeLength = 15

// treeNode is a leaf or internal node used while building a Huffman
// tree from symbol frequencies.
type treeNode struct {
	totalCount uint32
	value      int // symbol index for leaves, -1 for internal nodes
	left       int // pool index, -1 for none
	right      int
}

type nodeHeap struct {
	pool    []treeNode
	indices []int
}

func (h *nodeHeap) Len() int { return len(h.indices) }

func (h *nodeHeap) Less(i, j int) bool {
	a, b := h.pool[h.indices[i]], h.pool[h.indices[j]]
	if a.totalCount != b.totalCount {
		return a.totalCount < b.totalCount
	}
	return h.indices[i] < h.indices[j]
}

func (h *nodeHeap) Swap(i, j int) {
	h.indices[i], h.indices[j] = h.indices[j], h.indices[i]
}

func (h *nodeHeap) Push(x any) {
	h.indices = append(h.indices, x.(int))
}

func (h *nodeHeap) Pop() any {
	old := h.indices
	n := len(old)
	idx := old[n-1]
	h.indices = old[:n-1]
	return idx
}

// buildCodeLengths fills lengths with a depth-limited Huffman code for
// the histogram. When the unconstrained tree exceeds MaxCodeLength the
// counts are halved and the tree rebuilt, which converges quickly.
func buildCodeLengths(hist []uint32, lengths []uint8) {
	for i := range lengths {
		lengths[i] = 0
	}

	var nonZero []int
	for i, c := range hist {
		if c > 0 {
			nonZero = append(nonZero, i)
		}
	}
	switch len(nonZero) {
	case 0:
		return
	case 1:
		lengths[nonZero[0]] = 1
		return
	case 2:
		lengths[nonZero[0]] = 1
		lengths[nonZero[1]] = 1
		return
	}

	counts := make([]uint32, len(nonZero))
	for i, sym := range nonZero {
		counts[i] = hist[sym]
	}

	for {
		depths := buildTreeDepths(counts)
		maxDepth := 0
		for _, d := range depths {
			if d > maxDepth {
				maxDepth = d
			}
		}
		if maxDepth <= MaxCodeLength {
			for i, sym := range nonZero {
				lengths[sym] = uint8(depths[i])
			}
			return
		}
		for i := range counts {
			counts[i] = (counts[i] + 1) / 2
		}
	}
}

// buildTreeDepths runs the heap-based tree construction and returns
// the leaf depths.
func buildTreeDepths(counts []uint32) []int {
	n := len(counts)
	pool := make([]treeNode, 0, 2*n)
	for i, c := range counts {
		pool = append(pool, treeNode{totalCount: c, value: i, left: -1, right: -1})
	}
	h := &nodeHeap{pool: pool}
	for i := range pool {
		h.indices = append(h.indices, i)
	}
	heap.Init(h)
	for h.Len() > 1 {
		a := heap.Pop(h).(int)
		b := heap.Pop(h).(int)
		h.pool = append(h.pool, treeNode{
			totalCount: h.pool[a].totalCount + h.pool[b].totalCount,
			value:      -1,
			left:       a,
			right:      b,
		})
		heap.Push(h, len(h.pool)-1)
	}
	root := h.indices[0]
	depths := make([]int, n)
	// Iterative depth-first walk recording leaf depths.
	type frame struct{ node, depth int }
	stack := []frame{{root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := h.pool[f.node]
		if node.value >= 0 {
			depths[node.value] = f.depth
			continue
		}
		stack = append(stack, frame{node.left, f.depth + 1}, frame{node.right, f.depth + 1})
	}
	return depths
}

// canonicalCodes assigns canonical codewords from code lengths:
// symbols sorted by (length, index) receive consecutive codes, shorter
// lengths first. Codes are emitted MSB-first.
func canonicalCodes(lengths []uint8, codes []uint16) {
	type symLen struct {
		sym int
		len uint8
	}
	var syms []symLen
	for i, l := range lengths {
		if l > 0 {
			syms = append(syms, symLen{i, l})
		}
	}
	sort.Slice(syms, func(a, b int) bool {
		if syms[a].len != syms[b].len {
			return syms[a].len < syms[b].len
		}
		return syms[a].sym < syms[b].sym
	})
	code := uint16(0)
	prevLen := uint8(0)
	for _, s := range syms {
		code <<= uint(s.len - prevLen)
		codes[s.sym] = code
		code++
		prevLen = s.len
	}
}
