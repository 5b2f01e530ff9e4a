// Package chaos derives per-channel entropy-coding contexts from the
// magnitudes of neighboring residuals.
//
// The context ("chaos bin") of a pixel depends only on the residuals at
// (x-1, y) and (x, y-1), so an encoder and decoder that call Store/Zero
// on the same pixel sequence compute identical bins.
package chaos

// MaxLevels is the largest supported number of chaos bins per channel.
const MaxLevels = 16

// Channels tracked per pixel: Y, U, V and alpha.
const channels = 4

// score folds a mod-256 residual byte to its magnitude (0..128).
var score [256]uint16

// binTable maps a summed neighbor magnitude (0..256) to a bin for each
// level count. binTable[levels][sum].
var binTable [MaxLevels + 1][257]uint8

func init() {
	for i := 0; i < 256; i++ {
		if i < 128 {
			score[i] = uint16(i)
		} else {
			score[i] = uint16(256 - i)
		}
	}
	for levels := 1; levels <= MaxLevels; levels++ {
		for sum := 0; sum <= 256; sum++ {
			// Bin by the bit width of the sum, capped at levels-1.
			bin := 0
			for v := sum; v > 0; v >>= 1 {
				bin++
			}
			if bin > levels-1 {
				bin = levels - 1
			}
			binTable[levels][sum] = uint8(bin)
		}
	}
}

// State is the per-image chaos context: one row of previous-row
// residual magnitudes per channel plus the running left neighbor.
type State struct {
	levels int
	width  int
	row    []uint16 // previous-row magnitudes, channels per x
	left   [channels]uint16
}

// New creates chaos state for the given level count and row width.
// levels must be in [1, MaxLevels].
func New(levels, width int) *State {
	return &State{
		levels: levels,
		width:  width,
		row:    make([]uint16, width*channels),
	}
}

// Levels returns the configured bin count.
func (s *State) Levels() int {
	return s.levels
}

// Start clears the full row buffer for a new image pass.
func (s *State) Start() {
	for i := range s.row {
		s.row[i] = 0
	}
	s.left = [channels]uint16{}
}

// StartRow resets the left-neighbor state at the start of each row.
func (s *State) StartRow() {
	s.left = [channels]uint16{}
}

// bin returns the context for channel ch at column x.
func (s *State) bin(ch, x int) uint8 {
	sum := s.left[ch] + s.row[x*channels+ch]
	return binTable[s.levels][sum]
}

// BinY returns the Y-channel context at column x.
func (s *State) BinY(x int) uint8 { return s.bin(0, x) }

// BinU returns the U-channel context at column x.
func (s *State) BinU(x int) uint8 { return s.bin(1, x) }

// BinV returns the V-channel context at column x.
func (s *State) BinV(x int) uint8 { return s.bin(2, x) }

// BinA returns the alpha-channel context at column x.
func (s *State) BinA(x int) uint8 { return s.bin(3, x) }

// Store records the residuals emitted at column x, updating the left
// neighbor and the row buffer for the next row.
func (s *State) Store(x int, y, u, v, a uint8) {
	vals := [channels]uint16{score[y], score[u], score[v], score[a]}
	for ch := 0; ch < channels; ch++ {
		s.left[ch] = vals[ch]
		s.row[x*channels+ch] = vals[ch]
	}
}

// Zero records a masked pixel at column x so its neighbors present
// deterministic context on both encode and decode.
func (s *State) Zero(x int) {
	s.left = [channels]uint16{}
	for ch := 0; ch < channels; ch++ {
		s.row[x*channels+ch] = 0
	}
}
