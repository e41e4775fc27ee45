package value

// Raw is one foreign runtime word: an immediate when the low bit is set,
// otherwise the address of a heap block.
type Raw uint64

const (
	Unit      Raw = 1
	False     Raw = 1
	True      Raw = 3
	None      Raw = 1
	EmptyList Raw = 1
)

// Block tags.
const (
	TagCons    uint8 = 0
	TagSome    uint8 = 0
	TagTuple   uint8 = 0
	TagOk      uint8 = 0
	TagError   uint8 = 1
	TagClosure uint8 = 247
	TagNoScan  uint8 = 251
	TagString  uint8 = 252
	TagDouble  uint8 = 253
	TagCustom  uint8 = 255
)

const (
	WordSize = 8

	headerTagBits   = 8
	headerColorBits = 2
	headerSizeShift = headerTagBits + headerColorBits
)

// Tagged immediates hold integers one bit narrower than the word.
const (
	MaxInt int64 = 1<<62 - 1
	MinInt int64 = -1 << 62
)

// FitsInt reports whether n survives OfInt unchanged.
func FitsInt(n int64) bool {
	return n >= MinInt && n <= MaxInt
}

// OfInt encodes n as a tagged immediate. Values outside [MinInt, MaxInt]
// lose their top bit; callers check FitsInt first.
func OfInt(n int64) Raw {
	return Raw(uint64(n)<<1 | 1)
}

// Int decodes a tagged immediate.
func Int(r Raw) int64 {
	return int64(r) >> 1
}

// OfBool encodes b as one of the two nullary immediates.
func OfBool(b bool) Raw {
	if b {
		return True
	}
	return False
}

// Bool decodes a boolean immediate.
func Bool(r Raw) bool {
	return r != False
}

func IsBlock(r Raw) bool {
	return r&1 == 0
}

func IsImmediate(r Raw) bool {
	return r&1 == 1
}

// MakeHeader builds a block header word.
func MakeHeader(wosize int, tag uint8) uint64 {
	return uint64(wosize)<<headerSizeShift | uint64(tag)
}

func HeaderSize(h uint64) int {
	return int(h >> headerSizeShift)
}

func HeaderTag(h uint64) uint8 {
	return uint8(h)
}

// Scannable reports whether blocks with tag hold fields the collector follows.
func Scannable(tag uint8) bool {
	return tag < TagNoScan
}

// StringWords is the block size in words for a string of n bytes.
func StringWords(n int) int {
	return n/WordSize + 1
}

// PaddingByte is the final byte of a string block; it lets the byte length
// be recovered from the word size.
func PaddingByte(wosize, n int) byte {
	return byte(wosize*WordSize - 1 - n)
}

// StringLen recovers the byte length of a string block from its size and
// its final byte.
func StringLen(wosize int, last byte) int {
	return wosize*WordSize - 1 - int(last)
}
