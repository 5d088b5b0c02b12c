package classfile

import "math"

// floatBits and doubleBits reinterpret an IEEE-754 value as its raw bit
// pattern for storage in the constant pool (JVMS 4.4.4/4.4.5 store floats and
// doubles bit-for-bit, not as decimal text).
func floatBits(f float32) uint32 {
	return math.Float32bits(f)
}

func doubleBits(f float64) uint64 {
	return math.Float64bits(f)
}

func bitsToFloat(bits uint32) float32 {
	return math.Float32frombits(bits)
}

func bitsToDouble(bits uint64) float64 {
	return math.Float64frombits(bits)
}
