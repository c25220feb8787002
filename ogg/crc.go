package ogg

// The Ogg checksum is a CRC-32 with polynomial 0x04C11DB7, no reflection and a
// zero initial value. It is not the IEEE variant from hash/crc32.

var crcTable [256]uint32

func init() {
	const poly = uint32(0x04C11DB7)
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		crcTable[i] = crc
	}
}

func crcUpdate(crc uint32, data []byte) uint32 {
	for _, b := range data {
		crc = (crc << 8) ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}

var zeroChecksum [4]byte

// pageChecksum computes the checksum of an encoded page as if its checksum
// field was zeroed.
func pageChecksum(header, body []byte) uint32 {
	crc := crcUpdate(0, header[:22])
	crc = crcUpdate(crc, zeroChecksum[:])
	crc = crcUpdate(crc, header[26:])
	return crcUpdate(crc, body)
}
