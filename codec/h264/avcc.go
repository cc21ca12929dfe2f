package h264

import "github.com/corestream/streamcore/bitio"

// BuildAVCDecoderConfigRecord synthesizes the AVCDecoderConfigurationRecord
// payload: 01 | profile | constraint | level | FF | E1 | u16(len(sps)) | sps
// | 01 | u16(len(pps)) | pps. Profile/constraint/level are cloned from the
// SPS's own bytes 1-3, not recomputed.
func BuildAVCDecoderConfigRecord(sps, pps []byte) []byte {
	fields, _ := ParseSPSFields(sps)
	buf := bitio.NewByteBuffer()
	buf.WriteByte(0x01)
	buf.WriteByte(fields.ProfileIdc)
	buf.WriteByte(fields.ConstraintFlags)
	buf.WriteByte(fields.LevelIdc)
	buf.WriteByte(0xFF) // lengthSizeMinusOne=3, reserved bits set
	buf.WriteByte(0xE1) // reserved bits set, numOfSPS=1
	buf.WriteU16BE(uint16(len(sps)))
	buf.WriteBytes(sps)
	buf.WriteByte(0x01) // numOfPPS=1
	buf.WriteU16BE(uint16(len(pps)))
	buf.WriteBytes(pps)
	return buf.Bytes()
}
