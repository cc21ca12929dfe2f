package h265

import "github.com/corestream/streamcore/bitio"

// BuildHVCDecoderConfigRecord synthesizes a minimal 23-byte HVCC header
// followed by the VPS/SPS/PPS parameter-set arrays in that order, each
// with a count=1 per-array header, per the spec's literal layout.
// general_level_idc is copied from sps[12] — an explicit heuristic
// (Open Question (i) in SPEC_FULL.md §13): a faithful implementation
// would parse the profile_tier_level() structure instead.
// TODO: parse profile_tier_level() for an exact general_level_idc.
func BuildHVCDecoderConfigRecord(vps, sps, pps []byte) []byte {
	buf := bitio.NewByteBuffer()

	profileIdc := byte(0)
	if len(sps) > 1 {
		profileIdc = (sps[1] >> 1) & 0x3F
	}
	levelIdc := byte(0)
	if len(sps) > 12 {
		levelIdc = sps[12]
	}

	buf.WriteByte(0x01)       // configurationVersion
	buf.WriteByte(profileIdc) // general_profile_space(2)=0 | tier(1)=0 | profile_idc(5)
	buf.WriteU32BE(0)         // general_profile_compatibility_flags
	buf.WriteU24BE(0)         // general_constraint_indicator_flags (top 24 of 48)
	buf.WriteU24BE(0)         // general_constraint_indicator_flags (bottom 24 of 48)
	buf.WriteByte(levelIdc)   // general_level_idc
	buf.WriteU16BE(0xF000)    // reserved | min_spatial_segmentation_idc
	buf.WriteByte(0xFC)       // reserved | parallelismType
	buf.WriteByte(0xFC)       // reserved | chromaFormat
	buf.WriteByte(0xF8)       // reserved | bitDepthLumaMinus8
	buf.WriteByte(0xF8)       // reserved | bitDepthChromaMinus8
	buf.WriteU16BE(0)         // avgFrameRate
	buf.WriteByte(0xFF) // reserved | lengthSizeMinusOne(2)=3
	buf.WriteByte(0x03) // numOfArrays

	writeArray(buf, NALTypeVPS, vps)
	writeArray(buf, NALTypeSPS, sps)
	writeArray(buf, NALTypePPS, pps)

	return buf.Bytes()
}

func writeArray(buf *bitio.ByteBuffer, nalType int, nal []byte) {
	buf.WriteByte(byte(nalType) & 0x3F) // array_completeness(1)=0 | reserved(1)=0 | NAL_unit_type(6)
	buf.WriteU16BE(1)                   // numNalus
	buf.WriteU16BE(uint16(len(nal)))
	buf.WriteBytes(nal)
}
