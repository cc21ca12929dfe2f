// Package h264 extracts Annex-B NAL boundaries and SPS profile fields,
// the minimum H.264 bitstream parsing the translator needs; it does not
// parse a full SPS/PPS (VUI, scaling lists, slice headers are out of
// scope per the decode pipeline's Non-goals).
package h264

const (
	NALTypeSlice    = 1
	NALTypeIDRSlice = 5
	NALTypeSEI      = 6
	NALTypeSPS      = 7
	NALTypePPS      = 8
	NALTypeAUD      = 9
)

func NALType(nal []byte) int {
	if len(nal) == 0 {
		return -1
	}
	return int(nal[0] & 0x1f)
}

func IsSPS(nal []byte) bool { return NALType(nal) == NALTypeSPS }
func IsPPS(nal []byte) bool { return NALType(nal) == NALTypePPS }
func IsIDR(nal []byte) bool { return NALType(nal) == NALTypeIDRSlice }

// SplitAnnexB scans b for 3- or 4-byte Annex-B start codes and returns
// the NAL unit slices between them (start codes themselves excluded).
// A start code at offset 0 produces no spurious empty leading slice.
func SplitAnnexB(b []byte) [][]byte {
	var nalus [][]byte
	starts := findStartCodes(b)
	if len(starts) == 0 {
		if len(b) > 0 {
			return [][]byte{b}
		}
		return nalus
	}
	for i, s := range starts {
		begin := s.end
		var end int
		if i+1 < len(starts) {
			end = starts[i+1].start
		} else {
			end = len(b)
		}
		if begin < end {
			nalus = append(nalus, b[begin:end])
		}
	}
	return nalus
}

type startCode struct{ start, end int }

func findStartCodes(b []byte) []startCode {
	var out []startCode
	i := 0
	for i+2 < len(b) {
		if b[i] == 0 && b[i+1] == 0 && b[i+2] == 1 {
			out = append(out, startCode{start: i, end: i + 3})
			i += 3
			continue
		}
		if b[i] == 0 && b[i+1] == 0 && b[i+2] == 0 && i+3 < len(b) && b[i+3] == 1 {
			out = append(out, startCode{start: i, end: i + 4})
			i += 4
			continue
		}
		i++
	}
	return out
}

// SPSFields are the three bytes the translator and codec tag derivation
// need: profile_idc, constraint_flags, and level_idc.
type SPSFields struct {
	ProfileIdc      byte
	ConstraintFlags byte
	LevelIdc        byte
}

// ParseSPSFields reads the three bytes following the NAL header byte.
func ParseSPSFields(sps []byte) (SPSFields, bool) {
	if len(sps) < 4 || !IsSPS(sps) {
		return SPSFields{}, false
	}
	return SPSFields{
		ProfileIdc:      sps[1],
		ConstraintFlags: sps[2],
		LevelIdc:        sps[3],
	}, true
}
