// Package h265 classifies H.265 NAL units and synthesizes the HVCC
// configuration record the translator needs, mirroring codec/h264's
// scope for the VPS/SPS/PPS triple.
package h265

const (
	NALTypeVPS = 32
	NALTypeSPS = 33
	NALTypePPS = 34
)

// NALType extracts the NAL unit type from an H.265 NAL header, which is
// two bytes wide (type occupies bits 1-6 of the first byte).
func NALType(nal []byte) int {
	if len(nal) == 0 {
		return -1
	}
	return int((nal[0] >> 1) & 0x3f)
}

func IsVPS(nal []byte) bool { return NALType(nal) == NALTypeVPS }
func IsSPS(nal []byte) bool { return NALType(nal) == NALTypeSPS }
func IsPPS(nal []byte) bool { return NALType(nal) == NALTypePPS }

// SplitAnnexB reuses the same start-code scan as H.264 (Annex-B framing
// is codec-agnostic); re-implemented here rather than imported from
// codec/h264 to keep the two parser packages independent, matching the
// teacher's own per-codec parser package split (h264parser today,
// h265parser alongside it).
func SplitAnnexB(b []byte) [][]byte {
	var nalus [][]byte
	i := 0
	start := -1
	for i+2 < len(b) {
		var scLen int
		if b[i] == 0 && b[i+1] == 0 && b[i+2] == 1 {
			scLen = 3
		} else if b[i] == 0 && b[i+1] == 0 && b[i+2] == 0 && i+3 < len(b) && b[i+3] == 1 {
			scLen = 4
		}
		if scLen > 0 {
			if start >= 0 && start < i {
				nalus = append(nalus, b[start:i])
			}
			i += scLen
			start = i
			continue
		}
		i++
	}
	if start >= 0 && start < len(b) {
		nalus = append(nalus, b[start:])
	}
	if start < 0 && len(b) > 0 {
		return [][]byte{b}
	}
	return nalus
}
