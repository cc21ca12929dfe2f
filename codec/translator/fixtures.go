package translator

import (
	"encoding/hex"
	"os"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CodecVector is one entry of testdata/codec_vectors.json: a raw SPS/PPS/
// keyframe triple and the codec tag a correct translator derives from it.
type CodecVector struct {
	Name        string `json:"name"`
	SPSHex      string `json:"sps_hex"`
	PPSHex      string `json:"pps_hex"`
	KeyframeHex string `json:"keyframe_hex"`
	ExpectCodec string `json:"expect_codec"`
}

func (v CodecVector) SPS() []byte { return mustHex(v.SPSHex) }
func (v CodecVector) PPS() []byte { return mustHex(v.PPSHex) }
func (v CodecVector) Keyframe() []byte { return mustHex(v.KeyframeHex) }

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// LoadCodecVectors decodes testdata/codec_vectors.json with jsoniter,
// matching the teacher's JSON-decoding library rather than the stdlib.
func LoadCodecVectors(path string) ([]CodecVector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var vectors []CodecVector
	if err := json.Unmarshal(data, &vectors); err != nil {
		return nil, err
	}
	return vectors, nil
}
