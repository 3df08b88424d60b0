package codec

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
)

// ToUTF8 converts s from the codec's current encoding to UTF-8. Text is
// returned as is while the encoding is Unknown or already UTF-8. Bytes that
// do not decode become U+FFFD.
func (c *Codec) ToUTF8(s string) string {
	dec := decoderFor(c.enc)
	if dec == nil {
		return s
	}
	out, err := dec.String(s)
	if err != nil {
		return s
	}
	return out
}

func decoderFor(enc Encoding) *encoding.Decoder {
	switch enc {
	case ShiftJIS:
		return japanese.ShiftJIS.NewDecoder()
	case EUC:
		return japanese.EUCJP.NewDecoder()
	}
	return nil
}
