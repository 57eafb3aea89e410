// Package dv provides a pure Go encoder for DV video (IEC 61834 / SMPTE 314M).
//
// DV is an intra-only format: every frame is a fixed-size sequence of
// 80-byte DIF blocks whose video payload is split into independent
// segments of five macroblocks. Each segment is coded to exactly fill its
// 400 bytes, so the encoder quantizes, rate-controls and packs segments in
// parallel without any inter-frame state.
//
// The package supports the SD systems:
//   - DV25 525/60 4:1:1 and 625/50 4:2:0 (IEC 61834)
//   - DVCPRO25 625/50 4:1:1
//   - DV50 525/60 and 625/50 4:2:2 (SMPTE 314M)
//
// A raw DV stream is simply a concatenation of frames.
//
// Basic usage for a single frame:
//
//	err := dv.Encode(writer, img, &dv.EncoderOptions{Profile: "dv25-625-420"})
//
// Encoding a stream:
//
//	enc, err := dv.NewEncoder(writer, dv.DefaultOptions())
//	for _, img := range frames {
//		if err := enc.WriteFrame(img); err != nil {
//			return err
//		}
//	}
//	enc.Close()
package dv
