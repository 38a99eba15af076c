package brush

import (
	"bytes"
)

// PNG framing signatures used to carve an embedded image out of an opaque
// container blob.
var (
	pngStartSig = []byte("PNG")
	pngEndSig   = []byte("IEND")
)

// lastDelimitedRange locates the signature-delimited byte range of the one
// meaningful image inside blob. A blob may hold several overlapping or stale
// copies, so the last start occurrence is paired with the last end
// occurrence; earlier matches are stale fragments. The returned range spans
// one byte before the last start match through 8 bytes after the last end
// match, covering the signature framing, clamped to the blob.
func lastDelimitedRange(blob, start, end []byte) (int, int, error) {
	lastStart := bytes.LastIndex(blob, start)
	lastEnd := bytes.LastIndex(blob, end)
	if lastStart < 0 || lastEnd < 0 {
		return 0, 0, ErrNoImageFound
	}
	lo := lastStart - 1
	if lo < 0 {
		lo = 0
	}
	hi := lastEnd + 8
	if hi > len(blob) {
		hi = len(blob)
	}
	return lo, hi, nil
}

// ExtractEmbeddedPNG carves the valid PNG stream out of a database blob.
func ExtractEmbeddedPNG(blob []byte) ([]byte, error) {
	lo, hi, err := lastDelimitedRange(blob, pngStartSig, pngEndSig)
	if err != nil {
		return nil, err
	}
	return blob[lo:hi], nil
}
