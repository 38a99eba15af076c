// Package brush extracts raster brush textures and parameters from the
// brush-archive formats of several painting applications: Photoshop .abr
// (legacy v1/v2 and structured v6+), GIMP .gbr and .gih, Procreate
// .brushset/.brush zip containers, and Clip Studio .sut databases.
//
// Each format decodes into the same normalized model: an ordered list of
// samples, each carrying a pixel matrix and an optional name/parameter map.
//
// Basic usage:
//
//	pf, err := brush.ReadFile("/path/to/brushes.abr")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, s := range pf.Samples {
//		// s.Pixels, s.Name, s.Parameters
//	}
package brush

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Decoder is the shared contract of the five format decoders. Check is a
// cheap, side-effect-free header gate; Parse must not be called when Check
// reports false. Parse may still fail on malformed bodies that passed the
// header check; such failures are per-file.
type Decoder interface {
	Check() bool
	Parse() (*ParsedBrushFile, error)
}

// signatures used by extension-less detection
var (
	zipMagic  = []byte{'P', 'K', 0x03, 0x04}
	abr6Magic = []byte("8BIM")
	gbrMagic  = []byte("GIMP")
)

// ReadFile decodes a brush archive from disk, routing by file extension.
func ReadFile(path string) (*ParsedBrushFile, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".sut" {
		d, err := OpenSut(path)
		if err != nil {
			return nil, err
		}
		defer d.Close()
		if !d.Check() {
			return nil, &MalformedHeaderError{Format: "sut", Reason: "no MaterialFile table"}
		}
		return d.Parse()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("brush: reading %s: %w", path, err)
	}
	return ReadBuffer(data, ext)
}

// ReadBuffer decodes a fully-loaded brush archive. ext (".abr", ".gbr",
// ".gih", ".brushset", ".brush", or "") narrows detection; with an empty ext
// the buffer is routed by signature alone. The .sut database format needs
// file access and is only reachable through ReadFile.
func ReadBuffer(data []byte, ext string) (*ParsedBrushFile, error) {
	d, err := Detect(data, ext)
	if err != nil {
		return nil, err
	}
	if !d.Check() {
		return nil, &MalformedHeaderError{Format: strings.TrimPrefix(ext, "."), Reason: "header validation failed"}
	}
	return d.Parse()
}

// Detect selects a decoder for the buffer by extension and signature.
func Detect(data []byte, ext string) (Decoder, error) {
	switch strings.ToLower(ext) {
	case ".abr":
		return detectAbr(data)
	case ".gbr":
		return NewGbrDecoder(data)
	case ".gih":
		return NewGihDecoder(data)
	case ".brushset", ".brush":
		return newZipBrushset(data)
	case "":
		return detectBySignature(data)
	}
	return nil, &MalformedHeaderError{Format: strings.TrimPrefix(ext, "."), Reason: "unrecognized extension"}
}

// detectAbr distinguishes the structured v6+ layout from the legacy v1/v2
// layout. The structured variant is identified first by its 8BIM signature.
func detectAbr(data []byte) (Decoder, error) {
	if d, err := NewAbr6Decoder(data); err == nil && d.Check() {
		return d, nil
	}
	d, err := NewAbr1Decoder(data)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func detectBySignature(data []byte) (Decoder, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return newZipBrushset(data)
	case len(data) >= 8 && bytes.Equal(data[4:8], abr6Magic):
		return NewAbr6Decoder(data)
	case len(data) >= 24 && bytes.Equal(data[20:24], gbrMagic):
		return NewGbrDecoder(data)
	}
	if d, err := NewAbr1Decoder(data); err == nil && d.Check() {
		return d, nil
	}
	return nil, &MalformedHeaderError{Format: "brush", Reason: "no known signature"}
}

func newZipBrushset(data []byte) (Decoder, error) {
	a, err := OpenZipArchive(data)
	if err != nil {
		return nil, err
	}
	return NewBrushsetDecoder(a, DefaultImageDecoder), nil
}
