// Package snapshoturl URL-safe-encodes a serialized Layout diagnostics
// snapshot for cmd/layoutctl's --share flag: never used mid-pipeline, only
// to hand a caller a shareable blob after a run. Grounded on the teacher's
// lib/urlenc (compress/flate with a domain-specific compression
// dictionary), adapted to a dictionary of this engine's own repeated JSON
// keys and kind strings instead of a D2-script keyword set.
package snapshoturl

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"io"
	"strings"

	"golang.org/x/xerrors"
)

// compressionDict front-loads flate's window with the field and enum names
// that dominate a serialized Layout, so short snapshots compress well
// despite flate's lack of a built-in static dictionary.
var compressionDict = strings.Join([]string{
	"\"id\":", "\"kind\":", "\"label\":", "\"colour\":", "\"contains\":",
	"\"from\":", "\"to\":", "\"direction\":", "\"routing\":", "\"weight\":",
	"\"width\":", "\"height\":", "\"level\":", "\"score\":", "\"clusterID\":",
	"\"posX\":", "\"posY\":", "server", "cloud", "database", "building",
	"firewall", "router", "laptop", "computer", "document", "user", "unknown",
	"straight", "orthogonal", "bezier", "arc", "manual",
	"forward", "backward", "bidirectional", "none",
}, "")

// Encode compresses raw (typically the output of graph.SerializeLayout)
// and returns a URL-safe base64 string.
func Encode(raw []byte) (string, error) {
	var b bytes.Buffer
	zw, err := flate.NewWriterDict(&b, flate.DefaultCompression, []byte(compressionDict))
	if err != nil {
		return "", xerrors.Errorf("snapshoturl: %w", err)
	}
	if _, err := zw.Write(raw); err != nil {
		return "", xerrors.Errorf("snapshoturl: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", xerrors.Errorf("snapshoturl: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b.Bytes()), nil
}

// Decode reverses Encode.
func Decode(encoded string) ([]byte, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, xerrors.Errorf("snapshoturl: %w", err)
	}
	zr := flate.NewReaderDict(bytes.NewReader(raw), []byte(compressionDict))
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, xerrors.Errorf("snapshoturl: %w", err)
	}
	return out, nil
}
