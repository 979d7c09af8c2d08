package travel

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/usgs/neic-glass3-sub001/internal/glasserr"
)

// Binary table file layout (little-endian, compatibility-critical — §4.1):
//
//	"TRAV"              4 bytes
//	endian marker       2 bytes  (int16 = 1)
//	branch name         16 bytes (NUL-padded)
//	phase list          64 bytes (comma-separated, NUL-padded)
//	nDist               4 bytes  (int32)
//	dist warp params    5 x 8    (min, max, k, s0, sInf as double)
//	nDepth              4 bytes
//	depth warp params   5 x 8
//	travelTime[]        nDist*nDepth x 8  (double, row-major: depth-major)
//	depthDistance[]     nDist*nDepth x 8
//	phaseTag[]          nDist*nDepth x 1  (one byte per cell)
const (
	magic           = "TRAV"
	endianMarker    = int16(1)
	branchNameBytes = 16
	phaseListBytes  = 64
)

// WriteTable serialises t to w in the wire layout above.
func WriteTable(w io.Writer, t *Table) error {
	var buf bytes.Buffer
	buf.WriteString(magic)

	if err := binary.Write(&buf, binary.LittleEndian, endianMarker); err != nil {
		return err
	}
	if err := writeFixedString(&buf, t.BranchName, branchNameBytes); err != nil {
		return err
	}
	if err := writeFixedString(&buf, strings.Join(t.Phases, ","), phaseListBytes); err != nil {
		return err
	}

	if err := binary.Write(&buf, binary.LittleEndian, int32(t.Dist.N)); err != nil {
		return err
	}
	if err := writeWarpParams(&buf, t.Dist); err != nil {
		return err
	}
	if err := binary.Write(&buf, binary.LittleEndian, int32(t.Depth.N)); err != nil {
		return err
	}
	if err := writeWarpParams(&buf, t.Depth); err != nil {
		return err
	}

	if err := binary.Write(&buf, binary.LittleEndian, t.TravelTime); err != nil {
		return err
	}
	if err := binary.Write(&buf, binary.LittleEndian, t.DepthDistance); err != nil {
		return err
	}
	if _, err := buf.Write(t.PhaseTag); err != nil {
		return err
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// ReadTable deserialises a Table from r, validating the magic number and
// declared array sizes. Any mismatch is returned as a *glasserr.ConfigError
// per §4.1 ("Loader verifies magic and sizes; mismatches fail with
// ConfigError").
func ReadTable(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, glasserr.NewConfigError("travel-time file", err)
	}
	buf := bytes.NewReader(data)

	gotMagic := make([]byte, 4)
	if _, err := io.ReadFull(buf, gotMagic); err != nil {
		return nil, glasserr.NewConfigError("travel-time file magic", err)
	}
	if string(gotMagic) != magic {
		return nil, glasserr.NewConfigError("travel-time file magic",
			fmt.Errorf("got %q, want %q", gotMagic, magic))
	}

	var marker int16
	if err := binary.Read(buf, binary.LittleEndian, &marker); err != nil {
		return nil, glasserr.NewConfigError("travel-time file endian marker", err)
	}
	if marker != endianMarker {
		return nil, glasserr.NewConfigError("travel-time file endian marker",
			fmt.Errorf("got %d, want %d", marker, endianMarker))
	}

	branchName, err := readFixedString(buf, branchNameBytes)
	if err != nil {
		return nil, glasserr.NewConfigError("travel-time file branch name", err)
	}
	phaseList, err := readFixedString(buf, phaseListBytes)
	if err != nil {
		return nil, glasserr.NewConfigError("travel-time file phase list", err)
	}
	var phases []string
	if phaseList != "" {
		phases = strings.Split(phaseList, ",")
	}

	var nDist int32
	if err := binary.Read(buf, binary.LittleEndian, &nDist); err != nil {
		return nil, glasserr.NewConfigError("travel-time file nDist", err)
	}
	distWarp, err := readWarpParams(buf, int(nDist))
	if err != nil {
		return nil, glasserr.NewConfigError("travel-time file dist warp", err)
	}

	var nDepth int32
	if err := binary.Read(buf, binary.LittleEndian, &nDepth); err != nil {
		return nil, glasserr.NewConfigError("travel-time file nDepth", err)
	}
	depthWarp, err := readWarpParams(buf, int(nDepth))
	if err != nil {
		return nil, glasserr.NewConfigError("travel-time file depth warp", err)
	}

	if nDist <= 0 || nDepth <= 0 {
		return nil, glasserr.NewConfigError("travel-time file dimensions",
			fmt.Errorf("nDist=%d nDepth=%d must be positive", nDist, nDepth))
	}

	cellCount := int(nDist) * int(nDepth)
	wantBytes := cellCount*8 /*travelTime*/ + cellCount*8 /*depthDistance*/ + cellCount /*phaseTag*/
	if buf.Len() != wantBytes {
		return nil, glasserr.NewConfigError("travel-time file size",
			fmt.Errorf("remaining %d bytes, want %d for %d cells", buf.Len(), wantBytes, cellCount))
	}

	t := NewTable(branchName, phases, distWarp, depthWarp)
	if err := binary.Read(buf, binary.LittleEndian, t.TravelTime); err != nil {
		return nil, glasserr.NewConfigError("travel-time file travelTime array", err)
	}
	if err := binary.Read(buf, binary.LittleEndian, t.DepthDistance); err != nil {
		return nil, glasserr.NewConfigError("travel-time file depthDistance array", err)
	}
	if _, err := io.ReadFull(buf, t.PhaseTag); err != nil {
		return nil, glasserr.NewConfigError("travel-time file phaseTag array", err)
	}

	return t, nil
}

func writeFixedString(buf *bytes.Buffer, s string, n int) error {
	b := make([]byte, n)
	copy(b, s) // truncates if s is longer than n; callers keep names short
	_, err := buf.Write(b)
	return err
}

func readFixedString(r io.Reader, n int) (string, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	if idx := bytes.IndexByte(b, 0); idx >= 0 {
		b = b[:idx]
	}
	return string(b), nil
}

func writeWarpParams(buf *bytes.Buffer, w Warp) error {
	params := [5]float64{w.Min, w.Max, w.K, w.S0, w.SInf}
	return binary.Write(buf, binary.LittleEndian, params)
}

func readWarpParams(r io.Reader, n int) (Warp, error) {
	var params [5]float64
	if err := binary.Read(r, binary.LittleEndian, &params); err != nil {
		return Warp{}, err
	}
	return NewWarp(params[0], params[1], params[2], params[3], params[4], n), nil
}
