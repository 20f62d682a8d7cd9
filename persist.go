package hgraph

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio"
	"github.com/google/uuid"
	"github.com/tfmv/hgraph/internal/csr"
)

// Persisted state layout, per §6: a header, the N x D float matrix, then a
// length-prefixed CSR representation of each of L2, L1, L0, and RGraph.
// Bump encodingVersion on any structural change.

const (
	magic           uint32 = 0x48475220 // "HGR "
	encodingVersion uint32 = 1
)

var byteOrder = binary.LittleEndian

func binaryRead(r io.Reader, data interface{}) (int, error) {
	switch v := data.(type) {
	case *int:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		*v = int(int64(byteOrder.Uint64(buf[:])))
		return 8, nil

	case *[]float32:
		var ln int
		if _, err := binaryRead(r, &ln); err != nil {
			return 0, err
		}
		*v = make([]float32, ln)
		if ln == 0 {
			return 8, nil
		}
		return 8 + binary.Size(*v), binary.Read(r, byteOrder, *v)

	case *[]int32:
		var ln int
		if _, err := binaryRead(r, &ln); err != nil {
			return 0, err
		}
		*v = make([]int32, ln)
		if ln == 0 {
			return 8, nil
		}
		return 8 + binary.Size(*v), binary.Read(r, byteOrder, *v)

	default:
		return binary.Size(data), binary.Read(r, byteOrder, data)
	}
}

func binaryWrite(w io.Writer, data any) (int, error) {
	switch v := data.(type) {
	case int:
		var buf [8]byte
		byteOrder.PutUint64(buf[:], uint64(int64(v)))
		n, err := w.Write(buf[:])
		return n, err

	case []float32:
		n, err := binaryWrite(w, len(v))
		if err != nil {
			return n, err
		}
		if len(v) == 0 {
			return n, nil
		}
		return n + binary.Size(v), binary.Write(w, byteOrder, v)

	case []int32:
		n, err := binaryWrite(w, len(v))
		if err != nil {
			return n, err
		}
		if len(v) == 0 {
			return n, nil
		}
		return n + binary.Size(v), binary.Write(w, byteOrder, v)

	default:
		sz := binary.Size(data)
		if err := binary.Write(w, byteOrder, data); err != nil {
			return 0, fmt.Errorf("encoding %T: %w", data, err)
		}
		return sz, nil
	}
}

func multiBinaryWrite(w io.Writer, data ...any) error {
	for _, d := range data {
		if _, err := binaryWrite(w, d); err != nil {
			return err
		}
	}
	return nil
}

func multiBinaryRead(r io.Reader, data ...any) error {
	for i, d := range data {
		if _, err := binaryRead(r, d); err != nil {
			return fmt.Errorf("reading %T at index %d: %w", d, i, err)
		}
	}
	return nil
}

func writeCSR(w io.Writer, g *csr.Graph) error {
	n := g.N()
	neighbors := make([]int32, 0)
	offsets := make([]int32, 0, n)
	for v := int32(0); v < int32(n); v++ {
		offsets = append(offsets, int32(len(neighbors)))
		neighbors = append(neighbors, g.Neighbors(v)...)
	}
	return multiBinaryWrite(w, n, offsets, neighbors)
}

func readCSR(r io.Reader) (*csr.Graph, error) {
	var n int
	var offsets []int32
	var neighbors []int32
	if err := multiBinaryRead(r, &n, &offsets, &neighbors); err != nil {
		return nil, err
	}

	b := csr.NewBuilder(n)
	for v := 0; v < n; v++ {
		start := offsets[v]
		end := int32(len(neighbors))
		if v+1 < len(offsets) {
			end = offsets[v+1]
		}
		for _, nbr := range neighbors[start:end] {
			b.AddEdge(int32(v), nbr)
		}
	}
	return b.Build(), nil
}

// Export writes the full index state to w, per the persisted state layout
// of §6.
func (h *IndexHandle) Export(w io.Writer) error {
	n := h.Vertices()
	err := multiBinaryWrite(w,
		magic, encodingVersion,
		n, h.dim, h.params.M,
	)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	if _, err := binaryWrite(w, h.params.RMid); err != nil {
		return fmt.Errorf("encode r_mid: %w", err)
	}
	if _, err := binaryWrite(w, h.params.RTop); err != nil {
		return fmt.Errorf("encode r_top: %w", err)
	}
	if _, err := binaryWrite(w, h.params.Radius); err != nil {
		return fmt.Errorf("encode radius: %w", err)
	}
	if err := multiBinaryWrite(w, h.params.CMax, int(h.params.Seed), int(h.hgraph.entry)); err != nil {
		return fmt.Errorf("encode tail of header: %w", err)
	}

	for _, row := range h.rows {
		if _, err := binaryWrite(w, row); err != nil {
			return fmt.Errorf("encode vector matrix: %w", err)
		}
	}

	for layer := 2; layer >= 0; layer-- {
		if err := writeCSR(w, h.hgraph.layers[layer]); err != nil {
			return fmt.Errorf("encode HGraph layer %d: %w", layer, err)
		}
	}
	if err := writeCSR(w, h.rgraph.graph); err != nil {
		return fmt.Errorf("encode RGraph: %w", err)
	}

	return nil
}

// Import reads an index previously written by Export. The entry vertex is
// read from the header; layer membership is reconstructed from the
// persisted CSR rows: a vertex belongs to L1/L2 if its row in that layer is
// non-empty.
func Import(r io.Reader) (*IndexHandle, error) {
	var gotMagic, version uint32
	var n, d, m int
	if err := multiBinaryRead(r, &gotMagic, &version); err != nil {
		return nil, err
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("hgraph: bad magic %#x", gotMagic)
	}
	if version != encodingVersion {
		return nil, fmt.Errorf("hgraph: incompatible encoding version %d", version)
	}
	if err := multiBinaryRead(r, &n, &d, &m); err != nil {
		return nil, err
	}

	var rMid, rTop float64
	var radius float32
	if _, err := binaryRead(r, &rMid); err != nil {
		return nil, err
	}
	if _, err := binaryRead(r, &rTop); err != nil {
		return nil, err
	}
	if _, err := binaryRead(r, &radius); err != nil {
		return nil, err
	}

	var cMax, seed, entry int
	if err := multiBinaryRead(r, &cMax, &seed, &entry); err != nil {
		return nil, err
	}

	rows := make([][]float32, n)
	for i := range rows {
		if _, err := binaryRead(r, &rows[i]); err != nil {
			return nil, fmt.Errorf("decode vector matrix row %d: %w", i, err)
		}
	}

	var layers [3]*csr.Graph
	for layer := 2; layer >= 0; layer-- {
		g, err := readCSR(r)
		if err != nil {
			return nil, fmt.Errorf("decode HGraph layer %d: %w", layer, err)
		}
		layers[layer] = g
	}
	rgraphCSR, err := readCSR(r)
	if err != nil {
		return nil, fmt.Errorf("decode RGraph: %w", err)
	}

	ls := membershipFromLayers(layers)

	return &IndexHandle{
		rows: rows,
		dim:  d,
		params: Params{
			M: m, RMid: rMid, RTop: rTop, Radius: radius, CMax: cMax, Seed: int64(seed),
		},
		layers:  ls,
		hgraph:  &hgraphIndex{layers: layers, entry: int32(entry)},
		rgraph:  &rgraphIndex{graph: rgraphCSR},
		buildID: uuid.New(),
	}, nil
}

// membershipFromLayers reconstructs L0/L1/L2 membership from the persisted
// per-layer CSR degree: a vertex belongs to a layer iff it has at least one
// neighbor there. A member with no neighbors would not be recovered; every
// layer built by BuildIndex has at least 2 members, each with at least one
// edge.
func membershipFromLayers(layers [3]*csr.Graph) *layerSet {
	ls := &layerSet{}
	for v := int32(0); v < int32(layers[0].N()); v++ {
		ls.l0 = append(ls.l0, v)
	}
	for v := int32(0); v < int32(layers[1].N()); v++ {
		if layers[1].Degree(v) > 0 {
			ls.l1 = append(ls.l1, v)
		}
	}
	for v := int32(0); v < int32(layers[2].N()); v++ {
		if layers[2].Degree(v) > 0 {
			ls.l2 = append(ls.l2, v)
		}
	}
	return ls
}

// SavedIndexHandle wraps an IndexHandle with a file path, persisting
// changes to disk atomically on Save, mirroring the teacher's
// SavedGraph/LoadSavedGraph convenience wrapper around Export/Import.
type SavedIndexHandle struct {
	*IndexHandle
	Path string
}

// LoadSavedIndex opens an index from path. If the file is empty or does not
// exist, handle is nil and the caller is expected to build one with
// BuildIndex and assign it before the first Save.
func LoadSavedIndex(path string) (*SavedIndexHandle, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	saved := &SavedIndexHandle{Path: path}
	if info.Size() > 0 {
		h, err := Import(bufio.NewReader(f))
		if err != nil {
			return nil, fmt.Errorf("import: %w", err)
		}
		saved.IndexHandle = h
	}
	return saved, nil
}

// Save atomically writes the wrapped index to Path via renameio, so a crash
// mid-write never corrupts a previously-saved index.
func (s *SavedIndexHandle) Save() error {
	tmp, err := renameio.TempFile("", s.Path)
	if err != nil {
		return err
	}
	defer tmp.Cleanup()

	wr := bufio.NewWriter(tmp)
	if err := s.IndexHandle.Export(wr); err != nil {
		return fmt.Errorf("exporting: %w", err)
	}
	if err := wr.Flush(); err != nil {
		return fmt.Errorf("flushing: %w", err)
	}
	return tmp.CloseAtomicallyReplace()
}
