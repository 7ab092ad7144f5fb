package mesh

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const bufferMagic = "OBJB"

const bufferVersion uint16 = 1

// Buffer flags.
const (
	flagNormals uint16 = 1 << iota
	flagUVs
	flagFlat
)

// Buffer format errors.
var (
	ErrInvalidBufferMagic       = errors.New("invalid buffer magic: expected 'OBJB'")
	ErrUnsupportedBufferVersion = errors.New("unsupported buffer version")
	ErrTruncatedBufferData      = errors.New("truncated buffer data")
	ErrMismatchedBuffers        = errors.New("attribute buffer does not match vertex count")
)

// bufferHeader precedes the float data of a buffer file.
type bufferHeader struct {
	Magic       [4]byte
	Version     uint16
	Flags       uint16
	VertexCount uint32
}

// WriteBuffers writes the positions, normals and uvs of m as little-endian
// float32 blocks after a small header.
func WriteBuffers(w io.Writer, m *Mesh) error {
	count := m.VertexCount()
	if len(m.Positions) != count*3 {
		return fmt.Errorf("%w: %d position floats", ErrMismatchedBuffers, len(m.Positions))
	}
	if len(m.Normals) > 0 && len(m.Normals) != count*3 {
		return fmt.Errorf("%w: %d normal floats for %d vertices", ErrMismatchedBuffers, len(m.Normals), count)
	}
	if len(m.UVs) > 0 && len(m.UVs) != count*2 {
		return fmt.Errorf("%w: %d uv floats for %d vertices", ErrMismatchedBuffers, len(m.UVs), count)
	}

	hdr := bufferHeader{
		Version:     bufferVersion,
		VertexCount: uint32(count),
	}
	copy(hdr.Magic[:], bufferMagic)
	if len(m.Normals) > 0 {
		hdr.Flags |= flagNormals
	}
	if len(m.UVs) > 0 {
		hdr.Flags |= flagUVs
	}
	if m.FlatShading {
		hdr.Flags |= flagFlat
	}

	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, m.Positions); err != nil {
		return fmt.Errorf("writing positions: %w", err)
	}
	if hdr.Flags&flagNormals != 0 {
		if err := binary.Write(w, binary.LittleEndian, m.Normals); err != nil {
			return fmt.Errorf("writing normals: %w", err)
		}
	}
	if hdr.Flags&flagUVs != 0 {
		if err := binary.Write(w, binary.LittleEndian, m.UVs); err != nil {
			return fmt.Errorf("writing uvs: %w", err)
		}
	}
	return nil
}

// ReadBuffers reads a buffer file written by WriteBuffers. Names and bounds
// are not stored in the buffer; bounds are recomputed.
func ReadBuffers(data []byte) (*Mesh, error) {
	r := bytes.NewReader(data)

	var hdr bufferHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedBufferData)
	}
	if string(hdr.Magic[:]) != bufferMagic {
		return nil, ErrInvalidBufferMagic
	}
	if hdr.Version != bufferVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBufferVersion, hdr.Version)
	}

	count := int(hdr.VertexCount)
	need := count * 3
	if hdr.Flags&flagNormals != 0 {
		need += count * 3
	}
	if hdr.Flags&flagUVs != 0 {
		need += count * 2
	}
	if r.Len() < need*4 {
		return nil, fmt.Errorf("%w: expected %d floats", ErrTruncatedBufferData, need)
	}

	m := &Mesh{
		FlatShading: hdr.Flags&flagFlat != 0,
		Positions:   make([]float32, count*3),
	}
	if err := binary.Read(r, binary.LittleEndian, m.Positions); err != nil {
		return nil, fmt.Errorf("%w: reading positions", ErrTruncatedBufferData)
	}
	if hdr.Flags&flagNormals != 0 {
		m.Normals = make([]float32, count*3)
		if err := binary.Read(r, binary.LittleEndian, m.Normals); err != nil {
			return nil, fmt.Errorf("%w: reading normals", ErrTruncatedBufferData)
		}
	}
	if hdr.Flags&flagUVs != 0 {
		m.UVs = make([]float32, count*2)
		if err := binary.Read(r, binary.LittleEndian, m.UVs); err != nil {
			return nil, fmt.Errorf("%w: reading uvs", ErrTruncatedBufferData)
		}
	}
	m.Bounds = ComputeBounds(m.Positions)
	return m, nil
}

// Manifest describes an exported set of meshes.
type Manifest struct {
	Source  string          `yaml:"source"`
	Charset string          `yaml:"charset"`
	Meshes  []ManifestEntry `yaml:"meshes"`
}

// ManifestEntry describes one exported mesh and its buffer file.
type ManifestEntry struct {
	File            string     `yaml:"file"`
	Instance        int        `yaml:"instance"`
	Object          string     `yaml:"object"`
	Group           string     `yaml:"group"`
	Material        string     `yaml:"material"`
	SmoothingGroup  int        `yaml:"smoothing_group"`
	FlatShading     bool       `yaml:"flat_shading"`
	Vertices        int        `yaml:"vertices"`
	HasNormals      bool       `yaml:"has_normals"`
	NormalsComputed bool       `yaml:"normals_computed,omitempty"`
	HasUVs          bool       `yaml:"has_uvs"`
	BoundsMin       [3]float32 `yaml:"bounds_min,flow"`
	BoundsMax       [3]float32 `yaml:"bounds_max,flow"`
}

// NewManifest describes meshes, naming their buffer files mesh_NNN.bin.
func NewManifest(source, charset string, meshes []*Mesh) *Manifest {
	man := &Manifest{
		Source:  source,
		Charset: charset,
		Meshes:  make([]ManifestEntry, 0, len(meshes)),
	}
	for i, m := range meshes {
		man.Meshes = append(man.Meshes, ManifestEntry{
			File:            fmt.Sprintf("mesh_%03d.bin", i),
			Instance:        m.Instance,
			Object:          m.ObjectName,
			Group:           m.GroupName,
			Material:        m.MaterialName,
			SmoothingGroup:  m.SmoothingGroup,
			FlatShading:     m.FlatShading,
			Vertices:        m.VertexCount(),
			HasNormals:      len(m.Normals) > 0,
			NormalsComputed: m.NormalsComputed,
			HasUVs:          len(m.UVs) > 0,
			BoundsMin:       m.Bounds.Min,
			BoundsMax:       m.Bounds.Max,
		})
	}
	return man
}

// Write encodes the manifest as YAML.
func (man *Manifest) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(man); err != nil {
		return err
	}
	return enc.Close()
}

// ReadManifest decodes a YAML manifest.
func ReadManifest(r io.Reader) (*Manifest, error) {
	var man Manifest
	if err := yaml.NewDecoder(r).Decode(&man); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &man, nil
}

// Export writes one buffer file per mesh and manifest.yaml into dir.
func Export(dir, source, charset string, meshes []*Mesh) (*Manifest, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	man := NewManifest(source, charset, meshes)
	for i, m := range meshes {
		var buf bytes.Buffer
		if err := WriteBuffers(&buf, m); err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		path := filepath.Join(dir, man.Meshes[i].File)
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return nil, err
		}
	}

	f, err := os.Create(filepath.Join(dir, "manifest.yaml"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := man.Write(f); err != nil {
		return nil, fmt.Errorf("writing manifest: %w", err)
	}
	return man, f.Close()
}
