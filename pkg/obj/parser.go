package obj

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// ErrFinished is returned when bytes are written after Finish.
var ErrFinished = errors.New("obj: parser already finished")

// recordKind selects the field parser for a line.
type recordKind uint8

const (
	kindNone recordKind = iota
	kindComment
	kindMtllib
	kindVertex
	kindNormal
	kindUV
	kindObject
	kindGroup
	kindMaterial
	kindFace
	kindSmoothing
	kindCount
)

// String returns the record keyword.
func (k recordKind) String() string {
	switch k {
	case kindComment:
		return "#"
	case kindMtllib:
		return "mtllib"
	case kindVertex:
		return "v"
	case kindNormal:
		return "vn"
	case kindUV:
		return "vt"
	case kindObject:
		return "o"
	case kindGroup:
		return "g"
	case kindMaterial:
		return "usemtl"
	case kindFace:
		return "f"
	case kindSmoothing:
		return "s"
	default:
		return ""
	}
}

// keywordRest is the part of each keyword after its lead byte. A record is
// only accepted once the rest matches and is followed by a blank, so
// "scrv" or "usemap" are skipped instead of parsed as "s" or "usemtl".
var keywordRest = [kindCount]string{
	kindMtllib:   "tllib",
	kindMaterial: "semtl",
}

// leadKinds maps the byte that identifies a record to its kind. 'v' is not
// listed: it only becomes a vertex once the following space is seen, and
// 'n' / 't' complete "vn" / "vt".
var leadKinds = [256]recordKind{
	'#': kindComment,
	'm': kindMtllib,
	'n': kindNormal,
	't': kindUV,
	'o': kindObject,
	'g': kindGroup,
	'u': kindMaterial,
	'f': kindFace,
	's': kindSmoothing,
}

// Parser is a streaming OBJ scanner. Feed it bytes with Write or WriteByte
// and call Finish at end of input. A Parser must not be used concurrently.
type Parser struct {
	opts    Options
	log     *zap.Logger
	sink    MeshSink
	builder *Builder

	fields      [kindCount]fieldParser
	current     fieldParser
	currentKind recordKind
	pendingV    bool

	// keyword bytes read so far and the bytes still expected
	keyword []byte
	keyRest string
	keyDone bool

	skipping   bool
	skipKey    []byte
	skipKeyEnd bool
	skipped    map[string]int

	line     int
	offset   int64
	lastByte byte
	instance int
	reports  []InstanceReport
	pending  []pendingInstance

	err      error
	finished bool
}

type pendingInstance struct {
	index  int
	meshes []*SubMesh
}

// NewParser creates a parser delivering sub-meshes to sink. sink may be nil
// when only the Report is wanted.
func NewParser(sink MeshSink, opts Options) *Parser {
	p := &Parser{
		opts:    opts,
		log:     opts.logger(),
		sink:    sink,
		builder: NewBuilder(opts.DescriptorPerSmoothingGroup),
		skipped: make(map[string]int),
		line:    1,
	}

	p.fields[kindComment] = &commentField{}
	p.fields[kindMtllib] = &stringField{push: func(b *Builder, s string) error {
		b.PushMtllib(s)
		return nil
	}}
	p.fields[kindVertex] = newVectorField(3, 3, func(b *Builder, v [3]float32) {
		b.PushVertex(v[0], v[1], v[2])
	})
	p.fields[kindNormal] = newVectorField(3, 3, func(b *Builder, v [3]float32) {
		b.PushNormal(v[0], v[1], v[2])
	})
	p.fields[kindUV] = newVectorField(2, 1, func(b *Builder, v [3]float32) {
		b.PushUV(v[0], v[1])
	})
	p.fields[kindObject] = &stringField{push: func(b *Builder, s string) error {
		b.PushObject(s)
		return nil
	}}
	p.fields[kindGroup] = &stringField{push: func(b *Builder, s string) error {
		b.PushGroup(s)
		return nil
	}}
	p.fields[kindMaterial] = &stringField{push: func(b *Builder, s string) error {
		b.PushMaterial(s)
		return nil
	}}
	p.fields[kindFace] = newFaceField()
	p.fields[kindSmoothing] = &stringField{push: (*Builder).PushSmoothingGroup}

	return p
}

// Write feeds a chunk of input. Chunks may split records anywhere.
func (p *Parser) Write(data []byte) (int, error) {
	for i, c := range data {
		if err := p.WriteByte(c); err != nil {
			return i, err
		}
	}
	return len(data), nil
}

// WriteByte feeds a single byte of input.
func (p *Parser) WriteByte(c byte) error {
	if p.err != nil {
		return p.err
	}
	if p.finished {
		return ErrFinished
	}
	if err := p.scan(c); err != nil {
		p.fail(err)
		return err
	}
	p.offset++
	p.lastByte = c
	if c == '\n' {
		p.line++
	}
	return nil
}

// Finish ends the input. A record without a trailing line feed is still
// pushed, the last instance is flushed and, unless instances are streamed,
// every instance is handed to the sink.
func (p *Parser) Finish() error {
	if p.err != nil {
		return p.err
	}
	if p.finished {
		return ErrFinished
	}
	p.finished = true

	if err := p.endLine(); err != nil {
		p.fail(err)
		return err
	}
	if err := p.flushInstance(false); err != nil {
		p.fail(err)
		return err
	}

	pending := p.pending
	p.pending = nil
	for _, in := range pending {
		if err := p.deliver(in.index, in.meshes); err != nil {
			p.err = err
			return err
		}
	}
	return nil
}

// Report returns counts for the instances flushed so far.
func (p *Parser) Report() *Report {
	skipped := make(map[string]int, len(p.skipped))
	for k, v := range p.skipped {
		skipped[k] = v
	}
	instances := make([]InstanceReport, len(p.reports))
	copy(instances, p.reports)
	lines := p.line
	switch {
	case p.offset == 0:
		lines = 0
	case p.lastByte == '\n':
		lines--
	}
	return &Report{
		Instances: instances,
		Lines:     lines,
		Bytes:     p.offset,
		Skipped:   skipped,
	}
}

func (p *Parser) scan(c byte) error {
	switch {
	case c == '\n':
		return p.endLine()
	case c == '\r':
		return nil
	case p.skipping:
		if !p.skipKeyEnd {
			if c == ' ' || c == '\t' || len(p.skipKey) >= 16 {
				p.skipKeyEnd = true
			} else {
				p.skipKey = append(p.skipKey, c)
			}
		}
		return nil
	}

	if p.current != nil {
		if c == '\t' {
			c = ' '
		}
		if !p.keyDone {
			if p.keyRest != "" {
				if c != p.keyRest[0] {
					p.abandonRecord(c)
					return nil
				}
				p.keyword = append(p.keyword, c)
				p.keyRest = p.keyRest[1:]
				return nil
			}
			if c != ' ' {
				p.abandonRecord(c)
				return nil
			}
			if err := p.enterRecord(); err != nil {
				return err
			}
		}
		if err := p.current.consume(c); err != nil {
			return p.wrap(p.currentKind, err)
		}
		return nil
	}

	switch c {
	case 'v':
		if p.pendingV {
			p.startSkip(c)
			return nil
		}
		p.pendingV = true
		return nil
	case ' ', '\t':
		if !p.pendingV {
			// indentation, not a vertex: only "v " selects the vertex parser
			return nil
		}
		p.pendingV = false
		if p.builder.facesSeen && p.opts.ImplicitObjectSplit {
			if err := p.flushInstance(true); err != nil {
				return err
			}
		}
		p.current = p.fields[kindVertex]
		p.currentKind = kindVertex
		p.keyDone = true
		return nil
	}

	kind := leadKinds[c]
	if kind == kindNone || (kind == kindNormal || kind == kindUV) != p.pendingV {
		p.startSkip(c)
		return nil
	}
	p.selectField(kind, c)
	if kind == kindComment {
		return p.enterRecord()
	}
	return nil
}

// selectField starts matching the keyword of kind. The record takes effect
// in enterRecord once the keyword is confirmed.
func (p *Parser) selectField(kind recordKind, lead byte) {
	p.keyword = p.keyword[:0]
	if p.pendingV {
		p.keyword = append(p.keyword, 'v')
		p.pendingV = false
	}
	p.keyword = append(p.keyword, lead)
	p.keyRest = keywordRest[kind]
	p.keyDone = false
	p.current = p.fields[kind]
	p.currentKind = kind
}

func (p *Parser) enterRecord() error {
	p.keyDone = true
	switch p.currentKind {
	case kindObject:
		if len(p.builder.vertices) > 0 {
			if err := p.flushInstance(false); err != nil {
				return err
			}
		}
	case kindFace:
		p.builder.facesSeen = true
	}
	return nil
}

// abandonRecord turns a record whose keyword did not match into a skipped
// line. c is the first byte that did not match.
func (p *Parser) abandonRecord(c byte) {
	p.current = nil
	p.currentKind = kindNone
	p.skipping = true
	p.skipKey = append(p.skipKey[:0], p.keyword...)
	p.skipKeyEnd = c == ' '
	if !p.skipKeyEnd {
		p.skipKey = append(p.skipKey, c)
	}
}

func (p *Parser) startSkip(c byte) {
	p.skipping = true
	p.skipKeyEnd = false
	p.skipKey = p.skipKey[:0]
	if p.pendingV {
		p.skipKey = append(p.skipKey, 'v')
		p.pendingV = false
	}
	p.skipKey = append(p.skipKey, c)
}

// endLine pushes the pending record, if any, into the builder.
func (p *Parser) endLine() error {
	p.pendingV = false
	if p.skipping {
		p.skipping = false
		p.noteSkipped(string(p.skipKey))
		return nil
	}
	if p.current == nil {
		return nil
	}
	if !p.keyDone {
		if p.keyRest != "" {
			// line ended inside the keyword, e.g. "use"
			key := string(p.keyword)
			p.current = nil
			p.currentKind = kindNone
			p.noteSkipped(key)
			return nil
		}
		// bare keyword such as "o" or "vn"
		if err := p.enterRecord(); err != nil {
			return err
		}
	}
	f, kind := p.current, p.currentKind
	p.current = nil
	p.currentKind = kindNone
	if err := f.flush(p.builder); err != nil {
		return p.wrap(kind, err)
	}
	return nil
}

func (p *Parser) noteSkipped(key string) {
	p.skipped[key]++
	if p.skipped[key] == 1 && p.opts.WarnUnsupported {
		p.log.Warn("skipping unsupported OBJ record",
			zap.String("record", key),
			zap.Int("line", p.line))
	}
}

// flushInstance completes the current instance and starts the next one.
func (p *Parser) flushInstance(implicit bool) error {
	b := p.builder
	report := b.Report()
	report.Index = p.instance
	p.reports = append(p.reports, report)

	p.log.Debug("OBJ instance complete",
		zap.Int("instance", report.Index),
		zap.String("object", report.ObjectName),
		zap.String("mtllib", report.Mtllib),
		zap.Int("vertices", report.Vertices),
		zap.Int("normals", report.Normals),
		zap.Int("uvs", report.UVs),
		zap.Int("groups", report.GroupChanges),
		zap.Int("smoothingGroups", report.SmoothingGroupChanges),
		zap.Int("materials", report.MaterialChanges),
		zap.Int("comments", report.Comments),
		zap.Int("subMeshes", report.SubMeshes),
		zap.Bool("implicit", implicit))

	meshes := b.Meshes()
	index := p.instance
	p.instance++
	p.builder = b.next(implicit)

	if len(meshes) == 0 {
		return nil
	}
	if p.opts.StreamInstances {
		return p.deliver(index, meshes)
	}
	p.pending = append(p.pending, pendingInstance{index: index, meshes: meshes})
	return nil
}

func (p *Parser) deliver(index int, meshes []*SubMesh) error {
	if p.sink == nil {
		return nil
	}
	if err := p.sink.BuildMeshes(index, meshes); err != nil {
		return fmt.Errorf("delivering instance %d: %w", index, err)
	}
	return nil
}

// fail poisons the parser. Queued instances are dropped so the sink sees
// nothing from an aborted parse.
func (p *Parser) fail(err error) {
	p.err = err
	p.pending = nil
	p.current = nil
	if p.opts.StreamInstances {
		if a, ok := p.sink.(Aborter); ok {
			a.Abort(err)
		}
	}
}

func (p *Parser) wrap(kind recordKind, err error) error {
	b := p.builder
	return &ParseError{
		Line:           p.line,
		Offset:         p.offset,
		Record:         kind.String(),
		Object:         b.object,
		Group:          b.group,
		Material:       b.material,
		SmoothingGroup: b.smoothingGroup,
		Err:            err,
	}
}

// Parse reads all of r and returns the parse report.
func Parse(r io.Reader, sink MeshSink, opts Options) (*Report, error) {
	p := NewParser(sink, opts)
	if _, err := io.Copy(p, r); err != nil {
		return nil, err
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return p.Report(), nil
}

// ParseBytes parses an in-memory OBJ file.
func ParseBytes(data []byte, sink MeshSink, opts Options) (*Report, error) {
	p := NewParser(sink, opts)
	if _, err := p.Write(data); err != nil {
		return nil, err
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return p.Report(), nil
}

// ParseFile parses an OBJ file from disk.
func ParseFile(path string, sink MeshSink, opts Options) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ file: %w", err)
	}
	defer f.Close()

	report, err := Parse(f, sink, opts)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return report, nil
}
