package obj

import (
	"fmt"
	"strconv"
	"strings"
)

// fieldParser consumes the bytes of one record and pushes the decoded value
// into a Builder at the end of the line.
type fieldParser interface {
	consume(c byte) error
	flush(b *Builder) error
}

// commentField keeps the raw text after '#'.
type commentField struct {
	text []byte
}

func (f *commentField) consume(c byte) error {
	f.text = append(f.text, c)
	return nil
}

func (f *commentField) flush(b *Builder) error {
	b.PushComment(string(f.text))
	f.text = f.text[:0]
	return nil
}

// stringField keeps the text after the keyword without surrounding blanks.
// Inner blanks are part of the value: "usemtl Brick Wall" names "Brick Wall".
type stringField struct {
	push  func(b *Builder, value string) error
	value []byte
}

func (f *stringField) consume(c byte) error {
	f.value = append(f.value, c)
	return nil
}

func (f *stringField) flush(b *Builder) error {
	value := strings.Trim(string(f.value), " ")
	f.value = f.value[:0]
	return f.push(b, value)
}

// vectorField parses up to three space separated floats.
// Tokens past size are ignored (vertex colours, the w of a uv).
type vectorField struct {
	size   int
	min    int
	push   func(b *Builder, v [3]float32)
	token  []byte
	values [3]float32
	count  int
}

func newVectorField(size, min int, push func(b *Builder, v [3]float32)) *vectorField {
	return &vectorField{size: size, min: min, push: push}
}

func (f *vectorField) consume(c byte) error {
	if c == ' ' {
		return f.pushToken()
	}
	if f.count < f.size {
		f.token = append(f.token, c)
	}
	return nil
}

func (f *vectorField) pushToken() error {
	if len(f.token) == 0 {
		return nil
	}
	if f.count >= f.size {
		f.token = f.token[:0]
		return nil
	}
	v, err := strconv.ParseFloat(string(f.token), 32)
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", ErrMalformedToken, f.token)
	}
	f.values[f.count] = float32(v)
	f.count++
	f.token = f.token[:0]
	return nil
}

func (f *vectorField) flush(b *Builder) error {
	err := f.pushToken()
	count := f.count
	values := f.values
	f.count = 0
	f.values = [3]float32{}
	f.token = f.token[:0]
	if err != nil {
		return err
	}

	// "v" followed only by blanks carries no data
	if count == 0 {
		return nil
	}
	if count < f.min {
		return fmt.Errorf("%w: expected %d values, got %d", ErrMalformedToken, f.size, count)
	}
	f.push(b, values)
	return nil
}

// faceField collects vertex references and detects the reference format
// from the slash pattern of each group.
type faceField struct {
	token   []byte
	indices []int
	slashes int
	format  FaceFormat
}

func newFaceField() *faceField {
	return &faceField{format: FaceVertex}
}

func (f *faceField) consume(c byte) error {
	switch c {
	case ' ':
		if f.slashes == 1 {
			f.format = FaceVertexUV
		}
		f.slashes = 0
		return f.pushToken()
	case '/':
		if f.slashes < 2 && f.format != FaceVertexUV {
			f.slashes++
			if len(f.token) == 0 {
				f.format = FaceVertexNormal
			} else {
				f.format = FaceVertexUVNormal
			}
		}
		return f.pushToken()
	default:
		f.token = append(f.token, c)
		return nil
	}
}

func (f *faceField) pushToken() error {
	if len(f.token) == 0 {
		return nil
	}
	i, err := strconv.Atoi(string(f.token))
	if err != nil {
		return fmt.Errorf("%w: %q is not a face index", ErrMalformedToken, f.token)
	}
	f.indices = append(f.indices, i)
	f.token = f.token[:0]
	return nil
}

func (f *faceField) flush(b *Builder) error {
	format, indices, err := f.finish()
	if err != nil {
		return err
	}
	return b.PushFace(format, indices)
}

// finish resets the field and returns the detected format and indices of the
// line. The returned slice is only valid until the next consume.
func (f *faceField) finish() (FaceFormat, []int, error) {
	err := f.pushToken()
	format := f.format
	indices := f.indices

	f.indices = f.indices[:0]
	f.slashes = 0
	f.format = FaceVertex
	f.token = f.token[:0]
	if err != nil {
		return 0, nil, err
	}

	per := format.IndicesPerVertex()
	if len(indices)%per != 0 {
		return 0, nil, fmt.Errorf("%w: %d indices do not form %s references", ErrMalformedToken, len(indices), format)
	}
	if len(indices)/per == 4 {
		format += quadOffset
	}
	return format, indices, nil
}
