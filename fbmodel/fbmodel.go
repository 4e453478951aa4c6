// Package fbmodel reads and writes the external reference binary model
// format, so models can be exchanged with the reference training tool.
//
// Field order is the wire contract: the training hyperparameters, then the
// dictionary as NUL-terminated words with int64 counts, then the flattened
// float32 weight matrix with own-token rows first and bucket rows after,
// then a trailing hyperparameter block. All integers are little-endian.
// Files whose name ends in .gz, or whose first two bytes are the gzip magic,
// are transparently decompressed.
package fbmodel

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unsafe"

	"github.com/klauspost/compress/gzip"
)

// Loss-function tags used by the reference implementation.
const (
	LossHierarchicalSoftmax = 1
	LossNegativeSampling    = 2
	LossSoftmax             = 3
)

// Model-type tags used by the reference implementation.
const (
	ModelCBOW     = 1
	ModelSkipGram = 2
)

var (
	// ErrMalformed indicates a model file whose structure cannot be read.
	ErrMalformed = errors.New("malformed model file")
)

const maxWordLen = 1 << 16

// Model is a decoded reference-format model: hyperparameters, dictionary,
// and the combined weight matrix.
type Model struct {
	Dim          int
	WindowSize   int
	Epochs       int
	Negatives    int
	Loss         int
	ModelType    int
	Buckets      int
	MinCount     int
	Sample       float64
	MinN         int
	MaxN         int
	TotalTokens  int64
	VocabSize    int
	Words        []string
	Counts       []int64
	MatrixRows   int
	MatrixCols   int
	Matrix       []float32 // row-major, (VocabSize + Buckets) x Dim
	LRUpdateRate int
	WordNgrams   int
}

// Load decodes a model from r, sniffing and undoing gzip compression.
func Load(r io.Reader) (*Model, error) {
	br := bufio.NewReaderSize(r, 256*1024)
	magic, err := br.Peek(2)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var src io.Reader = br
	if magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		src = bufio.NewReaderSize(gz, 256*1024)
	}
	return decode(src)
}

func decode(r io.Reader) (*Model, error) {
	m := &Model{}

	var head struct {
		Dim       int32
		Window    int32
		Epochs    int32
		Negatives int32
		Loss      int32
		ModelType int32
		Buckets   int32
		MinCount  int32
		Sample    float64
		MinN      int32
		MaxN      int32
	}
	if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformed, err)
	}
	m.Dim = int(head.Dim)
	m.WindowSize = int(head.Window)
	m.Epochs = int(head.Epochs)
	m.Negatives = int(head.Negatives)
	m.Loss = int(head.Loss)
	m.ModelType = int(head.ModelType)
	m.Buckets = int(head.Buckets)
	m.MinCount = int(head.MinCount)
	m.Sample = head.Sample
	m.MinN = int(head.MinN)
	m.MaxN = int(head.MaxN)
	if m.Dim <= 0 || m.Buckets < 0 {
		return nil, fmt.Errorf("%w: dim=%d buckets=%d", ErrMalformed, m.Dim, m.Buckets)
	}

	var totalTokens int64
	if err := binary.Read(r, binary.LittleEndian, &totalTokens); err != nil {
		return nil, fmt.Errorf("%w: token count: %v", ErrMalformed, err)
	}
	m.TotalTokens = totalTokens

	var declared, retained int32
	if err := binary.Read(r, binary.LittleEndian, &declared); err != nil {
		return nil, fmt.Errorf("%w: vocab size: %v", ErrMalformed, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &retained); err != nil {
		return nil, fmt.Errorf("%w: word count: %v", ErrMalformed, err)
	}
	if retained < 0 || declared < retained {
		return nil, fmt.Errorf("%w: declared %d words, retained %d", ErrMalformed, declared, retained)
	}
	m.VocabSize = int(declared)

	wordReader := bufio.NewReader(r)
	m.Words = make([]string, retained)
	m.Counts = make([]int64, retained)
	for i := range m.Words {
		word, err := readNulString(wordReader)
		if err != nil {
			return nil, fmt.Errorf("%w: word %d: %v", ErrMalformed, i, err)
		}
		m.Words[i] = word
		if err := binary.Read(wordReader, binary.LittleEndian, &m.Counts[i]); err != nil {
			return nil, fmt.Errorf("%w: count of %q: %v", ErrMalformed, word, err)
		}
	}

	var rows, cols int64
	if err := binary.Read(wordReader, binary.LittleEndian, &rows); err != nil {
		return nil, fmt.Errorf("%w: matrix rows: %v", ErrMalformed, err)
	}
	if err := binary.Read(wordReader, binary.LittleEndian, &cols); err != nil {
		return nil, fmt.Errorf("%w: matrix cols: %v", ErrMalformed, err)
	}
	if rows < 0 || cols <= 0 || rows*cols > math.MaxInt32 {
		return nil, fmt.Errorf("%w: matrix shape %dx%d", ErrMalformed, rows, cols)
	}
	m.MatrixRows = int(rows)
	m.MatrixCols = int(cols)
	m.Matrix = make([]float32, rows*cols)
	if len(m.Matrix) > 0 {
		byteSlice := unsafe.Slice((*byte)(unsafe.Pointer(&m.Matrix[0])), len(m.Matrix)*4)
		if _, err := io.ReadFull(wordReader, byteSlice); err != nil {
			return nil, fmt.Errorf("%w: matrix data: %v", ErrMalformed, err)
		}
	}

	var trailer struct {
		LRUpdateRate int32
		WordNgrams   int32
	}
	if err := binary.Read(wordReader, binary.LittleEndian, &trailer); err != nil {
		return nil, fmt.Errorf("%w: trailer: %v", ErrMalformed, err)
	}
	m.LRUpdateRate = int(trailer.LRUpdateRate)
	m.WordNgrams = int(trailer.WordNgrams)

	return m, nil
}

// Save encodes the model to w in the reference format. Set compress to also
// gzip the output, for files conventionally named with a .gz suffix.
func (m *Model) Save(w io.Writer, compress bool) error {
	var dst io.Writer = w
	var gz *gzip.Writer
	if compress {
		gz = gzip.NewWriter(w)
		dst = gz
	}
	bw := bufio.NewWriterSize(dst, 256*1024)

	if err := m.encode(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if gz != nil {
		return gz.Close()
	}
	return nil
}

func (m *Model) encode(w io.Writer) error {
	if len(m.Words) != len(m.Counts) {
		return fmt.Errorf("word list and count list differ in length: %d vs %d", len(m.Words), len(m.Counts))
	}
	if len(m.Matrix) != m.MatrixRows*m.MatrixCols {
		return fmt.Errorf("matrix data length %d does not match shape %dx%d", len(m.Matrix), m.MatrixRows, m.MatrixCols)
	}

	head := []any{
		int32(m.Dim), int32(m.WindowSize), int32(m.Epochs), int32(m.Negatives),
		int32(m.Loss), int32(m.ModelType), int32(m.Buckets), int32(m.MinCount),
		m.Sample, int32(m.MinN), int32(m.MaxN),
		m.TotalTokens, int32(m.VocabSize), int32(len(m.Words)),
	}
	for _, v := range head {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	for i, word := range m.Words {
		if bytes.IndexByte([]byte(word), 0) >= 0 {
			return fmt.Errorf("word %q contains a NUL byte", word)
		}
		if _, err := io.WriteString(w, word); err != nil {
			return err
		}
		if _, err := w.Write([]byte{0}); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, m.Counts[i]); err != nil {
			return err
		}
	}

	if err := binary.Write(w, binary.LittleEndian, int64(m.MatrixRows)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int64(m.MatrixCols)); err != nil {
		return err
	}
	if len(m.Matrix) > 0 {
		byteSlice := unsafe.Slice((*byte)(unsafe.Pointer(&m.Matrix[0])), len(m.Matrix)*4)
		if _, err := w.Write(byteSlice); err != nil {
			return err
		}
	}

	if err := binary.Write(w, binary.LittleEndian, int32(m.LRUpdateRate)); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, int32(m.WordNgrams))
}

func readNulString(r *bufio.Reader) (string, error) {
	raw, err := r.ReadBytes(0)
	if err != nil {
		return "", err
	}
	if len(raw) > maxWordLen {
		return "", fmt.Errorf("word of %d bytes exceeds limit", len(raw))
	}
	return string(raw[:len(raw)-1]), nil
}
