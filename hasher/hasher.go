package hasher

import (
	"bytes"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/exp/mmap"
	"lukechampine.com/blake3"
)

const (
	hashBufferSmallSize      = 32 * 1024
	hashBufferLargeSize      = 128 * 1024
	hashLargeBufferThreshold = 256 * 1024

	defaultMmapMinSize = 128 * 1024
)

var hashBufferSmallPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, hashBufferSmallSize)
		return &buf
	},
}

var hashBufferLargePool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, hashBufferLargeSize)
		return &buf
	},
}

var openMmapReader = mmap.Open

// Read modes accepted by New.
const (
	ReadModeStream = "stream"
	ReadModeMmap   = "mmap"
	ReadModeAuto   = "auto"
)

var constructors = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"blake3": func() hash.Hash { return blake3.New(32, nil) },
	"xxhash": func() hash.Hash { return xxhash.New() },
}

// Supported lists the accepted algorithm names.
func Supported() []string {
	return []string{"md5", "sha1", "sha256", "blake3", "xxhash"}
}

// Hasher computes whole-file digests with one algorithm.
type Hasher struct {
	algorithm   string
	newHash     func() hash.Hash
	readMode    string
	mmapMinSize int64
}

func New(algorithm, readMode string, mmapMinSize int64) (*Hasher, error) {
	algorithm = strings.ToLower(strings.TrimSpace(algorithm))
	ctor, ok := constructors[algorithm]
	if !ok {
		return nil, fmt.Errorf("unsupported hash algorithm: %s", algorithm)
	}
	readMode = strings.ToLower(strings.TrimSpace(readMode))
	switch readMode {
	case "":
		readMode = ReadModeStream
	case ReadModeStream, ReadModeMmap, ReadModeAuto:
	default:
		return nil, fmt.Errorf("unsupported hash read mode: %s", readMode)
	}
	if mmapMinSize <= 0 {
		mmapMinSize = defaultMmapMinSize
	}
	return &Hasher{algorithm: algorithm, newHash: ctor, readMode: readMode, mmapMinSize: mmapMinSize}, nil
}

func (h *Hasher) Algorithm() string { return h.algorithm }

// Digest returns the hex digest of the file's full contents. The file is read
// in fixed-size chunks and never held in memory as a whole.
func (h *Hasher) Digest(path string) (string, error) {
	switch h.readMode {
	case ReadModeMmap:
		return h.digestMmap(path)
	case ReadModeAuto:
		info, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		if info.Size() >= h.mmapMinSize {
			if sum, err := h.digestMmap(path); err == nil {
				return sum, nil
			}
		}
	}
	return h.digestStream(path)
}

func (h *Hasher) digestStream(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var size int64
	if info, statErr := file.Stat(); statErr == nil {
		size = info.Size()
	}
	return h.sum(file, size)
}

func (h *Hasher) digestMmap(path string) (string, error) {
	r, err := openMmapReader(path)
	if err != nil {
		return "", err
	}
	defer r.Close()
	section := io.NewSectionReader(r, 0, int64(r.Len()))
	return h.sum(section, int64(r.Len()))
}

func (h *Hasher) sum(r io.Reader, size int64) (string, error) {
	bufferPtr, pool := borrowBuffer(size)
	defer pool.Put(bufferPtr)
	buffer := *bufferPtr

	digest := h.newHash()
	for {
		n, readErr := r.Read(buffer)
		if n > 0 {
			if _, err := digest.Write(buffer[:n]); err != nil {
				return "", err
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return "", readErr
		}
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}

func borrowBuffer(size int64) (*[]byte, *sync.Pool) {
	pool := &hashBufferSmallPool
	if size >= hashLargeBufferThreshold {
		pool = &hashBufferLargePool
	}
	return pool.Get().(*[]byte), pool
}

// SameContent compares two files byte for byte. Errors carry the failing path
// as an *fs.PathError.
func SameContent(a, b string) (bool, error) {
	fa, err := os.Open(a)
	if err != nil {
		return false, err
	}
	defer fa.Close()
	fb, err := os.Open(b)
	if err != nil {
		return false, err
	}
	defer fb.Close()

	ia, err := fa.Stat()
	if err != nil {
		return false, err
	}
	ib, err := fb.Stat()
	if err != nil {
		return false, err
	}
	if ia.Size() != ib.Size() {
		return false, nil
	}

	bufA, poolA := borrowBuffer(ia.Size())
	defer poolA.Put(bufA)
	bufB, poolB := borrowBuffer(ib.Size())
	defer poolB.Put(bufB)

	for {
		na, errA := io.ReadFull(fa, *bufA)
		nb, errB := io.ReadFull(fb, (*bufB)[:len(*bufA)])
		if errA != nil && errA != io.EOF && errA != io.ErrUnexpectedEOF {
			return false, errA
		}
		if errB != nil && errB != io.EOF && errB != io.ErrUnexpectedEOF {
			return false, errB
		}
		if na != nb || !bytes.Equal((*bufA)[:na], (*bufB)[:nb]) {
			return false, nil
		}
		if errA != nil || errB != nil {
			return errA != nil && errB != nil, nil
		}
	}
}
