package course

import (
	"bytes"
	"errors"
	"io"

	"github.com/taba-id/taba/internal/storage"
)

var ErrUnknownCourse = errors.New("unknown course")

// maxMaterial caps one course's reading material.
const maxMaterial = 1 << 20

// Materials keeps each course's markdown reading material in a blob store
// under materials/<course>.md.
type Materials struct{ bs storage.BlobStore }

func NewMaterials(bs storage.BlobStore) *Materials { return &Materials{bs: bs} }

func materialKey(courseTitle string) string { return "materials/" + courseTitle + ".md" }

// Get returns the markdown, or storage.ErrNotFound when none was uploaded.
func (m *Materials) Get(courseTitle string) ([]byte, error) {
	if _, ok := Lookup(courseTitle); !ok {
		return nil, ErrUnknownCourse
	}
	rc, err := m.bs.Get(materialKey(courseTitle))
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxMaterial))
}

func (m *Materials) Put(courseTitle string, r io.Reader) error {
	if _, ok := Lookup(courseTitle); !ok {
		return ErrUnknownCourse
	}
	b, err := io.ReadAll(io.LimitReader(r, maxMaterial+1))
	if err != nil {
		return err
	}
	if len(b) > maxMaterial {
		return errors.New("material too large")
	}
	_, err = m.bs.Put(materialKey(courseTitle), bytes.NewReader(b))
	return err
}
