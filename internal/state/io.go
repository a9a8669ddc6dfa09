package state

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/juju/errors"
)

// FullReader resolves config include names and reads whole sources.
type FullReader interface {
	Normalize(name string) string
	// nil,nil = not found
	ReadAll(name string) ([]byte, error)
}

type OsFullReader struct {
	base string
}

func NewOsFullReader() *OsFullReader { return &OsFullReader{} }

// SetBase makes relative includes resolve against dir of first config file.
func (self *OsFullReader) SetBase(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Annotatef(err, "config base path=%s", path)
	}
	self.base = abs
	return nil
}

func (self *OsFullReader) Normalize(name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Clean(filepath.Join(self.base, name))
}

func (*OsFullReader) ReadAll(path string) ([]byte, error) {
	b, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return b, err
}

type MockFullReader struct {
	Map map[string]string
}

func NewMockFullReader(sources map[string]string) *MockFullReader {
	return &MockFullReader{Map: sources}
}

func (self *MockFullReader) Normalize(name string) string {
	return filepath.Clean(name)
}

func (self *MockFullReader) ReadAll(name string) ([]byte, error) {
	if s, ok := self.Map[name]; ok {
		return []byte(s), nil
	}
	return nil, nil
}
