package commands

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Example will be written out to a file, .json and .bin
// Filename should have no path and no extension
type Example struct {
	Filename string
	Obj      custody.Persistent
}

// TestGenCmd generates sample protobuf and json encodings
// of various objects to test client encoders against.
func TestGenCmd(examples []Example, args []string) error {
	outdir := "testdata"
	if len(args) > 0 {
		outdir = args[0]
	}
	if err := os.MkdirAll(outdir, 0755); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}

	for _, ex := range examples {
		js, err := json.Marshal(ex.Obj)
		if err != nil {
			return errors.Wrapf(errors.ErrInvalidInput, "%s json: %s", ex.Filename, err)
		}
		jsFile := filepath.Join(outdir, ex.Filename+".json")
		if err := ioutil.WriteFile(jsFile, js, 0644); err != nil {
			return errors.Wrap(errors.ErrInvalidInput, err.Error())
		}

		pb, err := ex.Obj.Marshal()
		if err != nil {
			return errors.Wrapf(err, "%s protobuf", ex.Filename)
		}
		pbFile := filepath.Join(outdir, ex.Filename+".bin")
		if err := ioutil.WriteFile(pbFile, pb, 0644); err != nil {
			return errors.Wrap(errors.ErrInvalidInput, err.Error())
		}
	}
	return nil
}
