package corpus

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/siherrmann/timeliner/helper"
	"github.com/siherrmann/timeliner/model"
	"github.com/tidwall/pretty"
)

var prettyOptions = &pretty.Options{
	Width:    80,
	Prefix:   "",
	Indent:   "    ",
	SortKeys: false,
}

// WriteExamples writes one compact JSON record per line.
func WriteExamples(w io.Writer, examples []*model.Example) error {
	bw := bufio.NewWriter(w)
	for _, ex := range examples {
		b, err := json.Marshal(ex)
		if err != nil {
			return helper.NewError("marshal example "+ex.DocID, err)
		}
		if _, err := bw.Write(append(b, '\n')); err != nil {
			return helper.NewError("write example", err)
		}
	}
	return bw.Flush()
}

// WritePrettyExamples writes every record as indented JSON followed by a newline.
func WritePrettyExamples(w io.Writer, examples []*model.Example) error {
	bw := bufio.NewWriter(w)
	for _, ex := range examples {
		b, err := json.Marshal(ex)
		if err != nil {
			return helper.NewError("marshal example "+ex.DocID, err)
		}
		// pretty.PrettyOptions always ends with a newline
		if _, err := bw.Write(pretty.PrettyOptions(b, prettyOptions)); err != nil {
			return helper.NewError("write example", err)
		}
	}
	return bw.Flush()
}

// SplitPaths returns the compact and pretty output paths of a named split.
func SplitPaths(dir, name string) (compact string, indented string) {
	return filepath.Join(dir, name+".json"), filepath.Join(dir, "pretty_"+name+".json")
}

// WriteSplit writes {name}.json and pretty_{name}.json into dir.
func WriteSplit(dir, name string, examples []*model.Example) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return helper.NewError("create output directory", err)
	}

	compact, indented := SplitPaths(dir, name)
	if err := writeFile(compact, examples, WriteExamples); err != nil {
		return err
	}
	return writeFile(indented, examples, WritePrettyExamples)
}

func writeFile(path string, examples []*model.Example, write func(io.Writer, []*model.Example) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return helper.NewError("create "+path, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	return write(f, examples)
}
