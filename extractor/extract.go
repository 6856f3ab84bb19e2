// Package extractor turns an uploaded CFE bill into the values used to
// prefill a new ledger period.
package extractor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/aqlanhadi/solarpayback/extractor/cfe"
	"github.com/aqlanhadi/solarpayback/extractor/common"
)

// Result is everything read from one bill.
type Result struct {
	Source  string   `json:"source" yaml:"source"`
	Bill    cfe.Bill `json:"bill" yaml:"bill"`
	Prefill Prefill  `json:"prefill" yaml:"prefill"`
	Missing []string `json:"missing_fields,omitempty" yaml:"missing_fields,omitempty"`
}

// ProcessText runs the bill rules over text that has already been extracted.
func ProcessText(text, source string) Result {
	bill, missing := cfe.ExtractWithMisses(text)
	return Result{
		Source:  source,
		Bill:    bill,
		Prefill: NewPrefill(bill),
		Missing: missing,
	}
}

// ProcessReader reads a PDF from reader. Only an unreadable document is an
// error; fields the text does not yield are defaulted.
func ProcessReader(reader io.Reader, filename string) (Result, error) {
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(reader); err != nil {
		return Result{}, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	text, err := common.ExtractText(buf.Bytes())
	if err != nil {
		return Result{}, fmt.Errorf("failed to extract text from %s: %w", filename, err)
	}

	log.WithField("source", filename).Debug("extracting bill fields")
	return ProcessText(text, filename), nil
}

func ProcessFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	return ProcessReader(f, filepath.Base(path))
}

// ProcessPath processes a single file, or every PDF directly inside a
// directory. Files in a directory that fail are logged and skipped.
func ProcessPath(path string) ([]Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		log.WithField("path", path).Info("scanning file")
		result, err := ProcessFile(path)
		if err != nil {
			return nil, err
		}
		return []Result{result}, nil
	}

	log.WithField("path", path).Info("scanning directory")
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	results := []Result{}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		result, err := ProcessFile(filepath.Join(path, e.Name()))
		if err != nil {
			log.WithError(err).WithField("file", e.Name()).Warn("skipping bill")
			continue
		}
		results = append(results, result)
	}
	return results, nil
}
