package codec

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/roach88/contend/internal/ir"
)

// layout abstracts the nesting being written so a Document and a Hierarchy
// produce byte-identical output.
type layout interface {
	workers() int
	threads(w int) int
	intervals(w, t int) int
	each(w, t, i int, fn func(Transaction) error) error
}

type documentLayout Document

func (d documentLayout) workers() int { return len(d) }
func (d documentLayout) threads(w int) int { return len(d[w]) }
func (d documentLayout) intervals(w, t int) int { return len(d[w][t]) }
func (d documentLayout) each(w, t, i int, fn func(Transaction) error) error {
	for _, tx := range d[w][t][i] {
		if err := fn(tx); err != nil {
			return err
		}
	}
	return nil
}

type hierarchyLayout struct {
	h   *ir.Hierarchy
	tpl Template
}

func (l hierarchyLayout) workers() int { return l.h.Workers }
func (l hierarchyLayout) threads(int) int { return l.h.Threads }
func (l hierarchyLayout) intervals(int, int) int { return l.h.Intervals }
func (l hierarchyLayout) each(w, t, i int, fn func(Transaction) error) error {
	for _, op := range l.h.Cell(w, t, i) {
		if err := fn(l.tpl.Transaction(op)); err != nil {
			return err
		}
	}
	return nil
}

// Encode writes doc as indented JSON, one transaction per line.
func Encode(w io.Writer, doc Document) error {
	return encode(w, documentLayout(doc))
}

// EncodeHierarchy renders and writes h without materializing a Document.
// The output is identical to Encode(w, Render(h, tpl)).
func EncodeHierarchy(w io.Writer, h *ir.Hierarchy, tpl Template) error {
	return encode(w, hierarchyLayout{h: h, tpl: tpl.WithDefaults()})
}

func encode(w io.Writer, l layout) error {
	bw := bufio.NewWriter(w)
	var line bytes.Buffer
	enc := json.NewEncoder(&line)
	enc.SetEscapeHTML(false)

	bw.WriteByte('[')
	nw := l.workers()
	for wk := 0; wk < nw; wk++ {
		openItem(bw, wk, 1)
		bw.WriteByte('[')
		nt := l.threads(wk)
		for t := 0; t < nt; t++ {
			openItem(bw, t, 2)
			bw.WriteByte('[')
			ni := l.intervals(wk, t)
			for i := 0; i < ni; i++ {
				openItem(bw, i, 3)
				bw.WriteByte('[')
				n := 0
				err := l.each(wk, t, i, func(tx Transaction) error {
					line.Reset()
					if err := enc.Encode(tx); err != nil {
						return fmt.Errorf("encode transaction %s: %w", tx.ID, err)
					}
					openItem(bw, n, 4)
					bw.Write(bytes.TrimSuffix(line.Bytes(), []byte("\n")))
					n++
					return nil
				})
				if err != nil {
					return err
				}
				closeList(bw, n, 3)
			}
			closeList(bw, ni, 2)
		}
		closeList(bw, nt, 1)
	}
	closeList(bw, nw, 0)
	bw.WriteByte('\n')

	return bw.Flush()
}

func openItem(bw *bufio.Writer, idx, depth int) {
	if idx > 0 {
		bw.WriteByte(',')
	}
	bw.WriteByte('\n')
	bw.WriteString(strings.Repeat("  ", depth))
}

func closeList(bw *bufio.Writer, n, depth int) {
	if n > 0 {
		bw.WriteByte('\n')
		bw.WriteString(strings.Repeat("  ", depth))
	}
	bw.WriteByte(']')
}

// Decode reads a workload document.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode workload: %w", err)
	}
	return doc, nil
}

// WriteFile streams h to path.
func WriteFile(path string, h *ir.Hierarchy, tpl Template) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create workload file: %w", err)
	}
	if err := EncodeHierarchy(f, h, tpl); err != nil {
		f.Close()
		return fmt.Errorf("write workload file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close workload file: %w", err)
	}
	return nil
}

// ReadFile reads a workload document from path.
func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workload file: %w", err)
	}
	defer f.Close()
	return Decode(bufio.NewReader(f))
}
