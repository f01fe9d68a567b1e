// Package codec renders a synthesized hierarchy as the workload document a
// load-injection engine replays, and reads such documents back.
//
// The document is a nested JSON array ordered worker -> thread -> interval ->
// transaction. Each transaction carries a kind-specific function name, a
// globally unique ID, an originator and an ordered list of typed parameters.
package codec

import (
	"strconv"

	"github.com/roach88/contend/internal/ir"
)

// Param is one typed, named function argument.
type Param struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Transaction is one operation as the injection engine sees it.
type Transaction struct {
	ID       string  `json:"ID"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	Value    string  `json:"value"`
	Function string  `json:"function"`
	TxType   string  `json:"txtype"`
	Params   []Param `json:"params"`
}

// Document is the full workload: [worker][thread][interval][]Transaction.
type Document [][][][]Transaction

// Template controls how operation kinds are rendered.
type Template struct {
	// Create is the function invoked by creating operations.
	Create string `yaml:"create,omitempty" json:"create,omitempty"`

	// Update is the function invoked by mutating operations.
	Update string `yaml:"update,omitempty" json:"update,omitempty"`

	// TxType is copied into every transaction.
	TxType string `yaml:"txtype,omitempty" json:"txtype,omitempty"`

	// HotKey is the resource every mutating operation targets. The default
	// "0" is the resource created by the anchored first operation.
	HotKey string `yaml:"hot_key,omitempty" json:"hot_key,omitempty"`
}

// Default template values.
const (
	DefaultCreate = "CreateAsset"
	DefaultUpdate = "UpdateAsset"
	DefaultTxType = "write"
	DefaultHotKey = "0"
)

// DefaultTemplate returns the asset create/update template.
func DefaultTemplate() Template {
	return Template{
		Create: DefaultCreate,
		Update: DefaultUpdate,
		TxType: DefaultTxType,
		HotKey: DefaultHotKey,
	}
}

// WithDefaults fills empty fields from DefaultTemplate.
func (t Template) WithDefaults() Template {
	d := DefaultTemplate()
	if t.Create == "" {
		t.Create = d.Create
	}
	if t.Update == "" {
		t.Update = d.Update
	}
	if t.TxType == "" {
		t.TxType = d.TxType
	}
	if t.HotKey == "" {
		t.HotKey = d.HotKey
	}
	return t
}

// Transaction renders a single operation. The sequence id is both the
// transaction ID and its originator.
func (t Template) Transaction(op ir.Operation) Transaction {
	seq := strconv.FormatInt(op.Seq, 10)
	ref := strconv.FormatInt(op.Ref, 10)

	tx := Transaction{
		ID:     seq,
		From:   seq,
		Value:  "0",
		TxType: t.TxType,
	}
	if op.Kind == ir.KindMutating {
		tx.Function = t.Update
		tx.Params = []Param{
			{Name: "partID", Type: "string", Value: t.HotKey},
			{Name: "value", Type: "uint", Value: ref},
		}
	} else {
		tx.Function = t.Create
		tx.Params = []Param{
			{Name: "id", Type: "string", Value: ref},
			{Name: "value", Type: "uint", Value: "0"},
		}
	}
	return tx
}

// Render builds the full document for h. Empty template fields take their
// defaults.
func Render(h *ir.Hierarchy, tpl Template) Document {
	tpl = tpl.WithDefaults()
	doc := make(Document, h.Workers)
	for w := range doc {
		doc[w] = make([][][]Transaction, h.Threads)
		for t := range doc[w] {
			doc[w][t] = make([][]Transaction, h.Intervals)
			for i := range doc[w][t] {
				cell := h.Cell(w, t, i)
				txs := make([]Transaction, len(cell))
				for k, op := range cell {
					txs[k] = tpl.Transaction(op)
				}
				doc[w][t][i] = txs
			}
		}
	}
	return doc
}

// Len returns the number of transactions in the document.
func (d Document) Len() int {
	n := 0
	for _, threads := range d {
		for _, intervals := range threads {
			for _, txs := range intervals {
				n += len(txs)
			}
		}
	}
	return n
}
