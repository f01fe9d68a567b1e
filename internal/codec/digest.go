package codec

import (
	"fmt"

	"github.com/roach88/contend/internal/ir"
)

// canonicalValue converts doc into the generic shape ir.MarshalCanonical
// understands.
func canonicalValue(doc Document) []any {
	workers := make([]any, len(doc))
	for w, threads := range doc {
		ts := make([]any, len(threads))
		for t, intervals := range threads {
			is := make([]any, len(intervals))
			for i, txs := range intervals {
				cell := make([]any, len(txs))
				for k, tx := range txs {
					cell[k] = canonicalTransaction(tx)
				}
				is[i] = cell
			}
			ts[t] = is
		}
		workers[w] = ts
	}
	return workers
}

func canonicalTransaction(tx Transaction) map[string]any {
	params := make([]any, len(tx.Params))
	for i, p := range tx.Params {
		params[i] = map[string]any{
			"name":  p.Name,
			"type":  p.Type,
			"value": p.Value,
		}
	}
	return map[string]any{
		"ID":       tx.ID,
		"from":     tx.From,
		"to":       tx.To,
		"value":    tx.Value,
		"function": tx.Function,
		"txtype":   tx.TxType,
		"params":   params,
	}
}

// Canonical returns the RFC 8785 canonical JSON of doc.
func Canonical(doc Document) ([]byte, error) {
	return ir.MarshalCanonical(canonicalValue(doc))
}

// Digest identifies a document by content. Formatting differences in the
// file (indentation, key order) do not change it.
func Digest(doc Document) (string, error) {
	return digest(documentLayout(doc))
}

// DigestHierarchy returns Digest(Render(h, tpl)) without materializing the
// document: transactions are rendered and hashed one at a time.
func DigestHierarchy(h *ir.Hierarchy, tpl Template) (string, error) {
	return digest(hierarchyLayout{h: h, tpl: tpl.WithDefaults()})
}

// digest hashes the canonical JSON of l. The canonical form has no
// whitespace, so only the brackets and separators are written around each
// transaction.
func digest(l layout) (string, error) {
	d := ir.NewDigester(ir.DomainWorkload)

	d.WriteRaw("[")
	for w := 0; w < l.workers(); w++ {
		if w > 0 {
			d.WriteRaw(",")
		}
		d.WriteRaw("[")
		for t := 0; t < l.threads(w); t++ {
			if t > 0 {
				d.WriteRaw(",")
			}
			d.WriteRaw("[")
			for i := 0; i < l.intervals(w, t); i++ {
				if i > 0 {
					d.WriteRaw(",")
				}
				d.WriteRaw("[")
				n := 0
				err := l.each(w, t, i, func(tx Transaction) error {
					if n > 0 {
						d.WriteRaw(",")
					}
					n++
					if err := d.WriteValue(canonicalTransaction(tx)); err != nil {
						return fmt.Errorf("digest transaction %s: %w", tx.ID, err)
					}
					return nil
				})
				if err != nil {
					return "", err
				}
				d.WriteRaw("]")
			}
			d.WriteRaw("]")
		}
		d.WriteRaw("]")
	}
	d.WriteRaw("]")

	return d.Sum(), nil
}
