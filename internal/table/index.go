// =============================================================================
// shipcheck - Key Index
// =============================================================================
//
// A KeyIndex maps a normalized key value (derived from one or more columns of
// a Table) to the set of Rows carrying that key. It is built once per
// (Table, key columns) pair before any lookups and never mutated afterwards.
//
// Two conditions are modeled explicitly instead of being papered over:
//   - duplicate keys: the index preserves the full row set; the
//     reconciliation engine decides how to react, it never guesses a winner
//   - empty keys: rows whose key columns are all empty land in a separate
//     bucket and are never returned as a match
//
// =============================================================================

package table

import "strings"

// keySeparator joins the column values of a composite key. A unit separator
// cannot appear in cell text, so composite keys never collide with single
// column keys.
const keySeparator = "\x1f"

// KeyIndex is a lookup from normalized key value to the rows sharing it.
type KeyIndex struct {
	table      *Table
	keyColumns []string
	mode       KeyNormalization
	buckets    map[string][]Row
	unkeyed    []Row
}

// BuildIndex builds a KeyIndex over the given table and key columns.
// Building is O(n) in the number of rows.
func BuildIndex(t *Table, keyColumns []string, mode KeyNormalization) *KeyIndex {
	idx := &KeyIndex{
		table:      t,
		keyColumns: keyColumns,
		mode:       mode,
		buckets:    make(map[string][]Row, len(t.Rows)),
	}
	for _, row := range t.Rows {
		key, ok := idx.KeyFor(row)
		if !ok {
			idx.unkeyed = append(idx.unkeyed, row)
			continue
		}
		idx.buckets[key] = append(idx.buckets[key], row)
	}
	return idx
}

// KeyFor derives the normalized key value of a row under this index's key
// columns. It returns false when every key column of the row is empty; such
// rows are unkeyed and never participate in matching.
func (idx *KeyIndex) KeyFor(row Row) (string, bool) {
	return CompositeKey(row, idx.keyColumns, idx.mode)
}

// CompositeKey derives the normalized key value of a row from the given
// columns. The second return value is false when every key column is empty.
// The same function keys both sides of a lookup, so a primary row's key is
// comparable against a reference index even when the column names differ.
func CompositeKey(row Row, columns []string, mode KeyNormalization) (string, bool) {
	parts := make([]string, 0, len(columns))
	empty := true
	for _, col := range columns {
		part := NormalizeKey(row.Get(col), mode)
		if part != "" {
			empty = false
		}
		parts = append(parts, part)
	}
	if empty {
		return "", false
	}
	return strings.Join(parts, keySeparator), true
}

// Lookup returns the rows indexed under the given normalized key value.
// Zero, one, or many rows may be returned; an empty key returns nothing.
func (idx *KeyIndex) Lookup(key string) []Row {
	if key == "" {
		return nil
	}
	return idx.buckets[key]
}

// Unkeyed returns the rows whose key columns were all empty.
func (idx *KeyIndex) Unkeyed() []Row {
	return idx.unkeyed
}

// Table returns the table the index was built over.
func (idx *KeyIndex) Table() *Table {
	return idx.table
}
