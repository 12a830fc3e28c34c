package builder

import (
	"sort"

	"github.com/abushkanya/connector/query/sqlgen"
)

// Add accumulates one row for insertion. Keys are logical column names,
// multilingual keys are routed to physical columns on the way in. Nothing
// executes until Exec; any number of Add calls compile to one statement.
func (h *TableHandle) Add(row map[string]interface{}) *TableHandle {
	resolved := make(map[string]interface{}, len(row))
	for key, value := range row {
		physical, err := h.table.ResolveWriteKey(key)
		if err != nil {
			return h.fail(err)
		}
		resolved[physical] = value
	}
	h.batch = append(h.batch, resolved)
	h.op = opInsert
	h.state = StateMutating
	return h
}

// Update stages a single value mapping to apply to the rows matched by the
// chain's predicates.
func (h *TableHandle) Update(fields map[string]interface{}) *TableHandle {
	resolved := make(map[string]interface{}, len(fields))
	keys := make([]string, 0, len(fields))
	for key, value := range fields {
		physical, err := h.table.ResolveWriteKey(key)
		if err != nil {
			return h.fail(err)
		}
		resolved[physical] = value
		keys = append(keys, physical)
	}
	// Sorted so identical mappings always compile to identical SQL.
	sort.Strings(keys)

	h.set = h.set[:0]
	for _, key := range keys {
		h.set = append(h.set, sqlgen.Assignment{Column: key, Value: resolved[key]})
	}
	h.op = opUpdate
	h.state = StateMutating
	return h
}

// Delete stages a deletion of the rows matched by the chain's predicates.
func (h *TableHandle) Delete() *TableHandle {
	h.op = opDelete
	h.state = StateMutating
	return h
}

// batchRows flattens the accumulated insert batch into one column list and
// one value row per Add call, preserving insertion order. The column list is
// the sorted union of keys across the batch; rows missing a key insert NULL.
func (h *TableHandle) batchRows() ([]string, [][]interface{}) {
	seen := make(map[string]bool)
	var columns []string
	for _, row := range h.batch {
		for key := range row {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}
	sort.Strings(columns)

	rows := make([][]interface{}, len(h.batch))
	for i, row := range h.batch {
		values := make([]interface{}, len(columns))
		for j, column := range columns {
			values[j] = row[column]
		}
		rows[i] = values
	}
	return columns, rows
}
