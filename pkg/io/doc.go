// Package io reads and writes person records as a plain JSON array.
//
// # Format
//
// The file is the same array the backend returns from its network endpoint:
//
//	[
//	  {"id": "1", "data": {"firstName": "John"}, "rels": {"spouses": ["2"]}},
//	  {"id": "2", "data": {"firstName": "Jane"}, "rels": {"spouses": ["1"]}}
//	]
//
// Unknown fields are ignored and the format carries no version marker. A
// record without an id rejects the whole file, so an import never leaves a
// half-merged graph behind.
//
// # Import and Export
//
// Use [ImportFile] or [ReadPeople] to decode, and [ExportFile] or
// [WritePeople] to encode:
//
//	people, err := io.ImportFile("family.json")
//	if err != nil {
//	    return err
//	}
//	if err := g.Merge(people); err != nil {
//	    return err
//	}
//	err = io.ExportFile(g.People(), "backup.json")
//
// Export writes records in the order given. [graph.Graph.People] returns
// them in discovery order, so an export followed by an import preserves
// layout ordering.
package io
