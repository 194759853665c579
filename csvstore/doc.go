// Package csvstore stores records in a delimited text file, one record
// per line, with an optional header line.
//
// # File Format
//
// Fields are joined with a single character delimiter ("|" by default)
// and every record, including the last one, ends with '\n'. If the store
// has a header, it's always the first line of the file and it's not
// counted as a row: row 0 is the first line after the header.
//
// The number of rows is derived from u.CountLines, which counts one
// more line than there are newlines in the file.
//
// # Basic Usage
//
//	s, err := csvstore.New("data/points.csv", &csvstore.Options{
//	    Header: []string{"x", "y"},
//	})
//	if err != nil {
//	    return err
//	}
//	err = s.Write([][]string{{"0", "1"}, {"2", "3"}})
//	err = s.AppendLines([][]string{{"4", "5"}})
//
//	rows, err := s.LoadRange(1, 3) // [["2" "3"] ["4" "5"]]
//
//	// read the file in batches of 2, forever
//	for {
//	    batch, err := s.LoadSequential(2, false)
//	    // ...
//	}
//
// LoadLine, LoadRange and LoadSequential read the file only up to the last
// row they need. Write, RemoveLastLine and Import replace the file atomically.
//
// Writing or appending zero rows doesn't change anything and doesn't
// create the file.
//
// # Thread Safety
//
// Store is not safe for concurrent use. It doesn't lock the file and
// LoadSequential updates the cursor without synchronization.
package csvstore
