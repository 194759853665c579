/*
Package atomicfile writes whole files so that a reader never sees
a partially written file.

To write to files in a robust way we should:

- handle error returned by `Close()`

- handle error returned by `Write()`

- remove partially written file if `Write()` or `Close()` returned an error

Data is written to a temporary file in the destination directory which is
renamed over the destination in Close().

	func saveRows(filePath string, data []byte) error {
		w, err := atomicfile.New(filePath)
		if err != nil {
			return err
		}
		// calling Close() twice is a no-op
		defer w.Close()

		_, err = w.Write(data)
		if err != nil {
			return err
		}
		return w.Close()
	}

For the common case use WriteFile or WriteFromReader.
*/
package atomicfile
