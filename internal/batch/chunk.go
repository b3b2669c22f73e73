package batch

// Chunks splits params into contiguous slices of at most size elements.
// The returned slices share the backing array of params.
func Chunks[P any](params []P, size int) [][]P {
	if size <= 0 || len(params) == 0 {
		return nil
	}

	chunks := make([][]P, 0, (len(params)+size-1)/size)
	start := 0
	for start < len(params) {
		end := start + size
		if end > len(params) {
			end = len(params)
		}
		chunks = append(chunks, params[start:end])
		start = end
	}

	return chunks
}
