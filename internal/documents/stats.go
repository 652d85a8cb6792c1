package documents

// Stats summarises a batch of loaded chunks.
type Stats struct {
	TotalChunks     int            `json:"total_chunks"`
	TotalCharacters int            `json:"total_characters"`
	FileTypes       map[string]int `json:"file_types"`
	UniqueFiles     int            `json:"unique_files"`
	SourceFiles     []string       `json:"source_files"`
}

// ComputeStats aggregates per-batch statistics over loaded chunks.
func ComputeStats(chunks []Chunk) Stats {
	stats := Stats{FileTypes: make(map[string]int)}

	seen := make(map[string]bool)
	for _, c := range chunks {
		stats.TotalChunks++
		stats.TotalCharacters += len(c.Content)
		stats.FileTypes[c.Metadata[MetaFileType]]++

		source := c.Metadata[MetaSourceFile]
		if !seen[source] {
			seen[source] = true
			stats.SourceFiles = append(stats.SourceFiles, source)
		}
	}
	stats.UniqueFiles = len(seen)
	return stats
}
