package plugin

// unregister removes uri from the descriptor table.
func unregister(uri string) {
	descriptorsMu.Lock()
	defer descriptorsMu.Unlock()

	for i, d := range descriptors {
		if d.URI == uri {
			descriptors = append(descriptors[:i], descriptors[i+1:]...)
			return
		}
	}
}
