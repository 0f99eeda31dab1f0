package store

import "encoding/json"

// mergeJSON merges the top-level fields of patch into base, mirroring the
// merge semantics of a document-store partial update.
func mergeJSON(base, patch []byte) ([]byte, error) {
	var dst map[string]interface{}
	if err := json.Unmarshal(base, &dst); err != nil {
		return nil, err
	}

	var src map[string]interface{}
	if err := json.Unmarshal(patch, &src); err != nil {
		return nil, err
	}

	for k, v := range src {
		dst[k] = v
	}

	return json.Marshal(dst)
}
