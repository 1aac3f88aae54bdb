package dune

import "encoding/json"

// MarshalSnapshot serializes a Snapshot to JSON. Every field of Snapshot
// and its nested types is exported specifically so this round-trips
// without custom (Un)MarshalJSON methods (§6, §8).
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSnapshot deserializes a Snapshot previously produced by
// MarshalSnapshot. The result is safe to mutate further via this
// package's functions; it carries no aliasing back to the original.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
