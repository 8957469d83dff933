package snapshot

import (
	"encoding/json"
	"io"

	"go.mongodb.org/mongo-driver/bson"

	errs "github.com/matzehuels/treemap/pkg/errors"
)

// WriteJSON encodes s as indented JSON.
func WriteJSON(w io.Writer, s *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "encode snapshot")
	}
	return nil
}

// ReadJSON decodes a snapshot written by [WriteJSON].
func ReadJSON(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode snapshot")
	}
	return &s, nil
}

// MarshalJSON returns the compact JSON encoding of s.
func MarshalJSON(s *Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode snapshot")
	}
	return data, nil
}

// UnmarshalJSON decodes a compact or indented JSON snapshot.
func UnmarshalJSON(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode snapshot")
	}
	return &s, nil
}

// MarshalBSON returns the BSON encoding of s.
func MarshalBSON(s *Snapshot) ([]byte, error) {
	data, err := bson.Marshal(s)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode snapshot")
	}
	return data, nil
}

// UnmarshalBSON decodes a BSON snapshot.
func UnmarshalBSON(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := bson.Unmarshal(data, &s); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode snapshot")
	}
	return &s, nil
}
