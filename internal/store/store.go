// Package store persists the resume document. There is exactly one
// document per store; writes are last-write-wins and loads always
// succeed with at worst the default document.
package store

import (
	"context"
	"encoding/json"

	"cvforge/internal/errors"
	"cvforge/internal/resume"
)

// SchemaVersion tags persisted payloads so later migrations can branch
// on it. Version 0 (absent) payloads are read as bare documents.
const SchemaVersion = 1

// Store is the persistence port. Load reports whether the stored
// document contains prior work, so callers can decide between the
// landing and build screens.
type Store interface {
	Save(ctx context.Context, doc resume.Document) error
	Load(ctx context.Context) (resume.Document, bool, error)
}

// envelope wraps the document with a schema version on disk and in
// Redis.
type envelope struct {
	SchemaVersion int             `json:"schemaVersion"`
	Document      resume.Document `json:"document"`
}

func encode(doc resume.Document) ([]byte, error) {
	data, err := json.MarshalIndent(envelope{SchemaVersion: SchemaVersion, Document: doc}, "", "  ")
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to encode document", err)
	}
	return data, nil
}

// decode recovers a document from raw payload bytes. Unparseable
// payloads yield the default document and ok=false rather than an
// error; corrupt state must never lock the user out.
func decode(data []byte, logger *errors.Logger) (resume.Document, bool) {
	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && env.SchemaVersion >= SchemaVersion {
		return resume.Heal(env.Document), true
	}

	// Version 0: the document was stored without an envelope.
	var doc resume.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		if logger != nil {
			logger.Warn("Stored document is corrupt, starting from defaults", "error", err.Error())
		}
		return resume.NewDocument(), false
	}
	return resume.Heal(doc), true
}
