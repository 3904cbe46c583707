package codec

import (
	"errors"
	"fmt"

	"github.com/toozej/precureplaylist/internal/normalize"
)

// Decode failure kinds. Every error returned by Decode wraps exactly one.
var (
	ErrMalformedDocument   = normalize.ErrMalformedDocument
	ErrInvalidStructure    = errors.New("invalid structure")
	ErrEmptyTrackList      = errors.New("empty track list")
	ErrNoDomainTracksFound = errors.New("no Precure tracks found")
)

// ErrUnknownFormat is returned for a format mode other than detailed or simple.
var ErrUnknownFormat = errors.New("unknown format type")

// Stage is a step of the decode state machine.
type Stage string

const (
	StageStart         Stage = "start"
	StageShapeDetected Stage = "shape_detected"
	StageNormalized    Stage = "normalized"
	StageFiltered      Stage = "filtered"
	StageAccepted      Stage = "accepted"
	StageRejected      Stage = "rejected"
)

// DecodeError is a terminal decode failure. Stage is the last stage the
// decoder reached before rejecting the input.
type DecodeError struct {
	Stage  Stage
	Kind   error
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Kind
}

// Code returns a stable machine-readable name for the failure kind.
func (e *DecodeError) Code() string {
	switch e.Kind {
	case ErrMalformedDocument:
		return "malformed_document"
	case ErrInvalidStructure:
		return "invalid_structure"
	case ErrEmptyTrackList:
		return "empty_track_list"
	case ErrNoDomainTracksFound:
		return "no_precure_tracks_found"
	}
	return "unknown"
}

// WarningKind names a non-fatal decode finding.
type WarningKind string

// WarningForeignSource is attached when a document was exported by another
// application.
const WarningForeignSource WarningKind = "foreign_source"

// Warning is an advisory message attached to a successful decode.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}
