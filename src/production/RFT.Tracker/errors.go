package tracker

import "errors"

var (
	// ErrInvalidEvent marks a raw event rejected by the normalizer before it
	// enters the pipeline.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrUnknownTag marks a structurally valid event whose tag matches no
	// known asset.
	ErrUnknownTag = errors.New("unknown tag")
)
