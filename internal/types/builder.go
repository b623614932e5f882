package types

// MetadataBuilder accumulates metadata during a parse and finalizes it
// into a Metadata record exactly once.
//
// The optional substructures (Mount, Environment, WCS, XISF,
// ColorManagement) are allocated the first time any of their fields is
// written; a substructure that never received a field stays absent from
// the finalized record. Accessors return the live substructure so mappers
// can write fields directly:
//
//	b.Mount().PierSide = "WEST"
type MetadataBuilder struct {
	meta     Metadata
	warnings []Warning
}

// NewMetadataBuilder returns a builder with empty required substructures
// and default binning of 1×1.
func NewMetadataBuilder() *MetadataBuilder {
	b := &MetadataBuilder{}
	b.meta.Detector.BinningX = 1
	b.meta.Detector.BinningY = 1
	b.meta.RawHeaders = make(map[string]string)
	return b
}

// Equipment returns the always-present equipment substructure.
func (b *MetadataBuilder) Equipment() *Equipment { return &b.meta.Equipment }

// Detector returns the always-present detector substructure.
func (b *MetadataBuilder) Detector() *Detector { return &b.meta.Detector }

// Filter returns the always-present filter substructure.
func (b *MetadataBuilder) Filter() *Filter { return &b.meta.Filter }

// Exposure returns the always-present exposure substructure.
func (b *MetadataBuilder) Exposure() *Exposure { return &b.meta.Exposure }

// Mount returns the mount substructure, allocating it on first use.
func (b *MetadataBuilder) Mount() *Mount {
	if b.meta.Mount == nil {
		b.meta.Mount = &Mount{}
	}
	return b.meta.Mount
}

// Environment returns the environment substructure, allocating it on
// first use.
func (b *MetadataBuilder) Environment() *Environment {
	if b.meta.Environment == nil {
		b.meta.Environment = &Environment{}
	}
	return b.meta.Environment
}

// WCS returns the WCS substructure, allocating it on first use.
func (b *MetadataBuilder) WCS() *WCS {
	if b.meta.WCS == nil {
		b.meta.WCS = &WCS{}
	}
	return b.meta.WCS
}

// XISF returns the XISF substructure, allocating it on first use with the
// format's default version.
func (b *MetadataBuilder) XISF() *XISFInfo {
	if b.meta.XISF == nil {
		b.meta.XISF = &XISFInfo{Version: "1.0"}
	}
	return b.meta.XISF
}

// ColorManagement returns the color management substructure, allocating
// it on first use.
func (b *MetadataBuilder) ColorManagement() *ColorManagement {
	if b.meta.ColorManagement == nil {
		b.meta.ColorManagement = &ColorManagement{}
	}
	return b.meta.ColorManagement
}

// SetRawHeader records a header keyword verbatim.
func (b *MetadataBuilder) SetRawHeader(name, value string) {
	b.meta.RawHeaders[name] = value
}

// RawHeader returns the recorded value for a keyword.
func (b *MetadataBuilder) RawHeader(name string) (string, bool) {
	v, ok := b.meta.RawHeaders[name]
	return v, ok
}

// RawHeaders exposes the accumulated raw header map for mappers that need
// to scan it (plugin aggregation, multi-key lookups).
func (b *MetadataBuilder) RawHeaders() map[string]string {
	return b.meta.RawHeaders
}

// SetAttachments installs the attachment list. The list is only attached
// when non-empty; an empty catalog leaves the record's Attachments nil.
func (b *MetadataBuilder) SetAttachments(attachments []Attachment) {
	if len(attachments) > 0 {
		b.meta.Attachments = attachments
	}
}

// Warn records a recoverable parse diagnostic.
func (b *MetadataBuilder) Warn(stage, message string) {
	b.warnings = append(b.warnings, Warning{Stage: stage, Message: message})
}

// Warnings returns the diagnostics accumulated so far.
func (b *MetadataBuilder) Warnings() []Warning { return b.warnings }

// Finalize computes derived fields and returns the completed record. The
// builder must not be used afterwards.
func (b *MetadataBuilder) Finalize() Metadata {
	b.meta.ComputeSessionDate()
	return b.meta
}
