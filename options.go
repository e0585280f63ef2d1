package bitfont

// Options carries format-specific decode/encode parameters, such as cell
// geometry for raw bitmaps or BMFont encode settings. Codec packages that
// take parameters define their own concrete option structs (raw.Options
// with raw.DefaultOptions, winfnt.EncodeOptions, bmfont.DecodeOptions and
// bmfont.EncodeOptions) and accept them by value; no codec receives or
// type-asserts this type. The registry-level
// LoaderFunc/SaverFunc signatures (registry.go) deliberately omit
// Options: auto-dispatch through Identify always decodes with a
// format's defaults; callers who need non-default options call the
// codec package directly.
type Options any

// WithDiagnostics is the common trailing parameter every codec's
// exported Decode/Encode function accepts, alongside its own Options
// type; nil selects defaultDiag.
type WithDiagnostics = Diagnostics
