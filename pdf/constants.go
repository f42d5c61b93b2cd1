package pdf

const (
	// DefaultDPI is the resolution page rasters are rendered at
	DefaultDPI = 300

	// PageForm is the paper size every page is imported onto
	PageForm = "A4"

	// DefaultJPEGQuality is used when pages are encoded as JPEG
	DefaultJPEGQuality = 92

	// Producer is written into the document properties
	Producer = "paper_binder"
)
