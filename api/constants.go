package api

const (
	// Multipart form fields
	FieldImages         = "images"
	FieldExamType       = "exam_type"
	FieldExamDate       = "exam_date"
	FieldInstitution    = "institution"
	FieldStripQuestions = "strip_questions"
	FieldStripRatio     = "strip_ratio"
	FieldNumbering      = "numbering"
	FieldSkip           = "skip"
	FieldAlignment      = "alignment"
	FieldSkipPolicy     = "skip_policy"

	// Response headers
	HeaderRequestID     = "X-Request-ID"
	HeaderPageCount     = "X-Page-Count"
	HeaderImageWarnings = "X-Image-Warnings"

	// MultipartMemory is how much of a multipart body is kept in memory
	// before parts spill to temporary files.
	MultipartMemory = 32 << 20

	// sniffLength is the prefix http.DetectContentType looks at
	sniffLength = 512

	// maxErrorLength truncates error text returned to clients
	maxErrorLength = 200

	requestIDKey = "request_id"
)

// imageExtensions are the upload extensions accepted.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}
