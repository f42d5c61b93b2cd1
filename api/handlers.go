package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/anyascii/go"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"paper_binder/layout"
	"paper_binder/paper"
	"paper_binder/rules"
)

// formError is a client mistake in the submitted form.
type formError struct {
	status int
	msg    string
}

func (e *formError) Error() string { return e.msg }

func badForm(format string, args ...any) error {
	return &formError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

func HandleGeneratePDF(c *gin.Context, config *Config) {
	log := requestLogger(c, config)
	req, err := parseRequest(c, config)
	if err != nil {
		writeError(c, log, err)
		return
	}

	ctx, cancel := requestContext(c, config)
	defer cancel()

	res, err := config.Generator.Generate(ctx, req)
	if err != nil {
		writeError(c, log, err)
		return
	}
	logWarnings(log, res.Warnings())

	c.Header(HeaderPageCount, strconv.Itoa(res.Pages))
	c.Header(HeaderImageWarnings, strconv.Itoa(len(res.Warnings())))
	c.Header("Content-Disposition", attachment(res.Filename))
	c.Data(http.StatusOK, "application/pdf", res.PDF)
}

func HandleGenerateZip(c *gin.Context, config *Config) {
	log := requestLogger(c, config)
	req, err := parseRequest(c, config)
	if err != nil {
		writeError(c, log, err)
		return
	}

	ctx, cancel := requestContext(c, config)
	defer cancel()

	bundle, err := config.Generator.Archive(ctx, req)
	if err != nil {
		writeError(c, log, err)
		return
	}
	logWarnings(log, bundle.Warnings())

	c.Header(HeaderImageWarnings, strconv.Itoa(len(bundle.Warnings())))
	c.Header("Content-Disposition", attachment(bundle.Filename))
	c.Data(http.StatusOK, "application/zip", bundle.Data)
}

func HandleLayout(c *gin.Context, config *Config) {
	log := requestLogger(c, config)
	req, err := parseRequest(c, config)
	if err != nil {
		writeError(c, log, err)
		return
	}

	ctx, cancel := requestContext(c, config)
	defer cancel()

	prev, err := config.Generator.Plan(ctx, req)
	if err != nil {
		writeError(c, log, err)
		return
	}

	items := make([]gin.H, len(prev.Items))
	for i, it := range prev.Items {
		item := gin.H{
			"position":  it.Position,
			"name":      it.Name,
			"labeled":   it.Labeled,
			"skipped":   it.Skipped,
			"fragments": len(it.Fragments),
		}
		if it.Labeled {
			item["label"] = it.Label
		}
		if it.Err != nil {
			item["error"] = it.Err.Error()
		}
		items[i] = item
	}

	c.JSON(http.StatusOK, gin.H{
		"filename":      prev.Filename,
		"header_height": prev.HeaderHeight,
		"page_count":    len(prev.Plan.Pages),
		"pages":         prev.Plan.Pages,
		"items":         items,
		"warnings":      prev.Warnings(),
	})
}

// parseRequest reads the multipart form into a generation request.
func parseRequest(c *gin.Context, config *Config) (paper.Request, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.Server.MaxUploadSize)
	if err := c.Request.ParseMultipartForm(MultipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return paper.Request{}, &formError{
				status: http.StatusRequestEntityTooLarge,
				msg:    fmt.Sprintf("upload exceeds maximum allowed %d bytes", tooBig.Limit),
			}
		}
		return paper.Request{}, badForm("invalid multipart form: %v", err)
	}

	req := paper.Request{
		RequestID: requestID(c),
		Header: paper.Header{
			Institution: c.PostForm(FieldInstitution),
			ExamType:    c.PostForm(FieldExamType),
			ExamDate:    c.PostForm(FieldExamDate),
		},
		Numbering: c.PostForm(FieldNumbering),
		Skip:      c.PostForm(FieldSkip),
	}

	var err error
	if req.StripRules, err = parseStripRules(c.PostFormArray(FieldStripQuestions), c.PostFormArray(FieldStripRatio)); err != nil {
		return req, err
	}

	if v := strings.TrimSpace(c.PostForm(FieldAlignment)); v != "" {
		a, err := layout.ParseAlignment(v)
		if err != nil {
			return req, badForm("%v", err)
		}
		req.Alignment = &a
	}
	if v := strings.TrimSpace(c.PostForm(FieldSkipPolicy)); v != "" {
		p, err := layout.ParseSkipPolicy(v)
		if err != nil {
			return req, badForm("%v", err)
		}
		req.SkipPolicy = &p
	}

	files := c.Request.MultipartForm.File[FieldImages]
	if limit := config.Server.MaxImages; limit > 0 && len(files) > limit {
		return req, badForm("%d images uploaded, at most %d allowed", len(files), limit)
	}
	for _, fh := range files {
		img, err := readImage(fh, config.Server.MaxUploadSize)
		if err != nil {
			return req, err
		}
		req.Images = append(req.Images, img)
	}
	return req, nil
}

// parseStripRules pairs the repeated question and ratio fields. Pairs with
// both sides blank are ignored.
func parseStripRules(questions, ratios []string) ([]rules.StripRule, error) {
	if len(questions) != len(ratios) {
		return nil, badForm("%d strip question fields but %d strip ratio fields", len(questions), len(ratios))
	}
	var out []rules.StripRule
	for i := range questions {
		q, r := strings.TrimSpace(questions[i]), strings.TrimSpace(ratios[i])
		if q == "" && r == "" {
			continue
		}
		if q == "" {
			return nil, badForm("strip rule %d has a ratio but no questions", i+1)
		}
		ratio, err := rules.ParseRatio(r)
		if err != nil {
			return nil, badForm("strip rule %d: %v", i+1, err)
		}
		out = append(out, rules.StripRule{Questions: q, Ratio: ratio})
	}
	return out, nil
}

func readImage(fh *multipart.FileHeader, maxSize int64) (paper.SourceImage, error) {
	file, err := fh.Open()
	if err != nil {
		return paper.SourceImage{}, badForm("cannot open upload %q", fh.Filename)
	}
	defer file.Close()

	if err := validateImageFile(file, fh, maxSize); err != nil {
		return paper.SourceImage{}, badForm("%s: %v", fh.Filename, err)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return paper.SourceImage{}, badForm("cannot read upload %q", fh.Filename)
	}
	return paper.SourceImage{Name: sanitizeFilename(fh.Filename), Data: data}, nil
}

// validateImageFile checks the extension and that the content does not sniff
// as some other known type. Files that sniff as plain binary are left for
// the decoder, which reports them per image.
func validateImageFile(file multipart.File, header *multipart.FileHeader, maxSize int64) error {
	if header.Size > maxSize {
		return fmt.Errorf("file size %d exceeds maximum allowed %d bytes", header.Size, maxSize)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !imageExtensions[ext] {
		return fmt.Errorf("unsupported file type %q", ext)
	}

	buffer := make([]byte, sniffLength)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file header: %v", err)
	}
	if n > 0 {
		kind := http.DetectContentType(buffer[:n])
		if !strings.HasPrefix(kind, "image/") && kind != "application/octet-stream" {
			return fmt.Errorf("content is %s, not an image", kind)
		}
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to reset file position: %v", err)
	}
	return nil
}

func requestContext(c *gin.Context, config *Config) (context.Context, context.CancelFunc) {
	if t := config.Server.RequestTimeout; t > 0 {
		return context.WithTimeout(c.Request.Context(), t)
	}
	return context.WithCancel(c.Request.Context())
}

func requestLogger(c *gin.Context, config *Config) *logrus.Entry {
	return config.Logger.WithFields(logrus.Fields{
		"request_id": requestID(c),
		"path":       c.FullPath(),
	})
}

func logWarnings(log *logrus.Entry, warnings []string) {
	for _, w := range warnings {
		log.WithField("warning", w).Warn("Image skipped")
	}
}

// writeError maps a failure to a status code and a JSON body.
func writeError(c *gin.Context, log *logrus.Entry, err error) {
	status := http.StatusInternalServerError
	var fe *formError
	switch {
	case errors.As(err, &fe):
		status = fe.status
	case errors.Is(err, rules.ErrParse), errors.Is(err, paper.ErrMissingHeader):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status = http.StatusRequestTimeout
	}

	entry := log.WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error("Generation failed")
	} else {
		entry.Info("Request rejected")
	}

	errorMsg := err.Error()
	if len(errorMsg) > maxErrorLength {
		errorMsg = errorMsg[:maxErrorLength] + "..."
	}
	c.JSON(status, gin.H{"error": errorMsg, "request_id": requestID(c)})
}

// attachment builds a Content-Disposition value with a transliterated ASCII
// name for old clients and the exact UTF-8 name for the rest.
func attachment(name string) string {
	ascii := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, anyascii.Transliterate(name))
	return fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", ascii, url.PathEscape(name))
}

// sanitizeFilename keeps only the last path element of an upload name, so
// names like "q1..2.png" sort and report as sent.
func sanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = strings.TrimSpace(path.Base(filename))

	if filename == "" || filename == "." || filename == ".." || filename == "/" {
		filename = "image"
	}
	return filename
}
