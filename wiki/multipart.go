package wiki

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"slices"
	"strings"
)

// Part is one extra field of a multipart POST
type Part struct {
	Name        string
	FileName    string // Set for file parts
	ContentType string // Defaults to application/octet-stream for file parts
	Data        []byte
}

// TextPart creates a plain form field
func TextPart(name, value string) Part {
	return Part{Name: name, Data: []byte(value)}
}

// FilePart creates a file field
func FilePart(name, fileName string, data []byte) Part {
	return Part{Name: name, FileName: fileName, Data: data}
}

// encodeMultipart renders args (sorted by key) followed by parts into one body.
// The body is kept in memory so the transport can resend it on retry.
func encodeMultipart(args url.Values, parts []Part) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := w.WriteField(k, args.Get(k)); err != nil {
			return nil, "", err
		}
	}

	for _, p := range parts {
		if p.FileName == "" && p.ContentType == "" {
			if err := w.WriteField(p.Name, string(p.Data)); err != nil {
				return nil, "", err
			}
			continue
		}

		contentType := p.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		disposition := fmt.Sprintf(`form-data; name="%s"`, escapeQuotes(p.Name))
		if p.FileName != "" {
			disposition += fmt.Sprintf(`; filename="%s"`, escapeQuotes(p.FileName))
		}
		h.Set("Content-Disposition", disposition)
		h.Set("Content-Type", contentType)

		pw, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := pw.Write(p.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
