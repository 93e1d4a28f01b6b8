package extract

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
)

// Email extracts text from RFC 5322 messages (.eml) and, best-effort, from
// Outlook .msg blobs. Anything that fails to parse falls back to the raw
// bytes, matching the tolerant behavior expected of email ingestion.
type Email struct{}

func (Email) Extract(data []byte) (string, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return strings.TrimSpace(string(data)), nil
	}

	var sb strings.Builder
	if subject := msg.Header.Get("Subject"); subject != "" {
		sb.WriteString(subject)
		sb.WriteString("\n\n")
	}

	body := readBody(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if body == "" {
		return strings.TrimSpace(string(data)), nil
	}
	sb.WriteString(body)
	return strings.TrimSpace(sb.String()), nil
}

// readBody walks the message body, descending into multipart containers and
// collecting text/* parts.
func readBody(contentType, encoding string, r io.Reader) string {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return ""
		}
		mr := multipart.NewReader(r, boundary)

		var sb strings.Builder
		for {
			part, err := mr.NextPart()
			if err != nil {
				break
			}
			text := readBody(part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), part)
			if text != "" {
				sb.WriteString(text)
				sb.WriteString("\n\n")
			}
		}
		return strings.TrimSpace(sb.String())
	}

	if !strings.HasPrefix(mediaType, "text/") && mediaType != "" {
		return ""
	}

	switch strings.ToLower(encoding) {
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, r)
	}

	data, err := io.ReadAll(r)
	if err != nil && len(data) == 0 {
		return ""
	}
	return strings.TrimSpace(string(data))
}
