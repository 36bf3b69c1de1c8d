package gmail

import (
	"encoding/base64"
	"fmt"
	"mime"
	"regexp"
	"strings"

	"github.com/minhajsf/Plan-it/internal/payload"
)

var angleAddress = regexp.MustCompile(`<([^>]+)>`)

// ExtractEmail extracts just the email address from an address header value
// e.g., "John Doe <john@example.com>" -> "john@example.com"
func ExtractEmail(addr string) string {
	matches := angleAddress.FindStringSubmatch(addr)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return strings.TrimSpace(addr)
}

// BuildRawMessage renders a mail payload as a base64url RFC 2822 message.
// A from of "me" or empty is left for Gmail to fill with the account address.
func BuildRawMessage(p payload.Payload) (string, error) {
	subject := p.String("subject")
	if subject == "" {
		return "", fmt.Errorf("%w: subject", payload.ErrMissingField)
	}

	var b strings.Builder
	if from := p.String("from"); from != "" && !strings.EqualFold(from, "me") {
		writeHeader(&b, "From", from)
	}
	if to := addressList(p.Addresses("to")); to != "" {
		writeHeader(&b, "To", to)
	}
	if cc := addressList(p.Addresses("cc")); cc != "" {
		writeHeader(&b, "Cc", cc)
	}
	writeHeader(&b, "Subject", mime.QEncoding.Encode("utf-8", subject))
	writeHeader(&b, "MIME-Version", "1.0")
	writeHeader(&b, "Content-Type", `text/plain; charset="UTF-8"`)
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(p.String("body"), "\n", "\r\n"))

	return base64.URLEncoding.EncodeToString([]byte(b.String())), nil
}

func writeHeader(b *strings.Builder, name, value string) {
	// header injection guard
	value = strings.NewReplacer("\r", " ", "\n", " ").Replace(value)
	fmt.Fprintf(b, "%s: %s\r\n", name, value)
}

func addressList(addrs []string) string {
	var out []string
	for _, a := range addrs {
		if email := ExtractEmail(a); strings.Contains(email, "@") {
			out = append(out, a)
		}
	}
	return strings.Join(out, ", ")
}
