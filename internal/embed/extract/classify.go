package extract

import (
	"encoding/base64"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
)

const (
	octetStream    = "application/octet-stream"
	textPlain      = "text/plain"
	printableRatio = 0.8
)

var dataURIPattern = regexp.MustCompile(`^data:((?:image|video|audio|application)/[a-zA-Z0-9\-+.]+);base64,(.+)$`)

var executableMIMEs = map[string]struct{}{
	"application/x-elf":                             {},
	"application/x-executable":                      {},
	"application/x-sharedlib":                       {},
	"application/x-object":                          {},
	"application/x-coredump":                        {},
	"application/x-mach-binary":                     {},
	"application/vnd.microsoft.portable-executable": {},
	"application/x-msdownload":                      {},
	"application/x-dosexec":                         {},
	"application/java-vm":                           {},
	"application/wasm":                              {},
}

var archiveMIMEs = map[string]struct{}{
	"application/zip":                   {},
	"application/x-7z-compressed":       {},
	"application/x-rar-compressed":      {},
	"application/gzip":                  {},
	"application/x-bzip2":               {},
	"application/x-tar":                 {},
	"application/x-xz":                  {},
	"application/zstd":                  {},
	"application/x-lzip":                {},
	"application/vnd.ms-cab-compressed": {},
}

var textMIMEs = map[string]struct{}{
	"application/json":     {},
	"application/xml":      {},
	"application/x-ndjson": {},
	"application/geo+json": {},
}

// Classification describes what a payload appears to contain.
type Classification struct {
	Type      model.PayloadType
	MIME      string
	Extension string
	// Decoded holds the embedded bytes of a base64 data URI.
	Decoded []byte
	// Text is set when the payload reads as text.
	Text string
}

// Classify detects the format of a payload. Data URIs are classified by their
// declared MIME type, other payloads by their leading bytes.
func Classify(payload []byte) Classification {
	if len(payload) == 0 {
		return Classification{Type: model.PayloadUnknown}
	}
	if c, ok := classifyDataURI(payload); ok {
		return c
	}

	mt := mimetype.Detect(payload)
	base := baseMIME(mt.String())
	c := Classification{
		Type:      typeOf(mt),
		MIME:      base,
		Extension: strings.TrimPrefix(mt.Extension(), "."),
	}

	switch c.Type {
	case model.PayloadText:
		c.Text = string(payload)
	case model.PayloadBinary:
		if text, ok := readableText(payload); ok {
			c.Type = model.PayloadText
			c.MIME = textPlain
			c.Extension = "txt"
			c.Text = text
		}
	}
	return c
}

func classifyDataURI(payload []byte) (Classification, bool) {
	if !utf8.Valid(payload) {
		return Classification{}, false
	}
	m := dataURIPattern.FindStringSubmatch(strings.TrimSpace(string(payload)))
	if m == nil {
		return Classification{}, false
	}

	declared := strings.ToLower(m[1])
	c := Classification{
		Type:      typeOfMIME(declared),
		MIME:      declared,
		Extension: extensionFor(declared),
	}
	if decoded, err := base64.StdEncoding.DecodeString(m[2]); err == nil {
		c.Decoded = decoded
	}
	return c, true
}

func extensionFor(mime string) string {
	if mt := mimetype.Lookup(mime); mt != nil && mt.Extension() != "" {
		return strings.TrimPrefix(mt.Extension(), ".")
	}
	_, sub, _ := strings.Cut(mime, "/")
	if i := strings.IndexAny(sub, "+."); i > 0 {
		sub = sub[:i]
	}
	return sub
}

func typeOf(mt *mimetype.MIME) model.PayloadType {
	for m := mt; m != nil; m = m.Parent() {
		base := baseMIME(m.String())
		if base == octetStream {
			break
		}
		if t := typeOfMIME(base); t != model.PayloadUnknown {
			return t
		}
	}
	if baseMIME(mt.String()) == octetStream {
		return model.PayloadBinary
	}
	return model.PayloadUnknown
}

func typeOfMIME(mime string) model.PayloadType {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return model.PayloadImage
	case strings.HasPrefix(mime, "video/"):
		return model.PayloadVideo
	case strings.HasPrefix(mime, "text/"):
		return model.PayloadText
	}
	if _, ok := textMIMEs[mime]; ok {
		return model.PayloadText
	}
	if _, ok := executableMIMEs[mime]; ok {
		return model.PayloadExecutable
	}
	if _, ok := archiveMIMEs[mime]; ok {
		return model.PayloadArchive
	}
	return model.PayloadUnknown
}

func baseMIME(mime string) string {
	base, _, _ := strings.Cut(mime, ";")
	return strings.TrimSpace(base)
}

// readableText reports whether payload is valid UTF-8 with mostly printable runes.
func readableText(payload []byte) (string, bool) {
	if !utf8.Valid(payload) {
		return "", false
	}
	text := string(payload)
	var total, printable int
	for _, r := range text {
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}
	if total == 0 {
		return "", false
	}
	return text, float64(printable)/float64(total) > printableRatio
}
