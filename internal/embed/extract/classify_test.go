package extract

import (
	"encoding/base64"
	"testing"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"github.com/stretchr/testify/assert"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R', 0, 0, 0, 1, 0, 0, 0, 1, 8, 6, 0, 0, 0}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		payload     []byte
		wantType    model.PayloadType
		wantMIME    string
		wantExt     string
		wantText    bool
		wantDecoded []byte
	}{
		{
			name:     "empty payload",
			payload:  nil,
			wantType: model.PayloadUnknown,
		},
		{
			name:     "plain text",
			payload:  []byte("Chancellor on brink of second bailout for banks, again and again."),
			wantType: model.PayloadText,
			wantMIME: "text/plain",
			wantExt:  "txt",
			wantText: true,
		},
		{
			name:     "png image",
			payload:  pngHeader,
			wantType: model.PayloadImage,
			wantMIME: "image/png",
			wantExt:  "png",
		},
		{
			name:     "elf executable",
			payload:  append([]byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0}, make([]byte, 56)...),
			wantType: model.PayloadExecutable,
		},
		{
			name:     "gzip archive",
			payload:  []byte{0x1f, 0x8b, 0x08, 0x00, 0, 0, 0, 0, 0, 0x03},
			wantType: model.PayloadArchive,
			wantMIME: "application/gzip",
			wantExt:  "gz",
		},
		{
			name:     "opaque bytes",
			payload:  []byte{0x00, 0x01, 0x02, 0x03, 0xfe, 0xff, 0x00, 0x9c},
			wantType: model.PayloadBinary,
			wantMIME: "application/octet-stream",
		},
		{
			name:        "data uri uses declared type",
			payload:     []byte("data:image/jpg;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))),
			wantType:    model.PayloadImage,
			wantMIME:    "image/jpg",
			wantExt:     "jpg",
			wantDecoded: []byte("hello"),
		},
		{
			name:     "data uri with broken base64 keeps metadata",
			payload:  []byte("data:video/mp4;base64,!!!notbase64"),
			wantType: model.PayloadVideo,
			wantMIME: "video/mp4",
			wantExt:  "mp4",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.payload)
			assert.Equal(t, tt.wantType, got.Type)
			if tt.wantMIME != "" {
				assert.Equal(t, tt.wantMIME, got.MIME)
			}
			if tt.wantExt != "" {
				assert.Equal(t, tt.wantExt, got.Extension)
			}
			assert.Equal(t, tt.wantText, got.Text != "")
			assert.Equal(t, tt.wantDecoded, got.Decoded)
		})
	}
}

func TestReadableText(t *testing.T) {
	_, ok := readableText([]byte("mostly text\x01"))
	assert.True(t, ok)

	_, ok = readableText([]byte("\x01\x02\x03\x04ab"))
	assert.False(t, ok)

	_, ok = readableText([]byte{0xff, 0xfe})
	assert.False(t, ok)
}
