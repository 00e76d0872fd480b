package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLetterPDFRender(t *testing.T) {
	renderer := NewLetterPDFRenderer()
	signedAt := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	data, err := renderer.Render(LetterDocument{
		Letterhead:        "Sekretariat Organisasi",
		LetterNumber:      "SK-007/03/2025",
		LetterTypeName:    "Surat Keputusan",
		Recipient:         "Budi Santoso",
		Subject:           "Penetapan Panitia",
		Content:           "Dengan ini ditetapkan susunan panitia kegiatan.",
		LetterDate:        time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		SecretaryName:     "Siti Aminah",
		SecretarySignedAt: &signedAt,
		ChairmanName:      "Ahmad Fauzi",
		ChairmanSignedAt:  &signedAt,
		QRCode:            "abc123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, data)
	require.Equal(t, "%PDF", string(data[:4]))
}

func TestLetterPDFRequiresNumber(t *testing.T) {
	renderer := NewLetterPDFRenderer()

	_, err := renderer.Render(LetterDocument{})
	require.Error(t, err)
}
