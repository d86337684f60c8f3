package services

import (
	"bytes"
	"encoding/json"
	"fmt"

	"muellepos/internal/domain"

	"github.com/yeqown/go-qrcode"
)

// QRService turns a ticket payload into either the raw JSON text a scanner
// decodes or a rendered image for on-screen display.
type QRService struct{}

// Encode serializes the payload exactly as it is embedded in the QR image.
func (QRService) Encode(payload domain.QRPayload) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serializando payload QR: %w", err)
	}
	return data, nil
}

// Image renders the payload as a JPEG-encoded QR image.
func (s QRService) Image(payload domain.QRPayload) ([]byte, error) {
	data, err := s.Encode(payload)
	if err != nil {
		return nil, err
	}
	qrc, err := qrcode.New(string(data))
	if err != nil {
		return nil, fmt.Errorf("generando QR: %w", err)
	}
	var buf bytes.Buffer
	if err := qrc.SaveTo(&buf); err != nil {
		return nil, fmt.Errorf("renderizando QR: %w", err)
	}
	return buf.Bytes(), nil
}
