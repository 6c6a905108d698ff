package auth

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpPeriod     = 30
	totpSecretSize = 20 // 160 bits
	qrCodeSize     = 200
)

// Enrollment is a freshly generated TOTP secret and its provisioning URI.
type Enrollment struct {
	Secret string
	URL    string
	key    *otp.Key
}

// TOTP generates and verifies RFC 6238 codes: SHA1, six digits, 30 second steps.
type TOTP struct {
	Issuer string
	Skew   uint
	Now    func() time.Time
}

func NewTOTP(issuer string, skew uint) *TOTP {
	return &TOTP{Issuer: issuer, Skew: skew, Now: time.Now}
}

// GenerateSecret creates a new secret for the account named by label.
func (t *TOTP) GenerateSecret(label string) (*Enrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      t.Issuer,
		AccountName: label,
		Period:      totpPeriod,
		SecretSize:  totpSecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("generate TOTP secret: %w", err)
	}
	return &Enrollment{Secret: key.Secret(), URL: key.URL(), key: key}, nil
}

// QRCode renders the enrollment URI as a PNG data URL.
func (t *TOTP) QRCode(e *Enrollment) (string, error) {
	key := e.key
	if key == nil {
		var err error
		if key, err = otp.NewKeyFromURL(e.URL); err != nil {
			return "", fmt.Errorf("parse provisioning URI: %w", err)
		}
	}

	img, err := key.Image(qrCodeSize, qrCodeSize)
	if err != nil {
		return "", fmt.Errorf("render QR code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode QR code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Verify reports whether code matches secret at the current step or within
// Skew steps of it. An empty secret never verifies.
func (t *TOTP) Verify(secret, code string) bool {
	code = strings.TrimSpace(code)
	if secret == "" || code == "" {
		return false
	}

	ok, err := totp.ValidateCustom(code, secret, t.now(), t.opts())
	if err != nil {
		return false
	}
	return ok
}

// Code returns the code for secret at instant at.
func (t *TOTP) Code(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, t.opts())
}

func (t *TOTP) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      t.Skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

func (t *TOTP) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}
