package line_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/yuemei/linebot/internal/line"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestValidateSignature_Valid(t *testing.T) {
	body := []byte(`{"events":[]}`)
	if !line.ValidateSignature("secret", body, sign("secret", body)) {
		t.Fatal("expected valid signature to be accepted")
	}
}

func TestValidateSignature_WrongSecret(t *testing.T) {
	body := []byte(`{"events":[]}`)
	if line.ValidateSignature("secret", body, sign("other", body)) {
		t.Fatal("expected signature under wrong secret to be rejected")
	}
}

func TestValidateSignature_BodyTampered(t *testing.T) {
	sig := sign("secret", []byte(`{"events":[]}`))
	if line.ValidateSignature("secret", []byte(`{"events":[{}]}`), sig) {
		t.Fatal("expected tampered body to be rejected")
	}
}

func TestValidateSignature_MissingSecretOrHeader(t *testing.T) {
	body := []byte(`{}`)
	if line.ValidateSignature("", body, sign("", body)) {
		t.Fatal("expected empty secret to reject everything")
	}
	if line.ValidateSignature("secret", body, "") {
		t.Fatal("expected empty signature header to be rejected")
	}
}

func TestValidateSignature_TestSentinelBypasses(t *testing.T) {
	if !line.ValidateSignature("secret", []byte("anything"), line.TestSignature) {
		t.Fatal("expected test sentinel to bypass verification")
	}
}
