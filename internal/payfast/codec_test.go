package payfast

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"testing"
)

func samplePayload() Payload {
	return Payload{
		FieldMerchantID:   "10000100",
		FieldMerchantKey:  "46f0cd694581a",
		FieldReturnURL:    "https://localpop.example/payment-success",
		FieldCancelURL:    "https://localpop.example/payment-cancel",
		FieldNotifyURL:    "https://localpop.example/api/v1/payments/notify",
		FieldAmount:       "150.00",
		FieldItemName:     "Hand-thrown ceramic mug",
		FieldEmailAddress: "buyer@example.com",
		FieldMPaymentID:   "tok-abc123",
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	for _, passphrase := range []string{"", "jt7NOE43FZPn"} {
		codec := NewCodec(passphrase)
		payload := samplePayload()
		payload[FieldSignature] = codec.Sign(payload)
		if !codec.Verify(payload) {
			t.Fatalf("verify(sign(payload)) = false with passphrase %q", passphrase)
		}
	}
}

func TestVerifyRejectsAnyBitFlip(t *testing.T) {
	codec := NewCodec("jt7NOE43FZPn")
	payload := samplePayload()
	sig := codec.Sign(payload)

	for i := 0; i < len(sig); i++ {
		tampered := []byte(sig)
		if tampered[i] == '0' {
			tampered[i] = '1'
		} else {
			tampered[i] = '0'
		}
		payload[FieldSignature] = string(tampered)
		if codec.Verify(payload) {
			t.Fatalf("tampered signature accepted at byte %d", i)
		}
	}
}

func TestVerifyRejectsTamperedAmount(t *testing.T) {
	codec := NewCodec("jt7NOE43FZPn")
	payload := samplePayload()
	payload[FieldSignature] = codec.Sign(payload)

	payload[FieldAmount] = "1.00"
	if codec.Verify(payload) {
		t.Fatalf("payload with altered amount accepted")
	}
}

func TestVerifyRequiresSignatureField(t *testing.T) {
	codec := NewCodec("pass")
	if codec.Verify(samplePayload()) {
		t.Fatalf("payload without signature accepted")
	}
}

func TestDigestMatchesDocumentedScheme(t *testing.T) {
	// two fields plus passphrase, computed by hand against the gateway's
	// documented canonical string
	codec := NewCodec("secret")
	payload := Payload{
		FieldAmount:   "10.00",
		FieldItemName: "a b",
	}
	canonical := "amount=10.00&item_name=a+b&passphrase=secret"
	sum := md5.Sum([]byte(canonical))
	want := hex.EncodeToString(sum[:])
	if got := codec.Sign(payload); got != want {
		t.Fatalf("digest mismatch: got %s, want %s", got, want)
	}
}

func TestDigestSkipsEmptyAndSignatureFields(t *testing.T) {
	codec := NewCodec("")
	full := Payload{
		FieldAmount:     "10.00",
		FieldItemName:   "mug",
		FieldCustomStr1: "",
	}
	trimmed := Payload{
		FieldAmount:   "10.00",
		FieldItemName: "mug",
	}
	trimmed[FieldSignature] = codec.Sign(trimmed)
	if codec.Sign(full) != codec.Sign(trimmed) {
		t.Fatalf("empty values and the signature field must not affect the digest")
	}
}

func TestSignIsUppercaseHexEncoding(t *testing.T) {
	codec := NewCodec("")
	payload := Payload{FieldItemName: "caffè & más"}
	canonical := fmt.Sprintf("item_name=%s", "caff%C3%A8+%26+m%C3%A1s")
	sum := md5.Sum([]byte(canonical))
	if got := codec.Sign(payload); got != hex.EncodeToString(sum[:]) {
		t.Fatalf("encoder must use uppercase percent-encoding with + for spaces")
	}
}
