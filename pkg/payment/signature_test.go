package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"type":"payment.complete","data":{"merchant_reference":"gasorder-1-1700000000000"}}`)
	secret := "whsec_test"
	valid := Sign(body, secret)

	flipped := []byte(valid)
	if flipped[0] == 'a' {
		flipped[0] = 'b'
	} else {
		flipped[0] = 'a'
	}

	tests := []struct {
		name      string
		body      []byte
		signature string
		secret    string
		want      bool
	}{
		{name: "valid", body: body, signature: valid, secret: secret, want: true},
		{name: "uppercase hex", body: body, signature: upper(valid), secret: secret, want: true},
		{name: "one byte flipped", body: body, signature: string(flipped), secret: secret, want: false},
		{name: "missing signature", body: body, signature: "", secret: secret, want: false},
		{name: "missing secret", body: body, signature: valid, secret: "", want: false},
		{name: "malformed hex", body: body, signature: "zz-not-hex", secret: secret, want: false},
		{name: "wrong secret", body: body, signature: valid, secret: "other", want: false},
		{name: "reserialized body", body: []byte(`{"type": "payment.complete", "data": {"merchant_reference": "gasorder-1-1700000000000"}}`), signature: valid, secret: secret, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifySignature(tt.body, tt.signature, tt.secret))
		})
	}
}

func upper(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'a' && c <= 'f' {
			out[i] = c - 'a' + 'A'
		}
	}
	return string(out)
}
